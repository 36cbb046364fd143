package catalog

import (
	"strconv"
	"strings"
)

// ============================================
// API RESPONSE STRUCTURES
// ============================================

// volumesResponse represents the response from GET /volumes?q=isbn:<isbn>
type volumesResponse struct {
	Kind       string   `json:"kind"`
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

// volume is a single volume entry from the API
type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

// volumeInfo contains the book metadata fields we consume
type volumeInfo struct {
	Title         string     `json:"title"`
	Authors       []string   `json:"authors"`
	PublishedDate string     `json:"publishedDate"`
	AverageRating *float64   `json:"averageRating"`
	RatingsCount  *int       `json:"ratingsCount"`
	ImageLinks    imageLinks `json:"imageLinks"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// ============================================
// NORMALIZED METADATA
// ============================================

// Metadata is the normalized internal representation of an external
// catalog entry for a single ISBN.
type Metadata struct {
	ISBN     string
	Title    string
	Authors  []string
	Year     *int
	CoverURL *string

	// External rating snapshot; nil when the catalog reports none.
	AverageRating *float64
	RatingsCount  *int
}

// metadataFromVolume validates and normalizes a raw volume into Metadata.
// Missing fields fall back to placeholders rather than failing the lookup.
func metadataFromVolume(isbn string, v volumeInfo) *Metadata {
	meta := &Metadata{
		ISBN:          isbn,
		Title:         strings.TrimSpace(v.Title),
		AverageRating: v.AverageRating,
		RatingsCount:  v.RatingsCount,
	}
	if meta.Title == "" {
		meta.Title = "Unknown"
	}

	for _, a := range v.Authors {
		if a = strings.TrimSpace(a); a != "" {
			meta.Authors = append(meta.Authors, a)
		}
	}
	if len(meta.Authors) == 0 {
		meta.Authors = []string{"Unknown"}
	}

	// publishedDate comes as "2006", "2006-01" or "2006-01-02"
	if len(v.PublishedDate) >= 4 {
		if year, err := strconv.Atoi(v.PublishedDate[:4]); err == nil {
			meta.Year = &year
		}
	}

	if cover := strings.TrimSpace(v.ImageLinks.Thumbnail); cover != "" {
		meta.CoverURL = &cover
	} else if cover := strings.TrimSpace(v.ImageLinks.SmallThumbnail); cover != "" {
		meta.CoverURL = &cover
	}

	return meta
}
