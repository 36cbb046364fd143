package models

import "time"

type Book struct {
	ID       int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ISBN     string   `json:"isbn" gorm:"uniqueIndex;size:13;not null"`
	Title    string   `json:"title" gorm:"not null"`
	Authors  []string `json:"authors" gorm:"serializer:json;type:text"`
	Year     *int     `json:"year,omitempty"`
	CoverURL *string  `json:"cover_url,omitempty"`

	// Snapshot of the external catalog rating, captured at first cache
	// or on refresh. Distinct from the locally computed aggregate.
	ExternalRating      *float64 `json:"external_rating,omitempty" gorm:"type:decimal(3,2)"`
	ExternalRatingCount *int     `json:"external_rating_count,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Book) TableName() string {
	return "books"
}
