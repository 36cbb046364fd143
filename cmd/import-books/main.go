// Command import-books seeds the local book store from a CSV file with
// rows of the form: isbn,title,author,year. It drives the same upsert
// contract as the request-time cache fill, so re-running an import is
// safe and refreshes existing rows.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"bookhub/database"
	"bookhub/internal/config"
	"bookhub/internal/http-api/models"
	"bookhub/internal/http-api/repository"
	"bookhub/internal/http-api/service"
)

func main() {
	var (
		file      = flag.String("file", "data/books.csv", "path to the CSV file to import")
		hasHeader = flag.Bool("header", false, "skip the first row")
	)
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	bookRepo := repository.NewBookRepository(db)
	// no catalog client: imports carry their own metadata
	bookService := service.NewBookService(bookRepo, nil)

	f, err := os.Open(*file)
	if err != nil {
		log.Fatalf("could not open %s: %v", *file, err)
	}
	defer f.Close()

	ctx := context.Background()
	reader := csv.NewReader(f)

	imported, skipped := 0, 0
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("could not read csv: %v", err)
		}

		if first && *hasHeader {
			first = false
			continue
		}
		first = false

		if len(record) < 4 {
			logger.Warn("skipping malformed row", "fields", len(record))
			skipped++
			continue
		}

		book := &models.Book{
			ISBN:    strings.TrimSpace(record[0]),
			Title:   strings.TrimSpace(record[1]),
			Authors: []string{strings.TrimSpace(record[2])},
		}
		if year, err := strconv.Atoi(strings.TrimSpace(record[3])); err == nil {
			book.Year = &year
		}

		if err := bookService.Import(ctx, book); err != nil {
			logger.Warn("skipping row", "isbn", record[0], "err", err)
			skipped++
			continue
		}
		imported++
	}

	logger.Info("Import complete", "imported", imported, "skipped", skipped)
}
