package model

import (
	"regexp"
	"time"
)

// Genres is the fixed set of accepted book genres.
var Genres = []string{
	"Fiction",
	"Non-Fiction",
	"Mystery",
	"Romance",
	"Sci-Fi",
	"Fantasy",
	"Biography",
	"History",
	"Self-Help",
	"Other",
}

// isbnRX accepts 9-digit ISBNs (with an optional X check digit) and
// 13-digit ISBNs.
var isbnRX = regexp.MustCompile(`^(?:\d{9}[\dX]|\d{13})$`)

func ValidGenre(genre string) bool {
	for _, g := range Genres {
		if genre == g {
			return true
		}
	}
	return false
}

func ValidISBN(isbn string) bool {
	return isbnRX.MatchString(isbn)
}

type Book struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Author        string    `json:"author"`
	Genre         string    `json:"genre"`
	Description   string    `json:"description"`
	PublishedYear *int      `json:"published_year,omitempty"`
	ISBN          *string   `json:"isbn,omitempty"`
	CreatedByID   string    `json:"created_by_id"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Creator display fields, joined on read.
	CreatedByName  string `json:"created_by_name,omitempty"`
	CreatedByEmail string `json:"created_by_email,omitempty"`

	// Derived from the book's review set on every read, never persisted.
	AverageRating float64 `json:"averageRating"`
	ReviewCount   int     `json:"reviewCount"`
}
