package model

import (
	"math"
	"time"
)

type Review struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Display fields joined on read: reviewer for a book's review list,
	// book for a user's own review list.
	UserName   string `json:"user_name,omitempty"`
	UserEmail  string `json:"user_email,omitempty"`
	BookTitle  string `json:"book_title,omitempty"`
	BookAuthor string `json:"book_author,omitempty"`
	BookGenre  string `json:"book_genre,omitempty"`
}

// AggregateRatings returns the arithmetic mean of a review set's ratings
// rounded to one decimal, plus the review count. An empty set aggregates to
// 0. Every read path that exposes a book's rating goes through this.
func AggregateRatings(ratings []int) (average float64, count int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	avg := float64(sum) / float64(len(ratings))
	return math.Round(avg*10) / 10, len(ratings)
}
