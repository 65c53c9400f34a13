package main

import (
	"book_review_api/internal/common/security"
	"book_review_api/internal/domain/model"
	"book_review_api/internal/domain/repository"
	"book_review_api/internal/platform/config"
	"book_review_api/internal/platform/database"
	"context"
	"database/sql"
	"log"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    hashed_password TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS books (
    id UUID PRIMARY KEY,
    title TEXT NOT NULL,
    slug TEXT NOT NULL,
    author TEXT NOT NULL,
    genre TEXT NOT NULL,
    description TEXT NOT NULL,
    published_year INT,
    isbn TEXT UNIQUE,
    created_by UUID NOT NULL REFERENCES users(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reviews (
    id UUID PRIMARY KEY,
    rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
    comment TEXT NOT NULL,
    user_id UUID NOT NULL REFERENCES users(id),
    book_id UUID NOT NULL REFERENCES books(id),
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (user_id, book_id)
);

CREATE INDEX IF NOT EXISTS idx_books_author ON books (author);
CREATE INDEX IF NOT EXISTS idx_books_genre ON books (genre);
CREATE INDEX IF NOT EXISTS idx_reviews_book_created ON reviews (book_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_reviews_user_created ON reviews (user_id, created_at DESC);
`

type seedBook struct {
	title       string
	author      string
	genre       string
	description string
	year        int
	isbn        string
}

var seedBooks = []seedBook{
	{
		title:  "The Midnight Library",
		author: "Matt Haig",
		genre:  "Fiction",
		description: "Between life and death there is a library, and within that library, " +
			"the shelves go on forever. Every book provides a chance to try another life you could have lived.",
		year: 2020,
		isbn: "9780525559474",
	},
	{
		title:  "Dune",
		author: "Frank Herbert",
		genre:  "Sci-Fi",
		description: "Set on the desert planet Arrakis, Dune is the story of the boy Paul Atreides, " +
			"heir to a noble family tasked with ruling an inhospitable world.",
		year: 1965,
		isbn: "9780441172719",
	},
	{
		title:  "The Name of the Wind",
		author: "Patrick Rothfuss",
		genre:  "Fantasy",
		description: "The riveting first-person narrative of a young man who grows to be the most " +
			"notorious magician his world has ever seen.",
		year: 2007,
		isbn: "9780756404079",
	},
	{
		title:  "Educated",
		author: "Tara Westover",
		genre:  "Biography",
		description: "A memoir about a young girl who, kept out of school, leaves her survivalist " +
			"family and goes on to earn a PhD from Cambridge University.",
		year: 2018,
		isbn: "9780399590504",
	},
	{
		title:  "The Seven Husbands of Evelyn Hugo",
		author: "Taylor Jenkins Reid",
		genre:  "Fiction",
		description: "Reclusive Hollywood icon Evelyn Hugo finally decides to tell her life story, " +
			"but only to one reporter, Monique Grant.",
		year: 2017,
		isbn: "9781501161933",
	},
	{
		title:  "Sapiens",
		author: "Yuval Noah Harari",
		genre:  "History",
		description: "A sweeping account of how an insignificant ape became the ruler of planet Earth, " +
			"capable of splitting the atom and decoding its own DNA.",
		year: 2011,
		isbn: "9780062316097",
	},
	{
		title:  "The Martian",
		author: "Andy Weir",
		genre:  "Sci-Fi",
		description: "Stranded on Mars after a dust storm forces his crew to evacuate, astronaut " +
			"Mark Watney must draw on his ingenuity to survive.",
		year: 2011,
		isbn: "9780804139021",
	},
	{
		title:  "Atomic Habits",
		author: "James Clear",
		genre:  "Self-Help",
		description: "A proven framework for improving every day, built on the idea that tiny " +
			"changes compound into remarkable results.",
		year: 2018,
		isbn: "9780735211292",
	},
}

var seedComments = []string{
	"Could not put it down, finished it in two sittings.",
	"Solid read, though the middle section drags a little.",
	"One of my favorites this year, highly recommended.",
	"Interesting premise but the ending felt rushed.",
	"Beautifully written. I will be rereading this one.",
}

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		log.Fatalf("Could not create schema: %v", err)
	}
	log.Println("Schema ensured.")

	if err := clearData(ctx, db); err != nil {
		log.Fatalf("Could not clear existing data: %v", err)
	}
	log.Println("Existing data cleared.")

	userRepo := repository.NewPgUserRepository(db)
	bookRepo := repository.NewPgBookRepository(db)
	reviewRepo := repository.NewPgReviewRepository(db)

	// Demo users all share the password "123456".
	hashed, err := security.HashPassword("123456")
	if err != nil {
		log.Fatalf("Could not hash demo password: %v", err)
	}

	users := []*model.User{
		{ID: uuid.NewString(), Name: "Alice Johnson", Email: "alice@example.com", HashedPassword: hashed},
		{ID: uuid.NewString(), Name: "Bob Smith", Email: "bob@example.com", HashedPassword: hashed},
		{ID: uuid.NewString(), Name: "Charlie Brown", Email: "charlie@example.com", HashedPassword: hashed},
	}
	for _, u := range users {
		if err := userRepo.Create(ctx, u); err != nil {
			log.Fatalf("Could not create user %s: %v", u.Email, err)
		}
	}
	log.Printf("Created %d users", len(users))

	books := make([]*model.Book, 0, len(seedBooks))
	for i, sb := range seedBooks {
		year := sb.year
		isbn := sb.isbn
		book := &model.Book{
			ID:            uuid.NewString(),
			Title:         sb.title,
			Slug:          slug.Make(sb.title),
			Author:        sb.author,
			Genre:         sb.genre,
			Description:   sb.description,
			PublishedYear: &year,
			ISBN:          &isbn,
			CreatedByID:   users[i%len(users)].ID,
		}
		if err := bookRepo.Create(ctx, book); err != nil {
			log.Fatalf("Could not create book %q: %v", sb.title, err)
		}
		books = append(books, book)
	}
	log.Printf("Created %d books", len(books))

	// Each user reviews a rotating subset of books; the (user, book)
	// uniqueness constraint guarantees at most one review per pair.
	created := 0
	for bi, book := range books {
		for ui, u := range users {
			if (bi+ui)%3 == 0 {
				continue // leave some books with sparse review sets
			}
			review := &model.Review{
				ID:      uuid.NewString(),
				Rating:  (bi+ui*2)%5 + 1,
				Comment: seedComments[(bi+ui)%len(seedComments)],
				UserID:  u.ID,
				BookID:  book.ID,
			}
			if err := reviewRepo.Create(ctx, review); err != nil {
				log.Fatalf("Could not create review for %q: %v", book.Title, err)
			}
			created++
		}
	}
	log.Printf("Created %d reviews", created)

	log.Println("Seeding complete.")
}

func clearData(ctx context.Context, db *sql.DB) error {
	// Children first; no cascade deletes are defined.
	for _, table := range []string{"reviews", "books", "users"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
