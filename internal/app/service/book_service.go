package service

import (
	"book_review_api/internal/common"
	"book_review_api/internal/domain/model"
	"book_review_api/internal/domain/repository"
	"book_review_api/internal/validator"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type BookService struct {
	bookRepo   repository.BookRepository
	reviewRepo repository.ReviewRepository
}

func NewBookService(bookRepo repository.BookRepository, reviewRepo repository.ReviewRepository) *BookService {
	return &BookService{bookRepo: bookRepo, reviewRepo: reviewRepo}
}

type CreateBookRequest struct {
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	Genre         string  `json:"genre"`
	Description   string  `json:"description"`
	PublishedYear *int    `json:"published_year,omitempty"`
	ISBN          *string `json:"isbn,omitempty"`
}

type BookListResponse struct {
	Books       []model.Book      `json:"books"`
	SearchQuery string            `json:"searchQuery,omitempty"`
	Pagination  common.Pagination `json:"pagination"`
}

type BookDetailResponse struct {
	Book              *model.Book       `json:"book"`
	Reviews           []model.Review    `json:"reviews"`
	ReviewsPagination common.Pagination `json:"reviewsPagination"`
}

func (s *BookService) CreateBook(ctx context.Context, creator *model.User, req CreateBookRequest) (*model.Book, error) {
	v := validator.New()
	v.Check(req.Title != "", "title", "Book title is required")
	v.Check(len(req.Title) <= 200, "title", "Title cannot exceed 200 characters")
	v.Check(req.Author != "", "author", "Author name is required")
	v.Check(len(req.Author) <= 100, "author", "Author name cannot exceed 100 characters")
	v.Check(req.Genre != "", "genre", "Genre is required")
	if req.Genre != "" {
		v.Check(model.ValidGenre(req.Genre), "genre", "Please select a valid genre")
	}
	v.Check(req.Description != "", "description", "Book description is required")
	v.Check(len(req.Description) <= 1000, "description", "Description cannot exceed 1000 characters")
	if req.PublishedYear != nil {
		v.Check(*req.PublishedYear >= 1000, "published_year", "Published year must be valid")
		v.Check(*req.PublishedYear <= time.Now().Year(), "published_year", "Published year cannot be in the future")
	}
	if req.ISBN != nil {
		v.Check(model.ValidISBN(*req.ISBN), "isbn", "Please enter a valid ISBN")
	}
	if !v.Valid() {
		return nil, common.WithMessage(common.ErrValidation, v.Message())
	}

	book := &model.Book{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Slug:           slug.Make(req.Title),
		Author:         req.Author,
		Genre:          req.Genre,
		Description:    req.Description,
		PublishedYear:  req.PublishedYear,
		ISBN:           req.ISBN,
		CreatedByID:    creator.ID,
		CreatedByName:  creator.Name,
		CreatedByEmail: creator.Email,
	}

	if err := s.bookRepo.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *BookService) ListBooks(ctx context.Context, author, genre string, page common.PageParams) (*BookListResponse, error) {
	filter := repository.BookFilter{Author: author, Genre: genre}
	books, total, err := s.bookRepo.List(ctx, filter, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	if err := s.attachRatings(ctx, books); err != nil {
		return nil, err
	}
	return &BookListResponse{
		Books:      books,
		Pagination: common.NewPagination(page, total),
	}, nil
}

func (s *BookService) GetBook(ctx context.Context, id string, reviewPage common.PageParams) (*BookDetailResponse, error) {
	book, err := s.bookRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.WithMessage(common.ErrNotFound, "Book not found")
		}
		return nil, err
	}

	reviews, totalReviews, err := s.reviewRepo.ListByBook(ctx, book.ID, reviewPage.Limit, reviewPage.Offset())
	if err != nil {
		return nil, err
	}

	// Aggregate over the book's full review set, not just the page shown.
	ratings, err := s.reviewRepo.RatingsByBook(ctx, []string{book.ID})
	if err != nil {
		return nil, err
	}
	book.AverageRating, book.ReviewCount = model.AggregateRatings(ratings[book.ID])

	return &BookDetailResponse{
		Book:              book,
		Reviews:           reviews,
		ReviewsPagination: common.NewPagination(reviewPage, totalReviews),
	}, nil
}

func (s *BookService) SearchBooks(ctx context.Context, query string, page common.PageParams) (*BookListResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, common.WithMessage(common.ErrInvalidQuery, "Search query is required")
	}

	books, total, err := s.bookRepo.List(ctx, repository.BookFilter{Search: query}, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	if err := s.attachRatings(ctx, books); err != nil {
		return nil, err
	}
	return &BookListResponse{
		Books:       books,
		SearchQuery: query,
		Pagination:  common.NewPagination(page, total),
	}, nil
}

// attachRatings computes the derived rating fields for each listed book
// from its current review set.
func (s *BookService) attachRatings(ctx context.Context, books []model.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]string, len(books))
	for i, b := range books {
		ids[i] = b.ID
	}
	ratings, err := s.reviewRepo.RatingsByBook(ctx, ids)
	if err != nil {
		return err
	}
	for i := range books {
		books[i].AverageRating, books[i].ReviewCount = model.AggregateRatings(ratings[books[i].ID])
	}
	return nil
}
