package service

import (
	"book_review_api/internal/common"
	"book_review_api/internal/domain/model"
	"book_review_api/internal/domain/repository"
	"book_review_api/internal/validator"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type ReviewService struct {
	reviewRepo repository.ReviewRepository
	bookRepo   repository.BookRepository
}

func NewReviewService(reviewRepo repository.ReviewRepository, bookRepo repository.BookRepository) *ReviewService {
	return &ReviewService{reviewRepo: reviewRepo, bookRepo: bookRepo}
}

type AddReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// UpdateReviewRequest carries optional fields: a zero rating or empty
// comment means "leave the existing value alone".
type UpdateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ReviewListResponse struct {
	Reviews    []model.Review    `json:"reviews"`
	Pagination common.Pagination `json:"pagination"`
}

func (s *ReviewService) AddReview(ctx context.Context, author *model.User, bookID string, req AddReviewRequest) (*model.Review, error) {
	book, err := s.bookRepo.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.WithMessage(common.ErrNotFound, "Book not found")
		}
		return nil, err
	}

	_, err = s.reviewRepo.FindByUserAndBook(ctx, author.ID, book.ID)
	if err == nil {
		return nil, common.WithMessage(common.ErrDuplicate, "You have already reviewed this book")
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	v := validator.New()
	v.Check(req.Rating != 0, "rating", "Rating is required")
	if req.Rating != 0 {
		v.Check(req.Rating >= 1, "rating", "Rating must be at least 1")
		v.Check(req.Rating <= 5, "rating", "Rating cannot exceed 5")
	}
	v.Check(req.Comment != "", "comment", "Review comment is required")
	v.Check(len(req.Comment) <= 500, "comment", "Comment cannot exceed 500 characters")
	if !v.Valid() {
		return nil, common.WithMessage(common.ErrValidation, v.Message())
	}

	review := &model.Review{
		ID:         uuid.NewString(),
		Rating:     req.Rating,
		Comment:    req.Comment,
		UserID:     author.ID,
		BookID:     book.ID,
		UserName:   author.Name,
		UserEmail:  author.Email,
		BookTitle:  book.Title,
		BookAuthor: book.Author,
	}

	// A concurrent duplicate slips past the pre-check above; the unique
	// constraint settles it and the repo translates the loser's error.
	if err := s.reviewRepo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, userID, reviewID string, req UpdateReviewRequest) (*model.Review, error) {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.WithMessage(common.ErrNotFound, "Review not found")
		}
		return nil, err
	}

	if review.UserID != userID {
		return nil, common.WithMessage(common.ErrForbidden, "You can only update your own reviews")
	}

	v := validator.New()
	if req.Rating != 0 {
		v.Check(req.Rating >= 1, "rating", "Rating must be at least 1")
		v.Check(req.Rating <= 5, "rating", "Rating cannot exceed 5")
	}
	if req.Comment != "" {
		v.Check(len(req.Comment) <= 500, "comment", "Comment cannot exceed 500 characters")
	}
	if !v.Valid() {
		return nil, common.WithMessage(common.ErrValidation, v.Message())
	}

	if req.Rating != 0 {
		review.Rating = req.Rating
	}
	if req.Comment != "" {
		review.Comment = req.Comment
	}

	if err := s.reviewRepo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, userID, reviewID string) error {
	review, err := s.reviewRepo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.WithMessage(common.ErrNotFound, "Review not found")
		}
		return err
	}

	if review.UserID != userID {
		return common.WithMessage(common.ErrForbidden, "You can only delete your own reviews")
	}

	return s.reviewRepo.Delete(ctx, review.ID)
}

func (s *ReviewService) MyReviews(ctx context.Context, userID string, page common.PageParams) (*ReviewListResponse, error) {
	reviews, total, err := s.reviewRepo.ListByUser(ctx, userID, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	return &ReviewListResponse{
		Reviews:    reviews,
		Pagination: common.NewPagination(page, total),
	}, nil
}
