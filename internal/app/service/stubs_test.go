package service

import (
	"book_review_api/internal/common"
	"book_review_api/internal/domain/model"
	"book_review_api/internal/domain/repository"
	"context"
	"sort"
	"strings"
	"time"
)

// In-memory repository implementations backing the service tests. They
// mirror the Postgres repositories' contracts: ErrNotFound for missing
// rows, translated duplicate-key messages, newest-first listings.

type memClock struct {
	now time.Time
}

func newMemClock() *memClock {
	return &memClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *memClock) next() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

type memUserRepo struct {
	clock *memClock
	users map[string]*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{clock: newMemClock(), users: make(map[string]*model.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return common.WithMessage(common.ErrDuplicate, "Email already exists")
		}
	}
	user.CreatedAt = r.clock.next()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			found := *u
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	found := *u
	return &found, nil
}

type memBookRepo struct {
	clock *memClock
	books []*model.Book
}

func newMemBookRepo() *memBookRepo {
	return &memBookRepo{clock: newMemClock()}
}

func (r *memBookRepo) Create(_ context.Context, book *model.Book) error {
	for _, b := range r.books {
		if b.ISBN != nil && book.ISBN != nil && *b.ISBN == *book.ISBN {
			return common.WithMessage(common.ErrDuplicate, "ISBN already exists")
		}
	}
	book.CreatedAt = r.clock.next()
	book.UpdatedAt = book.CreatedAt
	stored := *book
	r.books = append(r.books, &stored)
	return nil
}

func (r *memBookRepo) FindByID(_ context.Context, id string) (*model.Book, error) {
	for _, b := range r.books {
		if b.ID == id {
			found := *b
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memBookRepo) List(_ context.Context, filter repository.BookFilter, limit, offset int) ([]model.Book, int, error) {
	matched := []*model.Book{}
	for _, b := range r.books {
		if filter.Author != "" && !containsFold(b.Author, filter.Author) {
			continue
		}
		if filter.Genre != "" && b.Genre != filter.Genre {
			continue
		}
		if filter.Search != "" && !containsFold(b.Title, filter.Search) && !containsFold(b.Author, filter.Search) {
			continue
		}
		matched = append(matched, b)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	page := []model.Book{}
	for i := offset; i < total && i < offset+limit; i++ {
		page = append(page, *matched[i])
	}
	return page, total, nil
}

type memReviewRepo struct {
	clock   *memClock
	reviews []*model.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{clock: newMemClock()}
}

func (r *memReviewRepo) Create(_ context.Context, review *model.Review) error {
	for _, existing := range r.reviews {
		if existing.UserID == review.UserID && existing.BookID == review.BookID {
			return common.WithMessage(common.ErrDuplicate, "You have already reviewed this book")
		}
	}
	review.CreatedAt = r.clock.next()
	review.UpdatedAt = review.CreatedAt
	stored := *review
	r.reviews = append(r.reviews, &stored)
	return nil
}

func (r *memReviewRepo) FindByID(_ context.Context, id string) (*model.Review, error) {
	for _, rev := range r.reviews {
		if rev.ID == id {
			found := *rev
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memReviewRepo) FindByUserAndBook(_ context.Context, userID, bookID string) (*model.Review, error) {
	for _, rev := range r.reviews {
		if rev.UserID == userID && rev.BookID == bookID {
			found := *rev
			return &found, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memReviewRepo) Update(_ context.Context, review *model.Review) error {
	for _, rev := range r.reviews {
		if rev.ID == review.ID {
			rev.Rating = review.Rating
			rev.Comment = review.Comment
			rev.UpdatedAt = r.clock.next()
			review.UpdatedAt = rev.UpdatedAt
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *memReviewRepo) Delete(_ context.Context, id string) error {
	for i, rev := range r.reviews {
		if rev.ID == id {
			r.reviews = append(r.reviews[:i], r.reviews[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *memReviewRepo) ListByBook(_ context.Context, bookID string, limit, offset int) ([]model.Review, int, error) {
	return r.list(func(rev *model.Review) bool { return rev.BookID == bookID }, limit, offset)
}

func (r *memReviewRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]model.Review, int, error) {
	return r.list(func(rev *model.Review) bool { return rev.UserID == userID }, limit, offset)
}

func (r *memReviewRepo) list(match func(*model.Review) bool, limit, offset int) ([]model.Review, int, error) {
	matched := []*model.Review{}
	for _, rev := range r.reviews {
		if match(rev) {
			matched = append(matched, rev)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	page := []model.Review{}
	for i := offset; i < total && i < offset+limit; i++ {
		page = append(page, *matched[i])
	}
	return page, total, nil
}

func (r *memReviewRepo) RatingsByBook(_ context.Context, bookIDs []string) (map[string][]int, error) {
	wanted := make(map[string]bool, len(bookIDs))
	for _, id := range bookIDs {
		wanted[id] = true
	}
	ratings := make(map[string][]int)
	for _, rev := range r.reviews {
		if wanted[rev.BookID] {
			ratings[rev.BookID] = append(ratings[rev.BookID], rev.Rating)
		}
	}
	return ratings, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
