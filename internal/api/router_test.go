package api

import (
	"book_review_api/internal/app/service"
	"book_review_api/internal/common"
	"book_review_api/internal/common/security"
	"book_review_api/internal/domain/model"
	"book_review_api/internal/domain/repository"
	"book_review_api/internal/platform/config"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory repositories backing the router under test. They mirror the
// postgres repositories' error translation where the services depend on
// it (not-found sentinels, duplicate messages).

type fakeUserRepo struct {
	users []*model.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return common.WithMessage(common.ErrDuplicate, "Email already exists")
		}
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users = append(r.users, user)
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

type fakeBookRepo struct {
	books []*model.Book
}

func (r *fakeBookRepo) Create(_ context.Context, book *model.Book) error {
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now
	r.books = append(r.books, book)
	return nil
}

func (r *fakeBookRepo) FindByID(_ context.Context, id string) (*model.Book, error) {
	for _, b := range r.books {
		if b.ID == id {
			copied := *b
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeBookRepo) List(_ context.Context, filter repository.BookFilter, limit, offset int) ([]model.Book, int, error) {
	matched := make([]model.Book, 0, len(r.books))
	for i := len(r.books) - 1; i >= 0; i-- { // newest first
		b := r.books[i]
		if filter.Genre != "" && b.Genre != filter.Genre {
			continue
		}
		if filter.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(filter.Author)) {
			continue
		}
		if filter.Search != "" {
			q := strings.ToLower(filter.Search)
			if !strings.Contains(strings.ToLower(b.Title), q) && !strings.Contains(strings.ToLower(b.Author), q) {
				continue
			}
		}
		matched = append(matched, *b)
	}
	total := len(matched)
	if offset >= total {
		return []model.Book{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

type fakeReviewRepo struct {
	reviews []*model.Review
}

func (r *fakeReviewRepo) Create(_ context.Context, rev *model.Review) error {
	now := time.Now()
	rev.CreatedAt = now
	rev.UpdatedAt = now
	r.reviews = append(r.reviews, rev)
	return nil
}

func (r *fakeReviewRepo) FindByID(_ context.Context, id string) (*model.Review, error) {
	for _, rev := range r.reviews {
		if rev.ID == id {
			copied := *rev
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeReviewRepo) FindByUserAndBook(_ context.Context, userID, bookID string) (*model.Review, error) {
	for _, rev := range r.reviews {
		if rev.UserID == userID && rev.BookID == bookID {
			copied := *rev
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeReviewRepo) Update(_ context.Context, rev *model.Review) error {
	for i, existing := range r.reviews {
		if existing.ID == rev.ID {
			rev.UpdatedAt = time.Now()
			copied := *rev
			r.reviews[i] = &copied
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeReviewRepo) Delete(_ context.Context, id string) error {
	for i, rev := range r.reviews {
		if rev.ID == id {
			r.reviews = append(r.reviews[:i], r.reviews[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (r *fakeReviewRepo) ListByBook(_ context.Context, bookID string, limit, offset int) ([]model.Review, int, error) {
	return r.list(func(rev *model.Review) bool { return rev.BookID == bookID }, limit, offset)
}

func (r *fakeReviewRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]model.Review, int, error) {
	return r.list(func(rev *model.Review) bool { return rev.UserID == userID }, limit, offset)
}

func (r *fakeReviewRepo) list(match func(*model.Review) bool, limit, offset int) ([]model.Review, int, error) {
	matched := make([]model.Review, 0, len(r.reviews))
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if match(r.reviews[i]) {
			matched = append(matched, *r.reviews[i])
		}
	}
	total := len(matched)
	if offset >= total {
		return []model.Review{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *fakeReviewRepo) RatingsByBook(_ context.Context, bookIDs []string) (map[string][]int, error) {
	wanted := make(map[string]bool, len(bookIDs))
	for _, id := range bookIDs {
		wanted[id] = true
	}
	out := make(map[string][]int)
	for _, rev := range r.reviews {
		if wanted[rev.BookID] {
			out[rev.BookID] = append(out[rev.BookID], rev.Rating)
		}
	}
	return out, nil
}

func newTestRouter() http.Handler {
	security.InitJWT([]byte("test-secret"), time.Hour)

	userRepo := &fakeUserRepo{}
	bookRepo := &fakeBookRepo{}
	reviewRepo := &fakeReviewRepo{}

	cfg := &config.Config{RateLimitRPS: 1000, RateLimitBurst: 1000}
	return NewRouter(
		cfg,
		service.NewAuthService(userRepo),
		service.NewBookService(bookRepo, reviewRepo),
		service.NewReviewService(reviewRepo, bookRepo),
		userRepo,
	)
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) (int, common.Envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env common.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), "body: %s", rec.Body.String())
	return rec.Code, env
}

func dataMap(t *testing.T, env common.Envelope) map[string]interface{} {
	t.Helper()
	data, ok := env.Data.(map[string]interface{})
	require.True(t, ok, "data is %T", env.Data)
	return data
}

func TestRouterHealth(t *testing.T) {
	router := newTestRouter()

	code, env := doJSON(t, router, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
	assert.Equal(t, "Book Review API is running!", env.Message)
	assert.Contains(t, dataMap(t, env), "timestamp")
}

func TestRouterNotFound(t *testing.T) {
	router := newTestRouter()

	code, env := doJSON(t, router, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Message)
}

func TestRouterSignupBookReviewFlow(t *testing.T) {
	router := newTestRouter()

	// Register and capture the issued token.
	code, env := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name":     "Alice Johnson",
		"email":    "alice@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "User registered successfully", env.Message)

	data := dataMap(t, env)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	// Writes without a token are refused before reaching the handler.
	code, env = doJSON(t, router, http.MethodPost, "/api/books", "", map[string]string{
		"title": "Dune", "author": "Frank Herbert", "genre": "Sci-Fi", "description": "Desert planet epic.",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Authorization token required", env.Message)

	code, env = doJSON(t, router, http.MethodPost, "/api/books", token, map[string]string{
		"title": "Dune", "author": "Frank Herbert", "genre": "Sci-Fi", "description": "Desert planet epic.",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Book created successfully", env.Message)

	book, ok := dataMap(t, env)["book"].(map[string]interface{})
	require.True(t, ok)
	bookID, _ := book["id"].(string)
	require.NotEmpty(t, bookID)
	assert.Equal(t, "dune", book["slug"])

	code, env = doJSON(t, router, http.MethodPost, "/api/books/"+bookID+"/reviews", token, map[string]interface{}{
		"rating": 4, "comment": "A classic worth rereading.",
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Review added successfully", env.Message)

	// The detail endpoint folds the review into the aggregate fields.
	code, env = doJSON(t, router, http.MethodGet, "/api/books/"+bookID, "", nil)
	require.Equal(t, http.StatusOK, code)

	detail := dataMap(t, env)
	gotBook, ok := detail["book"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(4), gotBook["averageRating"])
	assert.Equal(t, float64(1), gotBook["reviewCount"])

	reviews, ok := detail["reviews"].([]interface{})
	require.True(t, ok)
	assert.Len(t, reviews, 1)

	// Same user, same book.
	code, env = doJSON(t, router, http.MethodPost, "/api/books/"+bookID+"/reviews", token, map[string]interface{}{
		"rating": 5, "comment": "Trying again.",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "You have already reviewed this book", env.Message)
}

func TestRouterLogin(t *testing.T) {
	router := newTestRouter()

	code, _ := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Bob Smith", "email": "bob@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code)

	code, env := doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "bob@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid credentials", env.Message)

	code, env = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "bob@example.com", "password": "secret123",
	})
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Login successful", env.Message)
	assert.NotEmpty(t, dataMap(t, env)["token"])
}

func TestRouterExpiredTokenOnProfile(t *testing.T) {
	router := newTestRouter()

	code, env := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"name": "Carol Evans", "email": "carol@example.com", "password": "secret123",
	})
	require.Equal(t, http.StatusCreated, code)

	user, ok := dataMap(t, env)["user"].(map[string]interface{})
	require.True(t, ok)
	userID, _ := user["id"].(string)
	require.NotEmpty(t, userID)

	security.InitJWT([]byte("test-secret"), -time.Hour)
	expired, err := security.GenerateToken(userID)
	require.NoError(t, err)
	security.InitJWT([]byte("test-secret"), time.Hour)

	code, env = doJSON(t, router, http.MethodGet, "/api/auth/profile", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Token expired.", env.Message)
}
