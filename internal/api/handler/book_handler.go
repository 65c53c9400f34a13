package handler

import (
	"book_review_api/internal/api/middleware"
	"book_review_api/internal/app/service"
	"book_review_api/internal/common"
	"book_review_api/internal/domain/model"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	defaultBookPageSize   = 10
	defaultReviewPageSize = 5
)

type BookHandler struct {
	bookService *service.BookService
	auth        *middleware.Auth
}

func NewBookHandler(bookService *service.BookService, auth *middleware.Auth) *BookHandler {
	return &BookHandler{bookService: bookService, auth: auth}
}

func (h *BookHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listBooks)       // GET /api/books
	r.Get("/{bookID}", h.getBook) // GET /api/books/{id}

	r.Group(func(protected chi.Router) {
		protected.Use(h.auth.Authenticator)
		protected.Post("/", h.createBook) // POST /api/books
	})
}

func (h *BookHandler) createBook(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	book, err := h.bookService.CreateBook(r.Context(), principal, req)
	if err != nil {
		common.RespondError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondSuccess(w, http.StatusCreated, "Book created successfully", struct {
		Book *model.Book `json:"book"`
	}{Book: book})
}

func (h *BookHandler) listBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := common.ParsePageParams(q, defaultBookPageSize)

	resp, err := h.bookService.ListBooks(r.Context(), q.Get("author"), q.Get("genre"), page)
	if err != nil {
		common.RespondError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondSuccess(w, http.StatusOK, "", resp)
}

func (h *BookHandler) getBook(w http.ResponseWriter, r *http.Request) {
	bookID := chi.URLParam(r, "bookID")
	reviewPage := common.ParsePageParams(r.URL.Query(), defaultReviewPageSize)

	resp, err := h.bookService.GetBook(r.Context(), bookID, reviewPage)
	if err != nil {
		common.RespondError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondSuccess(w, http.StatusOK, "", resp)
}

// SearchBooks serves GET /api/search; the router mounts it outside the
// /books subtree.
func (h *BookHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := common.ParsePageParams(q, defaultBookPageSize)

	resp, err := h.bookService.SearchBooks(r.Context(), q.Get("query"), page)
	if err != nil {
		common.RespondError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondSuccess(w, http.StatusOK, "", resp)
}
