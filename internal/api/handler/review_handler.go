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

type ReviewHandler struct {
	reviewService *service.ReviewService
	auth          *middleware.Auth
}

func NewReviewHandler(reviewService *service.ReviewService, auth *middleware.Auth) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, auth: auth}
}

func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Use(h.auth.Authenticator) // All review routes require auth
	r.Put("/{reviewID}", h.updateReview)
	r.Delete("/{reviewID}", h.deleteReview)
	r.Get("/my-reviews", h.myReviews)
}

// AddReview serves POST /api/books/{id}/reviews; the router mounts it under
// the /books subtree.
func (h *ReviewHandler) AddReview(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.AddReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	review, err := h.reviewService.AddReview(r.Context(), principal, chi.URLParam(r, "bookID"), req)
	if err != nil {
		common.RespondError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondSuccess(w, http.StatusCreated, "Review added successfully", struct {
		Review *model.Review `json:"review"`
	}{Review: review})
}

func (h *ReviewHandler) updateReview(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	review, err := h.reviewService.UpdateReview(r.Context(), principal.ID, chi.URLParam(r, "reviewID"), req)
	if err != nil {
		common.RespondError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondSuccess(w, http.StatusOK, "Review updated successfully", struct {
		Review *model.Review `json:"review"`
	}{Review: review})
}

func (h *ReviewHandler) deleteReview(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	if err := h.reviewService.DeleteReview(r.Context(), principal.ID, chi.URLParam(r, "reviewID")); err != nil {
		common.RespondError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondSuccess(w, http.StatusOK, "Review deleted successfully", nil)
}

func (h *ReviewHandler) myReviews(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	page := common.ParsePageParams(r.URL.Query(), defaultBookPageSize)
	resp, err := h.reviewService.MyReviews(r.Context(), principal.ID, page)
	if err != nil {
		common.RespondError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondSuccess(w, http.StatusOK, "", resp)
}
