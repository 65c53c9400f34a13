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

type AuthHandler struct {
	authService *service.AuthService
	auth        *middleware.Auth
}

func NewAuthHandler(authService *service.AuthService, auth *middleware.Auth) *AuthHandler {
	return &AuthHandler{authService: authService, auth: auth}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.With(h.auth.Authenticator).Get("/profile", h.profile)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		common.RespondError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondSuccess(w, http.StatusCreated, "User registered successfully", resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondSuccess(w, http.StatusOK, "Login successful", resp)
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		common.RespondError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	common.RespondSuccess(w, http.StatusOK, "", struct {
		User *model.User `json:"user"`
	}{User: principal})
}
