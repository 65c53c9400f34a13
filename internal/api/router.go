package api

import (
	"book_review_api/internal/api/handler"
	"book_review_api/internal/api/middleware"
	"book_review_api/internal/app/service"
	"book_review_api/internal/common"
	"book_review_api/internal/common/security"
	"book_review_api/internal/domain/repository"
	"book_review_api/internal/platform/config"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	cfg *config.Config,
	authService *service.AuthService,
	bookService *service.BookService,
	reviewService *service.ReviewService,
	userRepo repository.UserRepository,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))

	// Verifies a bearer token when present and stashes it in the request
	// context; the Authenticator middleware on protected groups does the
	// actual rejection and principal lookup.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	auth := middleware.NewAuth(userRepo)
	authHandler := handler.NewAuthHandler(authService, auth)
	bookHandler := handler.NewBookHandler(bookService, auth)
	reviewHandler := handler.NewReviewHandler(reviewService, auth)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			common.RespondSuccess(w, http.StatusOK, "Book Review API is running!", struct {
				Timestamp string `json:"timestamp"`
			}{Timestamp: time.Now().UTC().Format(time.RFC3339)})
		})

		api.Route("/auth", authHandler.RegisterRoutes)

		api.Route("/books", func(books chi.Router) {
			bookHandler.RegisterRoutes(books)
			books.With(auth.Authenticator).Post("/{bookID}/reviews", reviewHandler.AddReview)
		})

		api.Get("/search", bookHandler.SearchBooks)

		api.Route("/reviews", reviewHandler.RegisterRoutes)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		common.RespondError(w, http.StatusNotFound, "Route not found")
	})

	return r
}
