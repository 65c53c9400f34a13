package main

import (
	"book_review_api/internal/api"
	"book_review_api/internal/app/service"
	"book_review_api/internal/common/security"
	"book_review_api/internal/domain/repository"
	"book_review_api/internal/platform/config"
	"book_review_api/internal/platform/database"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize JWT
	security.InitJWT(cfg.JWTKey, cfg.JWTExp)

	// 3. Initialize Database
	db, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected.")

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	bookRepo := repository.NewPgBookRepository(db)
	reviewRepo := repository.NewPgReviewRepository(db)

	// 5. Initialize Services
	authService := service.NewAuthService(userRepo)
	bookService := service.NewBookService(bookRepo, reviewRepo)
	reviewService := service.NewReviewService(reviewRepo, bookRepo)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(cfg, authService, bookService, reviewService, userRepo)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
