package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sokoni/config"
	"sokoni/internal/cache"
	"sokoni/internal/database"
	"sokoni/internal/repository"
	"sokoni/internal/router"
	"sokoni/pkg/cloudinary"

	"github.com/joho/godotenv"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using environment")
	}
	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db)
	database.SeedPlans(db)
	database.SeedCategories(db)

	cloud, err := cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		log.Fatalf("cloudinary: %v", err)
	}

	// Redis is optional; a nil client degrades the cache to pass-through.
	redisClient := cache.NewRedisClient(&cfg.Redis)

	janitorDone := make(chan struct{})
	go runJanitor(db, cfg.Payment.ConfirmWindow, janitorDone)

	engine := router.Setup(cfg, db, cloud, redisClient)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	close(janitorDone)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	log.Println("server stopped")
}

// runJanitor sweeps rows the request path can leave behind: payments that
// never got a webhook stay PENDING forever, and active listings outlive
// their paid window. Both sweeps are conditional updates, so overlap with
// live requests is safe.
func runJanitor(db *gorm.DB, confirmWindow time.Duration, done <-chan struct{}) {
	txRepo := repository.NewTransactionRepository(db)
	listingRepo := repository.NewListingRepository(db)

	// Leave webhooks a generous margin past the in-session window before
	// declaring a payment abandoned.
	staleAfter := confirmWindow * 10
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if n, err := txRepo.CancelStale(staleAfter); err != nil {
				log.Printf("[JANITOR] cancel stale payments: %v", err)
			} else if n > 0 {
				log.Printf("[JANITOR] cancelled %d stale payments", n)
			}
			if n, err := listingRepo.ExpireOverdue(); err != nil {
				log.Printf("[JANITOR] expire listings: %v", err)
			} else if n > 0 {
				log.Printf("[JANITOR] expired %d listings", n)
			}
		}
	}
}
