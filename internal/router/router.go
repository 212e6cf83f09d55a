package router

import (
	"log"
	"time"

	"sokoni/config"
	"sokoni/internal/cache"
	"sokoni/internal/events"
	"sokoni/internal/handler"
	"sokoni/internal/middleware"
	"sokoni/internal/repository"
	"sokoni/internal/service"
	"sokoni/internal/watch"
	"sokoni/internal/ws"
	"sokoni/pkg/cloudinary"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func Setup(cfg *config.Config, db *gorm.DB, cloud cloudinary.Client, redisClient *redis.Client) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RateLimit(middleware.NewFixedWindowLimiter(100, 60*time.Second)))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	listingRepo := repository.NewListingRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	discountRepo := repository.NewDiscountRepository(db)
	planRepo := repository.NewPlanRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	favRepo := repository.NewFavoriteRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Shared infrastructure
	appCache := cache.New(redisClient, cfg.Redis.CacheTTL)
	eventsPub := events.NewPublisher(cfg.Events.AmqpURL)
	broker := watch.NewBroker()
	hub := ws.NewHub()
	chatHub := ws.NewChatHub()

	// Services
	authSvc := service.NewAuthService(cfg, userRepo)
	fcmSvc := service.NewFCMService(cfg.Firebase.ServiceAccountPath)
	if fcmSvc != nil {
		log.Printf("[FCM] Push notifications enabled")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcmSvc)
	discountSvc := service.NewDiscountService(discountRepo)
	mediaSvc := service.NewMediaService(cloud, cfg.Media.MaxBytes)
	listingSvc := service.NewListingService(listingRepo, categoryRepo, planRepo, userRepo, appCache, eventsPub, notifSvc)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, auditRepo)
	googleOAuthHandler := handler.NewGoogleOAuthHandler(cfg, authSvc, auditRepo)
	meHandler := handler.NewMeHandler(userRepo, listingRepo, mediaSvc)
	listingHandler := handler.NewListingHandler(listingSvc, listingRepo, categoryRepo, appCache)
	paymentHandler := handler.NewPaymentHandler(cfg, txRepo, listingRepo, planRepo, userRepo, auditRepo, discountRepo, discountSvc, listingSvc, notifSvc, broker)
	webhookHandler := handler.NewPaymentWebhookHandler(txRepo, discountRepo, auditRepo, discountSvc, listingSvc, notifSvc, broker, hub, eventsPub)
	discountHandler := handler.NewDiscountHandler(discountSvc)
	uploadHandler := handler.NewUploadHandler(mediaSvc)
	favoriteHandler := handler.NewFavoriteHandler(favRepo, listingRepo)
	reportHandler := handler.NewReportHandler(reportRepo, listingRepo)
	chatHandler := handler.NewChatHandler(chatRepo, listingRepo, userRepo, notifSvc)
	notificationHandler := handler.NewNotificationHandler(notificationRepo)
	adminHandler := handler.NewAdminHandler(adminRepo, listingRepo, discountRepo, auditRepo, listingSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	adminMw := middleware.AdminRequired()

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.POST("/logout", authMw, authHandler.Logout)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
			authGroup.GET("/google", googleOAuthHandler.Redirect)
			authGroup.GET("/google/callback", googleOAuthHandler.Callback)
			authGroup.POST("/google/token", googleOAuthHandler.Token)
		}

		api.GET("/categories", listingHandler.Categories)
		api.GET("/listings", listingHandler.Feed)
		api.GET("/listings/:id", listingHandler.Get)
		api.GET("/plans", func(c *gin.Context) {
			plans, err := planRepo.List()
			if err != nil {
				c.JSON(500, gin.H{"error": "plans failed"})
				return
			}
			c.JSON(200, gin.H{"plans": plans})
		})

		listings := api.Group("/listings")
		listings.Use(authMw)
		{
			listings.POST("", listingHandler.Create)
			listings.PUT("/:id", listingHandler.Update)
			listings.DELETE("/:id", listingHandler.Delete)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.Get)
			me.PATCH("/profile", meHandler.Update)
			me.POST("/avatar", meHandler.UploadAvatar)
			me.PUT("/fcm-token", meHandler.UpdateFCMToken)
			me.GET("/listings", meHandler.MyListings)
			me.GET("/transactions", paymentHandler.History)
			me.GET("/notifications", notificationHandler.List)
			me.GET("/notifications/unread", notificationHandler.UnreadCount)
			me.PUT("/notifications/:id/read", notificationHandler.MarkRead)
			me.GET("/favorites", favoriteHandler.List)
			me.POST("/favorites/:listing_id", favoriteHandler.Add)
			me.DELETE("/favorites/:listing_id", favoriteHandler.Remove)
		}

		payments := api.Group("/payments")
		payments.Use(authMw)
		{
			payments.POST("/initiate", paymentHandler.Initiate)
			payments.GET("/status", paymentHandler.Status)
		}
		api.POST("/discounts/apply", authMw, discountHandler.Apply)
		api.POST("/uploads", authMw, uploadHandler.Ingest)
		api.POST("/uploads/file", authMw, uploadHandler.UploadFile)
		api.POST("/reports", authMw, reportHandler.Create)

		chats := api.Group("/chats")
		chats.Use(authMw)
		{
			chats.POST("", chatHandler.Start)
			chats.GET("", chatHandler.ListConversations)
			chats.GET("/:id/messages", chatHandler.ListMessages)
			chats.POST("/:id/messages", chatHandler.Send)
		}

		// Gateway callbacks are unauthenticated; the conditional terminal
		// update makes replays and spoofed duplicates harmless.
		api.POST("/webhooks/payments", webhookHandler.Handle)

		wsGroup := api.Group("/ws")
		{
			wsGroup.GET("/payments", handler.UpgradePaymentWS(&cfg.JWT, hub))
			wsGroup.GET("/chat", handler.UpgradeChatWS(&cfg.JWT, chatHub, chatRepo))
		}

		admin := api.Group("/admin")
		admin.Use(authMw, adminMw)
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.PATCH("/users/:id/suspend", adminHandler.SuspendUser)
			admin.GET("/listings", adminHandler.ListListings)
			admin.PATCH("/listings/:id/moderate", adminHandler.Moderate)
			admin.DELETE("/listings/:id", adminHandler.DeleteListing)
			admin.GET("/transactions", adminHandler.ListTransactions)
			admin.POST("/transactions/:id/refund", paymentHandler.Refund)
			admin.POST("/discounts", adminHandler.CreateDiscount)
			admin.GET("/discounts", adminHandler.ListDiscounts)
			admin.PATCH("/discounts/:id", adminHandler.UpdateDiscount)
			admin.GET("/reports", reportHandler.List)
			admin.PUT("/reports/:id/resolve", reportHandler.Resolve)
		}
	}
	return r
}
