// internal/router/router.go
package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/javajoker/bizdir-backend/internal/config"
	"github.com/javajoker/bizdir-backend/internal/handlers"
	"github.com/javajoker/bizdir-backend/internal/metrics"
	"github.com/javajoker/bizdir-backend/internal/middleware"
	"github.com/javajoker/bizdir-backend/internal/repository"
	"github.com/javajoker/bizdir-backend/internal/services"
	"github.com/javajoker/bizdir-backend/internal/session"
	"github.com/javajoker/bizdir-backend/internal/utils"
)

// Services is everything the HTTP layer calls into.
type Services struct {
	Auth       *services.AuthService
	Businesses *services.BusinessService
	Moderation *services.ModerationService
	Products   *services.ProductService
	Reviews    *services.ReviewService
	Categories *services.CategoryService
	Profiles   *services.ProfileService
	Storage    *services.StorageService
	Broker     *session.Broker
	Audit      repository.AuditRepository
	Metrics    *metrics.Metrics
}

// NewServices wires the services over store.
func NewServices(store *repository.Store, cfg *config.Config, m *metrics.Metrics, notifier services.Notifier, storage *services.StorageService) *Services {
	broker := session.NewBroker()
	businesses := services.NewBusinessService(store, notifier, m, cfg)

	return &Services{
		Auth:       services.NewAuthService(store, businesses, session.NewUserTypeCache(), broker, notifier, m, cfg),
		Businesses: businesses,
		Moderation: services.NewModerationService(store, notifier, m),
		Products:   services.NewProductService(store, businesses, m),
		Reviews:    services.NewReviewService(store, businesses, m),
		Categories: services.NewCategoryService(store),
		Profiles:   services.NewProfileService(store),
		Storage:    storage,
		Broker:     broker,
		Audit:      store.Audit,
		Metrics:    m,
	}
}

// Initialize builds the production engine on top of db.
func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	m := metrics.New(cfg.Metrics.Prefix)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	notificationService := services.NewNotificationService(cfg, m)

	svc := NewServices(repository.NewStore(db), cfg, m, notificationService, storageService)
	return New(svc, cfg), nil
}

// New registers every route.
func New(svc *Services, cfg *config.Config) *gin.Engine {
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Broker)
	businessHandler := handlers.NewBusinessHandler(svc.Businesses, svc.Products, svc.Reviews)
	categoryHandler := handlers.NewCategoryHandler(svc.Categories, svc.Businesses)
	reviewHandler := handlers.NewReviewHandler(svc.Reviews)
	profileHandler := handlers.NewProfileHandler(svc.Profiles, svc.Reviews)
	ownerHandler := handlers.NewOwnerHandler(svc.Businesses, svc.Products, svc.Storage)
	adminHandler := handlers.NewAdminHandler(svc.Moderation)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	authRequired := middleware.AuthRequired(svc.Auth)
	optionalAuth := middleware.OptionalAuth(svc.Auth)
	limit := func(h gin.HandlerFunc) gin.HandlerFunc {
		if !cfg.Server.RateLimitEnabled {
			return func(c *gin.Context) { c.Next() }
		}
		return h
	}

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics(svc.Metrics))
	r.Use(middleware.CORS(cfg.Frontend))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(limit(middleware.GeneralRateLimit()))
	r.Use(middleware.AuditLogMiddleware(svc.Audit))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})
	r.GET("/metrics", gin.WrapH(svc.Metrics.Handler()))

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", limit(middleware.AuthRateLimit()), authHandler.Register)
			auth.POST("/login", limit(middleware.AuthRateLimit()), authHandler.Login)
			auth.POST("/refresh", limit(middleware.AuthRateLimit()), authHandler.RefreshToken)
			auth.POST("/logout", authRequired, authHandler.Logout)
			auth.GET("/session", optionalAuth, authHandler.Session)
			auth.GET("/session/events", authRequired, authHandler.SessionEvents)
		}

		v1.GET("/categories", categoryHandler.List)

		businesses := v1.Group("/businesses")
		{
			businesses.GET("", businessHandler.Search)
			businesses.GET("/featured", businessHandler.Featured)
			businesses.GET("/:id", optionalAuth, businessHandler.Get)
			businesses.GET("/:id/products", optionalAuth, businessHandler.Products)
			businesses.GET("/:id/reviews", optionalAuth, businessHandler.Reviews)
			businesses.POST("/:id/reviews", authRequired, reviewHandler.Create)
		}

		reviews := v1.Group("/reviews")
		reviews.Use(authRequired)
		{
			reviews.PUT("/:id", reviewHandler.Update)
			reviews.DELETE("/:id", reviewHandler.Delete)
		}

		me := v1.Group("/me")
		me.Use(authRequired)
		{
			me.GET("/profile", profileHandler.GetProfile)
			me.PUT("/profile", profileHandler.UpdateProfile)
			me.GET("/reviews", profileHandler.MyReviews)
		}

		owner := v1.Group("/owner")
		owner.Use(authRequired, middleware.BusinessOwnerRequired())
		{
			owner.GET("/business", ownerHandler.GetBusiness)
			owner.POST("/business", ownerHandler.CreateBusiness)
			owner.PUT("/business", ownerHandler.UpdateBusiness)
			owner.POST("/business/media", limit(middleware.UploadRateLimit()), ownerHandler.UploadMedia)

			owner.GET("/products", ownerHandler.ListProducts)
			owner.POST("/products", ownerHandler.CreateProduct)
			owner.PUT("/products/:id", ownerHandler.UpdateProduct)
			owner.PUT("/products/:id/availability", ownerHandler.SetAvailability)
			owner.DELETE("/products/:id", ownerHandler.DeleteProduct)
		}

		admin := v1.Group("/admin")
		admin.Use(authRequired, middleware.AdminRequired(cfg.Admin))
		{
			admin.GET("/stats", adminHandler.GetDashboardStats)
			admin.GET("/businesses", adminHandler.ListBusinesses)
			admin.GET("/businesses/partition", adminHandler.Partition)
			admin.PUT("/businesses/:id/status", adminHandler.SetStatus)
			admin.PUT("/businesses/:id/approve", adminHandler.Approve)
			admin.PUT("/businesses/:id/reject", adminHandler.Reject)
		}
	}

	return r
}
