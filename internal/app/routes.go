package app

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	"github.com/kiliiie/newport-bank-backend/internal/auth"
	"github.com/kiliiie/newport-bank-backend/internal/cache"
	"github.com/kiliiie/newport-bank-backend/internal/config"
	dom "github.com/kiliiie/newport-bank-backend/internal/domain"
	"github.com/kiliiie/newport-bank-backend/internal/events"
	"github.com/kiliiie/newport-bank-backend/internal/handlers"
	"github.com/kiliiie/newport-bank-backend/internal/repo"
	"github.com/kiliiie/newport-bank-backend/internal/service"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, db *pgxpool.Pool, rdb *redis.Client, publisher events.Publisher) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	sessionStore := auth.NewStore(rdb, cfg.Session.TTL.Duration())
	accountRepo := repo.NewPGAccountRepo(db)
	statementCache := cache.NewStatementCache(rdb, cfg.Redis.StatementTTL.Duration())
	accountSvc := service.NewAccountService(accountRepo, statementCache)
	ledgerSvc := service.NewLedgerService(accountRepo, statementCache, publisher)

	cookieAge := int(cfg.Session.TTL.Duration().Seconds())
	authHandler := handlers.NewAuthHandler(sessionStore, accountSvc, cookieAge)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)

	protected := api.Group("", auth.RequireSession(sessionStore))
	accountHandler := handlers.NewAccountHandler(accountSvc, ledgerSvc)
	protected.GET("/me", accountHandler.Me)
	protected.POST("/transactions", accountHandler.Transaction)

	admin := protected.Group("/admin", auth.RequireRole(dom.RoleAdmin))
	adminHandler := handlers.NewAdminHandler(accountSvc)
	admin.GET("/pending", adminHandler.Pending)
	admin.POST("/approve/:id", adminHandler.Approve)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Newport Bank API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}
