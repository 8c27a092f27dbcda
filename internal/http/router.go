package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/launchbase/accountd/internal/config"
	"github.com/launchbase/accountd/internal/http/handler"
	"github.com/launchbase/accountd/internal/http/middleware"
)

// NewRouter wires Gin routes and middleware.
func NewRouter(cfg config.Config, authHandler *handler.AuthHandler, adminHandler *handler.AdminHandler, authMiddleware *middleware.Auth, rateLimiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))

	r.GET("/hello", authHandler.Hello)
	r.POST("/signup", authHandler.SignUp)
	r.POST("/login", authHandler.Login)
	r.GET("/private", authMiddleware.RequireToken, authHandler.Private)

	admin := r.Group("/admin", middleware.RequireAdminKey(cfg.AdminAPIKey))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users", adminHandler.CreateUser)
		admin.GET("/users/:id", adminHandler.GetUser)
		admin.PUT("/users/:id", adminHandler.UpdateUser)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)
	}

	return r
}
