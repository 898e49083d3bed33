package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderconfig/internal/session"
)

// NewRouter mounts the health check and the configurator routes. Every
// session route runs behind authMW, which must set "userID".
func NewRouter(h *session.Handler, authMW gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	Mount(r, h, authMW)
	return r
}

// Mount registers the routes on an existing engine.
func Mount(r *gin.Engine, h *session.Handler, authMW gin.HandlerFunc) {
	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ───────────────────────── CONFIGURATOR ─────────────────────────
	sessions := r.Group("/sessions")
	sessions.Use(authMW)
	{
		sessions.POST("", h.Open)
		sessions.GET("/:id", h.Get)
		sessions.DELETE("/:id", h.Close)
		sessions.POST("/:id/actions", h.Apply)
		sessions.POST("/:id/save", h.Save)
		sessions.DELETE("/:id/saved/:index", h.RemoveSaved)
		sessions.POST("/:id/clear", h.Clear)
		sessions.POST("/:id/refresh", h.Refresh)
		sessions.POST("/:id/confirm", h.Confirm)
	}

	// ───────────────────────── CART ─────────────────────────
	cartGroup := r.Group("/cart")
	cartGroup.Use(authMW)
	{
		cartGroup.GET("", h.Cart)
	}
}
