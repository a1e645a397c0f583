// Package transport exposes the storefront over HTTP/JSON.
package transport

import (
	"net/http"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/product"
	"storefront-be/internal/review"

	"github.com/gin-gonic/gin"
)

type Services struct {
	Products product.Service
	Orders   order.Service
	Reviews  review.Service
	Auth     auth.Service
}

type RouterConfig struct {
	CORSOrigins []string
	// Limiter is optional; nil disables rate limiting.
	Limiter *middleware.Limiter
	// Notifications, when set, adds the notification counters to /health.
	Notifications func() metrics.OutcomeSnapshot
}

func NewRouter(svc Services, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestID(), logger.AccessLog(), middleware.CORS(cfg.CORSOrigins))
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware())
	}
	r.MaxMultipartMemory = maxMultipartMemory

	r.GET("/health", func(c *gin.Context) {
		body := gin.H{"status": "OK"}
		if cfg.Notifications != nil {
			body["notifications"] = cfg.Notifications()
		}
		c.JSON(http.StatusOK, body)
	})

	products := &productHandler{svc: svc.Products}
	orders := &orderHandler{svc: svc.Orders}
	reviews := &reviewHandler{svc: svc.Reviews, admin: svc.Auth}
	admin := &adminHandler{svc: svc.Auth}

	requireAdmin := middleware.RequireAdmin(svc.Auth)

	r.POST("/admin/login", admin.login)
	r.POST("/admin/logout", admin.logout)

	r.GET("/products", products.list)
	r.GET("/products/:id", products.get)
	r.PATCH("/products", products.decrementStock)
	r.POST("/products", requireAdmin, products.create)
	r.PUT("/products/:id", requireAdmin, products.update)
	r.DELETE("/products/:id", requireAdmin, products.delete)

	r.POST("/orders", orders.create)
	r.GET("/orders", requireAdmin, orders.list)
	r.GET("/orders/:id", requireAdmin, orders.get)
	r.PUT("/orders/:id/deliver", requireAdmin, orders.markDelivered)

	r.POST("/reviews", reviews.create)
	r.GET("/reviews", reviews.list)
	r.DELETE("/reviews/:id", requireAdmin, reviews.delete)

	return r
}
