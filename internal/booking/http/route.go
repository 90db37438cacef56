package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// Public
	g.GET("/slots", h.Slots)

	// === Authenticated Routes ===
	group := g.Group("/bookings")
	group.Use(authMiddleware)
	{
		group.GET("", h.ListMine)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.POST("/:id/retry-payment", h.RetryPayment)
		group.POST("/:id/cancel", h.Cancel)
	}

	// === Admin Routes ===
	admin := g.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.GET("/bookings", h.ListAll)
		admin.GET("/dashboard", h.Dashboard)
	}
}
