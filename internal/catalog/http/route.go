package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	// === Public Routes ===
	group := g.Group("/services")
	{
		group.GET("", h.List)
		group.GET("/categories", h.Categories)
		group.GET("/:id", h.Get)
	}

	// === Admin Routes ===
	admin := g.Group("/admin/services")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("", h.Create)
		admin.PUT("/:id", h.Update)
		admin.DELETE("/:id", h.Deactivate)
		admin.POST("/upload-image", h.UploadImage)
	}
}
