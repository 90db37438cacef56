package http

import (
	"time"

	"github.com/calmora/wellness-booking-backend/internal/catalog"
	"github.com/calmora/wellness-booking-backend/internal/pkg/request"
)

// ListServicesRequest defines query parameters for listing services.
type ListServicesRequest struct {
	request.ListParams
	Category string `form:"category"`
}

// ServiceResponse is the shape of catalog data returned in API responses.
type ServiceResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Category        string    `json:"category"`
	Description     *string   `json:"description"`
	Price           float64   `json:"price"`
	DurationMinutes int       `json:"duration_minutes"`
	ExpertName      *string   `json:"expert_name"`
	ImageURL        *string   `json:"image_url"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// ServiceTag is a brief representation of a service embedded in other responses.
type ServiceTag struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func NewServiceResponse(s *catalog.Service) ServiceResponse {
	return ServiceResponse{
		ID:              s.ID,
		Title:           s.Title,
		Category:        s.Category,
		Description:     s.Description,
		Price:           s.Price,
		DurationMinutes: s.DurationMinutes,
		ExpertName:      s.ExpertName,
		ImageURL:        s.ImageURL,
		IsActive:        s.IsActive,
		CreatedAt:       s.CreatedAt,
	}
}

// CreateServiceRequest is the admin payload for creating a service.
type CreateServiceRequest struct {
	Title           string  `json:"title" binding:"required"`
	Category        string  `json:"category" binding:"required"`
	Description     string  `json:"description"`
	Price           float64 `json:"price" binding:"min=0"`
	DurationMinutes int     `json:"duration_minutes" binding:"required,min=1"`
	ExpertName      string  `json:"expert_name"`
	ImageURL        string  `json:"image_url"`
}

// UpdateServiceRequest is the admin payload for partial service updates.
type UpdateServiceRequest struct {
	Title           *string  `json:"title"`
	Category        *string  `json:"category"`
	Description     *string  `json:"description"`
	Price           *float64 `json:"price"`
	DurationMinutes *int     `json:"duration_minutes"`
	ExpertName      *string  `json:"expert_name"`
	ImageURL        *string  `json:"image_url"`
	IsActive        *bool    `json:"is_active"`
}

// CategoriesResponse lists the distinct active service categories.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
}

// UploadImageResponse returns the public URL of an uploaded image.
type UploadImageResponse struct {
	ImageURL string `json:"image_url"`
}
