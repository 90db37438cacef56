package catalog

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/calmora/wellness-booking-backend/internal/pkg/storage"
)

// CreateRequest carries the fields for a new catalog entry.
type CreateRequest struct {
	Title           string
	Category        string
	Description     string
	Price           float64
	DurationMinutes int
	ExpertName      string
	ImageURL        string
}

// UpdateRequest carries optional updates; nil fields are left unchanged.
type UpdateRequest struct {
	Title           *string
	Category        *string
	Description     *string
	Price           *float64
	DurationMinutes *int
	ExpertName      *string
	ImageURL        *string
	IsActive        *bool
}

// Manager is the business interface for the service catalog.
// (The entity itself is named Service, hence not the usual Service name.)
type Manager interface {
	List(ctx context.Context, filter Filter) ([]*Service, int, error)
	GetByID(ctx context.Context, id string) (*Service, error)
	Categories(ctx context.Context) ([]string, error)
	Create(ctx context.Context, req CreateRequest) (*Service, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*Service, error)
	Deactivate(ctx context.Context, id string) error

	// UploadImage normalizes and stores an uploaded service image, returning
	// the public URL path for it.
	UploadImage(ctx context.Context, content io.Reader) (string, error)
}

type manager struct {
	repo      Repository
	store     storage.Storage
	processor *storage.ImageProcessor
}

// NewManager creates a new catalog Manager.
func NewManager(repo Repository, store storage.Storage, processor *storage.ImageProcessor) Manager {
	return &manager{
		repo:      repo,
		store:     store,
		processor: processor,
	}
}

func (m *manager) List(ctx context.Context, filter Filter) ([]*Service, int, error) {
	return m.repo.List(ctx, filter)
}

func (m *manager) GetByID(ctx context.Context, id string) (*Service, error) {
	return m.repo.GetByID(ctx, id)
}

func (m *manager) Categories(ctx context.Context) ([]string, error) {
	return m.repo.Categories(ctx)
}

func (m *manager) Create(ctx context.Context, req CreateRequest) (*Service, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Category) == "" {
		return nil, ErrInvalidInput
	}
	if req.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if req.DurationMinutes <= 0 {
		return nil, ErrInvalidInput
	}

	s := &Service{
		Title:           strings.TrimSpace(req.Title),
		Category:        strings.TrimSpace(req.Category),
		Description:     optional(req.Description),
		Price:           req.Price,
		DurationMinutes: req.DurationMinutes,
		ExpertName:      optional(req.ExpertName),
		ImageURL:        optional(req.ImageURL),
		IsActive:        true,
	}

	if err := m.repo.Create(ctx, s); err != nil {
		return nil, err
	}

	return s, nil
}

func (m *manager) Update(ctx context.Context, id string, req UpdateRequest) (*Service, error) {
	s, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, ErrInvalidInput
		}
		s.Title = strings.TrimSpace(*req.Title)
	}
	if req.Category != nil {
		if strings.TrimSpace(*req.Category) == "" {
			return nil, ErrInvalidInput
		}
		s.Category = strings.TrimSpace(*req.Category)
	}
	if req.Description != nil {
		s.Description = optional(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, ErrInvalidPrice
		}
		s.Price = *req.Price
	}
	if req.DurationMinutes != nil {
		if *req.DurationMinutes <= 0 {
			return nil, ErrInvalidInput
		}
		s.DurationMinutes = *req.DurationMinutes
	}
	if req.ExpertName != nil {
		s.ExpertName = optional(*req.ExpertName)
	}
	if req.ImageURL != nil {
		s.ImageURL = optional(*req.ImageURL)
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}

	if err := m.repo.Update(ctx, s); err != nil {
		return nil, err
	}

	return s, nil
}

func (m *manager) Deactivate(ctx context.Context, id string) error {
	return m.repo.Deactivate(ctx, id)
}

func (m *manager) UploadImage(ctx context.Context, content io.Reader) (string, error) {
	// Uploads are re-encoded as JPEG, which also strips any metadata.
	normalized, err := m.processor.Normalize(content, 1280, 960)
	if err != nil {
		return "", ErrInvalidInput
	}

	filename := uuid.New().String() + ".jpg"
	relPath := path.Join("images", "services", filename)

	if err := m.store.Save(ctx, relPath, normalized); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return "/static/" + relPath, nil
}

// optional returns nil for blank strings so empty fields store as NULL.
func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
