package catalog

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmora/wellness-booking-backend/internal/pkg/storage"
)

type fakeCatalogRepository struct {
	mu       sync.Mutex
	seq      int
	services map[string]*Service
}

func newFakeCatalogRepository() *fakeCatalogRepository {
	return &fakeCatalogRepository{services: make(map[string]*Service)}
}

func (r *fakeCatalogRepository) Create(ctx context.Context, s *Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	s.ID = fmt.Sprintf("svc-%d", r.seq)
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *fakeCatalogRepository) GetByID(ctx context.Context, id string) (*Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeCatalogRepository) List(ctx context.Context, filter Filter) ([]*Service, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Service
	for _, s := range r.services {
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		if filter.Category != "" && s.Category != filter.Category {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeCatalogRepository) Categories(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, s := range r.services {
		if s.IsActive && !seen[s.Category] {
			seen[s.Category] = true
			out = append(out, s.Category)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepository) Update(ctx context.Context, s *Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.services[s.ID]; !ok {
		return ErrNotFound
	}
	cp := *s
	r.services[s.ID] = &cp
	return nil
}

func (r *fakeCatalogRepository) Deactivate(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.services[id]
	if !ok {
		return ErrNotFound
	}
	s.IsActive = false
	return nil
}

type memoryStorage struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{files: make(map[string][]byte)}
}

func (s *memoryStorage) Save(ctx context.Context, path string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[path] = data
	return nil
}

func (s *memoryStorage) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, path)
	return nil
}

func newTestManager() (Manager, *fakeCatalogRepository, *memoryStorage) {
	repo := newFakeCatalogRepository()
	store := newMemoryStorage()
	return NewManager(repo, store, storage.NewImageProcessor()), repo, store
}

func TestCreateService(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		s, err := m.Create(ctx, CreateRequest{
			Title:           "  Hot Stone Massage ",
			Category:        "massage",
			Description:     "90 minutes of warm stones",
			Price:           1200,
			DurationMinutes: 90,
			ExpertName:      "Mei Lin",
		})
		require.NoError(t, err)

		assert.NotEmpty(t, s.ID)
		assert.Equal(t, "Hot Stone Massage", s.Title)
		assert.True(t, s.IsActive)
		require.NotNil(t, s.ExpertName)
		assert.Equal(t, "Mei Lin", *s.ExpertName)
	})

	t.Run("blank title", func(t *testing.T) {
		_, err := m.Create(ctx, CreateRequest{Title: "  ", Category: "massage", Price: 100, DurationMinutes: 60})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("negative price", func(t *testing.T) {
		_, err := m.Create(ctx, CreateRequest{Title: "Yoga", Category: "fitness", Price: -1, DurationMinutes: 60})
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("zero duration", func(t *testing.T) {
		_, err := m.Create(ctx, CreateRequest{Title: "Yoga", Category: "fitness", Price: 100})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestUpdateService(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	s, err := m.Create(ctx, CreateRequest{
		Title: "Yoga Flow", Category: "fitness", Price: 400, DurationMinutes: 60,
	})
	require.NoError(t, err)

	newPrice := 450.0
	inactive := false
	updated, err := m.Update(ctx, s.ID, UpdateRequest{Price: &newPrice, IsActive: &inactive})
	require.NoError(t, err)
	assert.Equal(t, 450.0, updated.Price)
	assert.False(t, updated.IsActive)

	// Untouched fields survive a partial update.
	assert.Equal(t, "Yoga Flow", updated.Title)
	assert.Equal(t, 60, updated.DurationMinutes)

	t.Run("negative price rejected", func(t *testing.T) {
		bad := -5.0
		_, err := m.Update(ctx, s.ID, UpdateRequest{Price: &bad})
		assert.ErrorIs(t, err, ErrInvalidPrice)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := m.Update(ctx, "svc-missing", UpdateRequest{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDeactivateHidesFromListing(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	s, err := m.Create(ctx, CreateRequest{
		Title: "Sauna Session", Category: "spa", Price: 300, DurationMinutes: 45,
	})
	require.NoError(t, err)

	require.NoError(t, m.Deactivate(ctx, s.ID))

	active, total, err := m.List(ctx, Filter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Empty(t, active)
	assert.Zero(t, total)

	// The row itself stays fetchable; bookings reference it by id.
	got, err := m.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestUploadImage(t *testing.T) {
	m, _, store := newTestManager()
	ctx := context.Background()

	// A 2000x1000 source must come back fitted into 1280x960.
	src := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, src, nil))

	url, err := m.UploadImage(ctx, buf)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "/static/images/services/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	rel := strings.TrimPrefix(url, "/static/")
	data, ok := store.files[rel]
	require.True(t, ok, "image should be written to storage")

	img, err := jpeg.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1280, img.Bounds().Dx())
	assert.Equal(t, 640, img.Bounds().Dy())

	t.Run("rejects non-image content", func(t *testing.T) {
		_, err := m.UploadImage(ctx, strings.NewReader("definitely not an image"))
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
