package booking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calmora/wellness-booking-backend/internal/catalog"
	"github.com/calmora/wellness-booking-backend/internal/payment"
	"go.uber.org/zap"
)

// ==== Fakes ====

// fakeRepository is an in-memory Repository that enforces the same slot
// exclusivity and guarded-update semantics as the Postgres schema.
type fakeRepository struct {
	mu       sync.Mutex
	seq      int
	bookings map[string]*Booking
	slots    map[string]string // slot key -> live booking id
	emails   map[string]string // user id -> email
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		bookings: make(map[string]*Booking),
		slots:    make(map[string]string),
		emails:   make(map[string]string),
	}
}

func slotKey(serviceID string, date time.Time, slot string) string {
	return serviceID + "|" + date.Format("2006-01-02") + "|" + slot
}

func (r *fakeRepository) Create(ctx context.Context, b *Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := slotKey(b.ServiceID, b.BookingDate, b.TimeSlot)
	if _, taken := r.slots[key]; taken {
		return ErrSlotTaken
	}

	r.seq++
	b.ID = fmt.Sprintf("booking-%d", r.seq)
	b.CreatedAt = time.Now().UTC()

	stored := *b
	r.bookings[b.ID] = &stored
	r.slots[key] = b.ID
	return nil
}

func (r *fakeRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *b
	out.UserEmail = r.emails[b.UserID]
	return &out, nil
}

func (r *fakeRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*Booking
	for _, b := range r.bookings {
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, len(out), nil
}

func (r *fakeRepository) SetPaymentOutcome(ctx context.Context, id string, expected PaymentStatus, succeeded bool, paymentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok || b.Status == StatusCancelled || b.PaymentStatus != expected {
		return ErrStateConflict
	}

	if succeeded {
		b.PaymentStatus = PaymentSuccess
		b.Status = StatusConfirmed
	} else {
		b.PaymentStatus = PaymentFailed
	}
	if paymentID != "" {
		b.PaymentID = &paymentID
	}
	return nil
}

func (r *fakeRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok || b.Status == StatusCancelled {
		return ErrStateConflict
	}

	b.Status = StatusCancelled
	b.CancelledAt = &at
	delete(r.slots, slotKey(b.ServiceID, b.BookingDate, b.TimeSlot))
	return nil
}

func (r *fakeRepository) Stats(ctx context.Context) (*Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		all = append(all, b)
	}
	s := ComputeStats(all)
	return &s, nil
}

// fakeCatalog serves services from a map. Only the read path matters here.
type fakeCatalog struct {
	mu       sync.Mutex
	services map[string]*catalog.Service
}

func newFakeCatalog(services ...*catalog.Service) *fakeCatalog {
	m := make(map[string]*catalog.Service)
	for _, s := range services {
		m[s.ID] = s
	}
	return &fakeCatalog{services: m}
}

func (f *fakeCatalog) GetByID(ctx context.Context, id string) (*catalog.Service, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.services[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeCatalog) setPrice(id string, price float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.services[id].Price = price
}

func (f *fakeCatalog) List(ctx context.Context, filter catalog.Filter) ([]*catalog.Service, int, error) {
	return nil, 0, nil
}
func (f *fakeCatalog) Categories(ctx context.Context) ([]string, error) { return nil, nil }
func (f *fakeCatalog) Create(ctx context.Context, req catalog.CreateRequest) (*catalog.Service, error) {
	return nil, nil
}
func (f *fakeCatalog) Update(ctx context.Context, id string, req catalog.UpdateRequest) (*catalog.Service, error) {
	return nil, nil
}
func (f *fakeCatalog) Deactivate(ctx context.Context, id string) error { return nil }
func (f *fakeCatalog) UploadImage(ctx context.Context, content io.Reader) (string, error) {
	return "", nil
}

// scriptedOracle replays a fixed sequence of charge outcomes.
type scriptedOracle struct {
	mu      sync.Mutex
	results []payment.Result
	errs    []error
	calls   int
}

func (o *scriptedOracle) Charge(ctx context.Context, amount float64) (payment.Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	i := o.calls
	o.calls++

	if i < len(o.errs) && o.errs[i] != nil {
		return payment.Result{}, o.errs[i]
	}
	if i < len(o.results) {
		return o.results[i], nil
	}
	// Default to approving once the script runs out.
	return payment.Result{Succeeded: true, PaymentID: payment.NewPaymentID()}, nil
}

func approve() payment.Result {
	return payment.Result{Succeeded: true, PaymentID: payment.NewPaymentID(), Message: "Payment successful"}
}

func decline() payment.Result {
	return payment.Result{Succeeded: false, PaymentID: payment.NewPaymentID(), Message: "Payment failed"}
}

// recordingMailer collects sent messages.
type recordingMailer struct {
	mu       sync.Mutex
	subjects []string
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

// ==== Fixture ====

var testNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc     *service
	repo    *fakeRepository
	catalog *fakeCatalog
	oracle  *scriptedOracle
	mailer  *recordingMailer
}

func newFixture(t *testing.T, oracle *scriptedOracle) *fixture {
	t.Helper()

	repo := newFakeRepository()
	repo.emails["user-1"] = "customer@example.com"

	cat := newFakeCatalog(&catalog.Service{
		ID:              "svc-1",
		Title:           "Deep Tissue Massage",
		Category:        "massage",
		Price:           500,
		DurationMinutes: 60,
		IsActive:        true,
	})

	mailer := &recordingMailer{}
	s := NewService(repo, cat, oracle, mailer, DefaultCancellationPolicy(), 5*time.Second, zap.NewNop()).(*service)
	s.now = func() time.Time { return testNow }

	return &fixture{svc: s, repo: repo, catalog: cat, oracle: oracle, mailer: mailer}
}

func createReq() CreateRequest {
	return CreateRequest{
		UserID:      "user-1",
		ServiceID:   "svc-1",
		BookingDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		TimeSlot:    "10:00",
	}
}

// ==== Tests ====

func TestCreateBooking_PaymentSuccess(t *testing.T) {
	f := newFixture(t, &scriptedOracle{results: []payment.Result{approve()}})

	b, err := f.svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, PaymentSuccess, b.PaymentStatus)
	require.NotNil(t, b.PaymentID)
	assert.Contains(t, *b.PaymentID, "PAY_")
	assert.Equal(t, 500.0, b.TotalAmount)
	assert.Contains(t, f.mailer.subjects, "Booking Confirmed!")
}

func TestCreateBooking_PaymentFailure(t *testing.T) {
	f := newFixture(t, &scriptedOracle{results: []payment.Result{decline()}})

	b, err := f.svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	// A failed charge is a normal outcome, not an error: the slot stays
	// held and the booking is retryable.
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentFailed, b.PaymentStatus)
	assert.Contains(t, f.mailer.subjects, "Payment Failed")
}

func TestCreateBooking_OracleErrorCountsAsFailure(t *testing.T) {
	f := newFixture(t, &scriptedOracle{errs: []error{errors.New("gateway unreachable")}})

	b, err := f.svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentFailed, b.PaymentStatus)
	assert.Nil(t, b.PaymentID)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newFixture(t, &scriptedOracle{})

	t.Run("invalid slot", func(t *testing.T) {
		req := createReq()
		req.TimeSlot = "10:30"
		_, err := f.svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidSlot)
	})

	t.Run("slot in the past", func(t *testing.T) {
		req := createReq()
		req.BookingDate = testNow.AddDate(0, 0, -1)
		_, err := f.svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrDatePast)
	})

	t.Run("unknown service", func(t *testing.T) {
		req := createReq()
		req.ServiceID = "svc-missing"
		_, err := f.svc.Create(context.Background(), req)
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})

	t.Run("inactive service", func(t *testing.T) {
		f.catalog.services["svc-1"].IsActive = false
		defer func() { f.catalog.services["svc-1"].IsActive = true }()

		_, err := f.svc.Create(context.Background(), createReq())
		assert.ErrorIs(t, err, ErrServiceUnavailable)
	})
}

func TestCreateBooking_SlotConflict(t *testing.T) {
	f := newFixture(t, &scriptedOracle{})

	_, err := f.svc.Create(context.Background(), createReq())
	require.NoError(t, err)

	req := createReq()
	req.UserID = "user-2"
	_, err = f.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestCreateBooking_ConcurrentSameSlot(t *testing.T) {
	f := newFixture(t, &scriptedOracle{})

	const racers = 8
	errs := make([]error, racers)

	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := createReq()
			req.UserID = fmt.Sprintf("user-%d", i)
			_, errs[i] = f.svc.Create(context.Background(), req)
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotTaken):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one racer should win the slot")
	assert.Equal(t, racers-1, conflicts)
}

func TestRetryPayment(t *testing.T) {
	owner := Actor{UserID: "user-1"}

	t.Run("retry after failure confirms on success", func(t *testing.T) {
		f := newFixture(t, &scriptedOracle{results: []payment.Result{decline(), approve()}})

		b, err := f.svc.Create(context.Background(), createReq())
		require.NoError(t, err)
		require.Equal(t, PaymentFailed, b.PaymentStatus)

		b, err = f.svc.RetryPayment(context.Background(), b.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, StatusConfirmed, b.Status)
		assert.Equal(t, PaymentSuccess, b.PaymentStatus)
		assert.Contains(t, f.mailer.subjects, "Payment Successful!")
	})

	t.Run("retry can fail again and stay retryable", func(t *testing.T) {
		f := newFixture(t, &scriptedOracle{results: []payment.Result{decline(), decline(), approve()}})

		b, err := f.svc.Create(context.Background(), createReq())
		require.NoError(t, err)

		b, err = f.svc.RetryPayment(context.Background(), b.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, PaymentFailed, b.PaymentStatus)

		b, err = f.svc.RetryPayment(context.Background(), b.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, PaymentSuccess, b.PaymentStatus)
	})

	t.Run("not retryable when already confirmed", func(t *testing.T) {
		f := newFixture(t, &scriptedOracle{results: []payment.Result{approve()}})

		b, err := f.svc.Create(context.Background(), createReq())
		require.NoError(t, err)

		_, err = f.svc.RetryPayment(context.Background(), b.ID, owner)
		assert.ErrorIs(t, err, ErrNotRetryable)
	})

	t.Run("not retryable when cancelled", func(t *testing.T) {
		f := newFixture(t, &scriptedOracle{results: []payment.Result{decline()}})

		b, err := f.svc.Create(context.Background(), createReq())
		require.NoError(t, err)

		_, err = f.svc.Cancel(context.Background(), b.ID, owner)
		require.NoError(t, err)

		_, err = f.svc.RetryPayment(context.Background(), b.ID, owner)
		assert.ErrorIs(t, err, ErrNotRetryable)
	})

	t.Run("owner only", func(t *testing.T) {
		f := newFixture(t, &scriptedOracle{results: []payment.Result{decline()}})

		b, err := f.svc.Create(context.Background(), createReq())
		require.NoError(t, err)

		_, err = f.svc.RetryPayment(context.Background(), b.ID, Actor{UserID: "user-2"})
		assert.ErrorIs(t, err, ErrPermissionDenied)

		// Admins do not get to retry someone else's payment either.
		_, err = f.svc.RetryPayment(context.Background(), b.ID, Actor{UserID: "admin-1", IsAdmin: true})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})
}

func TestCancel(t *testing.T) {
	owner := Actor{UserID: "user-1"}

	t.Run("cancel outside the window", func(t *testing.T) {
		f := newFixture(t, &scriptedOracle{results: []payment.Result{approve()}})

		b, err := f.svc.Create(context.Background(), createReq())
		require.NoError(t, err)

		b, err = f.svc.Cancel(context.Background(), b.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, b.Status)
		require.NotNil(t, b.CancelledAt)
		assert.Contains(t, f.mailer.subjects, "Booking Cancelled")
	})

	t.Run("cancellation releases the slot", func(t *testing.T) {
		f := newFixture(t, &scriptedOracle{})

		b, err := f.svc.Create(context.Background(), createReq())
		require.NoError(t, err)

		_, err = f.svc.Cancel(context.Background(), b.ID, owner)
		require.NoError(t, err)

		req := createReq()
		req.UserID = "user-2"
		rebooked, err := f.svc.Create(context.Background(), req)
		require.NoError(t, err)
		assert.NotEqual(t, b.ID, rebooked.ID)
	})

	t.Run("window closed within 24 hours of start", func(t *testing.T) {
		f := newFixture(t, &scriptedOracle{results: []payment.Result{approve()}})

		b, err := f.svc.Create(context.Background(), createReq())
		require.NoError(t, err)

		// Slot starts 2026-03-10T10:00Z. 23h before is inside the window.
		f.svc.now = func() time.Time { return time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC) }
		_, err = f.svc.Cancel(context.Background(), b.ID, owner)
		assert.ErrorIs(t, err, ErrWindowClosed)

		// The window binds admins too.
		_, err = f.svc.Cancel(context.Background(), b.ID, Actor{UserID: "admin-1", IsAdmin: true})
		assert.ErrorIs(t, err, ErrWindowClosed)
	})

	t.Run("already cancelled", func(t *testing.T) {
		f := newFixture(t, &scriptedOracle{})

		b, err := f.svc.Create(context.Background(), createReq())
		require.NoError(t, err)

		_, err = f.svc.Cancel(context.Background(), b.ID, owner)
		require.NoError(t, err)

		_, err = f.svc.Cancel(context.Background(), b.ID, owner)
		assert.ErrorIs(t, err, ErrAlreadyCancelled)
	})

	t.Run("permissions", func(t *testing.T) {
		f := newFixture(t, &scriptedOracle{})

		b, err := f.svc.Create(context.Background(), createReq())
		require.NoError(t, err)

		_, err = f.svc.Cancel(context.Background(), b.ID, Actor{UserID: "user-2"})
		assert.ErrorIs(t, err, ErrPermissionDenied)

		_, err = f.svc.Cancel(context.Background(), b.ID, Actor{UserID: "admin-1", IsAdmin: true})
		assert.NoError(t, err)
	})
}

func TestPriceSnapshot(t *testing.T) {
	f := newFixture(t, &scriptedOracle{results: []payment.Result{approve()}})

	b, err := f.svc.Create(context.Background(), createReq())
	require.NoError(t, err)
	require.Equal(t, 500.0, b.TotalAmount)

	// A later price change never reaches the existing booking or revenue.
	f.catalog.setPrice("svc-1", 900)

	got, err := f.svc.GetByID(context.Background(), b.ID, Actor{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 500.0, got.TotalAmount)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 500.0, stats.TotalRevenue)
}

func TestBookingLifecycleScenario(t *testing.T) {
	// Fail twice, then approve, then cancel: the full state machine walk.
	f := newFixture(t, &scriptedOracle{results: []payment.Result{decline(), decline(), approve()}})
	owner := Actor{UserID: "user-1"}

	b, err := f.svc.Create(context.Background(), createReq())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)
	assert.Equal(t, PaymentFailed, b.PaymentStatus)

	b, err = f.svc.RetryPayment(context.Background(), b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, b.Status)

	b, err = f.svc.RetryPayment(context.Background(), b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, PaymentSuccess, b.PaymentStatus)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ConfirmedBookings)
	assert.Equal(t, 500.0, stats.TotalRevenue)

	b, err = f.svc.Cancel(context.Background(), b.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, b.Status)

	stats, err = f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CancelledBookings)
	assert.Equal(t, 0, stats.ConfirmedBookings)
	// Revenue still counts the successful charge; cancellation is not a refund.
	assert.Equal(t, 500.0, stats.TotalRevenue)
}
