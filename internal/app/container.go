package app

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/calmora/wellness-booking-backend/internal/api"
	"github.com/calmora/wellness-booking-backend/internal/auth"
	"github.com/calmora/wellness-booking-backend/internal/booking"
	"github.com/calmora/wellness-booking-backend/internal/catalog"
	"github.com/calmora/wellness-booking-backend/internal/mail"
	"github.com/calmora/wellness-booking-backend/internal/payment"
	"github.com/calmora/wellness-booking-backend/internal/pkg/storage"
	"github.com/calmora/wellness-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	PaymentTimeout     time.Duration
	PaymentSuccessRate float64

	MailDir    string
	StorageDir string
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	UserService    user.Service
	BookingService booking.Service
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	mailer, err := mail.NewFileMailer(cfg.MailDir, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("init mailer: %w", err)
	}

	store, err := storage.NewLocalStorage(cfg.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher, mailer, cfg.Logger)

	// Catalog Module
	catalogRepo := catalog.NewPgxRepository(cfg.DBPool)
	catalogManager := catalog.NewManager(catalogRepo, store, storage.NewImageProcessor())

	// Payment Oracle
	oracle := payment.NewMockGateway(cfg.PaymentSuccessRate, time.Now().UnixNano(), cfg.Logger)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(
		bookingRepo,
		catalogManager,
		oracle,
		mailer,
		booking.DefaultCancellationPolicy(),
		cfg.PaymentTimeout,
		cfg.Logger,
	)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		StaticDir:      cfg.StorageDir,
		UserService:    userService,
		CatalogManager: catalogManager,
		BookingService: bookingService,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		UserService:    userService,
		BookingService: bookingService,
	}, nil
}
