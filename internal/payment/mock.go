package payment

import (
	"context"
	"math/rand"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MockGateway is an Oracle that approves a configurable fraction of charges.
// It stands in for a real payment provider in development and demos.
type MockGateway struct {
	successRate float64
	logger      *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewMockGateway creates a MockGateway approving successRate (0.0 - 1.0) of
// charge attempts.
func NewMockGateway(successRate float64, seed int64, logger *zap.Logger) *MockGateway {
	return &MockGateway{
		successRate: successRate,
		logger:      logger,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// Charge decides the outcome of a charge attempt. Every attempt gets a fresh
// payment reference, approved or not.
func (g *MockGateway) Charge(ctx context.Context, amount float64) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()

	res := Result{
		Succeeded: roll < g.successRate,
		PaymentID: NewPaymentID(),
	}
	if res.Succeeded {
		res.Message = "Payment successful"
	} else {
		res.Message = "Payment failed"
	}

	g.logger.Debug("mock charge",
		zap.Float64("amount", amount),
		zap.String("payment_id", res.PaymentID),
		zap.Bool("succeeded", res.Succeeded),
	)

	return res, nil
}

// NewPaymentID generates a payment reference like PAY_3F0A9C21D4B8.
func NewPaymentID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "PAY_" + strings.ToUpper(hex[:12])
}
