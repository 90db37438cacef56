package payment

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var paymentIDPattern = regexp.MustCompile(`^PAY_[0-9A-F]{12}$`)

func TestNewPaymentID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewPaymentID()
		assert.Regexp(t, paymentIDPattern, id)
		assert.False(t, seen[id], "payment ids should not repeat")
		seen[id] = true
	}
}

func TestMockGatewayRateExtremes(t *testing.T) {
	t.Run("rate 1.0 always approves", func(t *testing.T) {
		g := NewMockGateway(1.0, 42, zap.NewNop())
		for i := 0; i < 50; i++ {
			res, err := g.Charge(context.Background(), 500)
			require.NoError(t, err)
			assert.True(t, res.Succeeded)
			assert.Regexp(t, paymentIDPattern, res.PaymentID)
		}
	})

	t.Run("rate 0.0 always declines", func(t *testing.T) {
		g := NewMockGateway(0.0, 42, zap.NewNop())
		for i := 0; i < 50; i++ {
			res, err := g.Charge(context.Background(), 500)
			require.NoError(t, err)
			assert.False(t, res.Succeeded)
			// Declined charges still carry a payment reference.
			assert.Regexp(t, paymentIDPattern, res.PaymentID)
		}
	})
}

func TestMockGatewayCancelledContext(t *testing.T) {
	g := NewMockGateway(1.0, 1, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Charge(ctx, 500)
	assert.ErrorIs(t, err, context.Canceled)
}
