package requestcontext

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"keyledger/pkg/domain"
)

func TestCallerDefaultsToZeroAddress(t *testing.T) {
	assert.True(t, Caller(context.Background()).IsZero())

	alice := domain.MustParseAddress("0x00000000000000000000000000000000000000a1")
	ctx := WithCaller(context.Background(), alice)
	assert.Equal(t, alice, Caller(ctx))
}

func TestPaymentIsCopied(t *testing.T) {
	assert.Equal(t, 0, Payment(context.Background()).Sign())

	amount := big.NewInt(100)
	ctx := WithPayment(context.Background(), amount)
	amount.SetInt64(5)
	assert.Equal(t, int64(100), Payment(ctx).Int64())

	got := Payment(ctx)
	got.SetInt64(1)
	assert.Equal(t, int64(100), Payment(ctx).Int64())

	assert.Equal(t, 0, Payment(WithPayment(ctx, nil)).Sign())
}

func TestNowUsesInjectedTime(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	ctx := WithTime(context.Background(), fixed)

	assert.True(t, HasTime(ctx))
	assert.False(t, HasTime(context.Background()))
	assert.Equal(t, fixed, Now(ctx))
}
