package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/price-tracker/internal/clock"
)

var testStart = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	ctx           context.Context
	store         *MemoryStore
	clock         *clock.MockClock
	merchants     *MerchantService
	products      *ProductService
	confirmations *ConfirmationService
	preferences   *PreferencesService
}

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	logger := zap.NewNop()
	store := NewMemoryStore(logger)
	clk := clock.NewMockClock(testStart)

	merchants := NewMerchantService(store, clk, logger)
	merchants.newID = sequence("m")
	products := NewProductService(store, merchants, nil, clk, logger)
	products.newID = sequence("p")

	return &fixture{
		ctx:           context.Background(),
		store:         store,
		clock:         clk,
		merchants:     merchants,
		products:      products,
		confirmations: NewConfirmationService(store, products, clk, logger),
		preferences:   NewPreferencesService(store, logger),
	}
}

func requireValidation(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, IsValidation(err), "expected validation error, got %v", err)
}
