package service

import (
	"context"
	"math"
	"testing"

	"cryptiq/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertService_SetAlert(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)
	svc := NewAlertService(logger.NewNop(), deps.repo.AlertRepo)

	first, err := svc.SetAlert(ctx, "1", "BTC", 70000)
	require.NoError(t, err)
	second, err := svc.SetAlert(ctx, "1", "btc", 70000)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID, "identical alerts are kept apart")

	for _, price := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := svc.SetAlert(ctx, "1", "btc", price)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
	_, err = svc.SetAlert(ctx, "1", " ", 1)
	assert.ErrorIs(t, err, ErrInvalidInput)

	alerts, err := svc.ListAlerts(ctx, "1")
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, "btc", alerts[0].Coin)
	assert.Equal(t, 70000.0, alerts[1].Price)
}
