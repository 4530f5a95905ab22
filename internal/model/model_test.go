package model

import (
	"encoding/json"
	"testing"

	"cryptiq/internal/onboarding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAlert_DistinctIDs(t *testing.T) {
	a := NewAlert("1", " BTC ", 50000)
	b := NewAlert("1", "btc", 50000)

	assert.Equal(t, "btc", a.Coin)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestAlertBook_Symbols(t *testing.T) {
	book := AlertBook{
		"1": {NewAlert("1", "btc", 1), NewAlert("1", "eth", 2)},
		"2": {NewAlert("2", "btc", 3), NewAlert("2", "doge", 4)},
		"3": {},
	}

	assert.Equal(t, []string{"btc", "doge", "eth"}, book.Symbols())
	assert.Equal(t, []string{"1", "2"}, book.UserIDs())
	assert.Empty(t, AlertBook{}.Symbols())
}

func TestUserProfile_CompleteOnboarding(t *testing.T) {
	p := NewUserProfile("42")
	p.Onboarding, _ = onboarding.Begin()
	require.True(t, p.IsOnboarding())

	p.CompleteOnboarding(&onboarding.Result{
		Holdings: map[string]float64{"btc": 0.5},
		Strategy: "HODL",
		Timezone: "UTC",
	})

	assert.False(t, p.IsOnboarding())
	assert.Equal(t, Holdings{"btc": 0.5}, p.Holdings)
	assert.Equal(t, "HODL", p.Strategy)
	assert.Equal(t, "UTC", p.Timezone)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "setup_step")
}

func TestHoldings_Symbols(t *testing.T) {
	assert.Equal(t, []string{"btc", "eth", "sol"}, Holdings{"sol": 1, "btc": 2, "eth": 3}.Symbols())
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, NotSet, Display(""))
	assert.Equal(t, "HODL", Display("HODL"))
}
