package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 0, want: "$0.00"},
		{in: 49000, want: "$49,000.00"},
		{in: 1234567.891, want: "$1,234,567.89"},
		{in: -12.5, want: "-$12.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatUSD(tt.in))
	}
}

func TestFormatPriceAlert(t *testing.T) {
	at := time.Date(2025, 5, 6, 9, 30, 0, 0, time.FixedZone("PDT", -7*3600))

	msg := FormatPriceAlert("btc", 49000, 50000, at)

	assert.Equal(t,
		"Alert: BTC has reached $49,000.00 (target: $50,000.00)!\nTime: 2025-05-06 09:30 AM PDT\n\nCryptiq does not offer financial advice.",
		msg,
	)
}

func TestFormatNews(t *testing.T) {
	msg := FormatNews([]NewsItem{{Title: "BTC & ETH rally", URL: "https://example.com/a?x=1&y=2"}})

	assert.True(t, strings.HasPrefix(msg, "📰 Latest Crypto News:\n\n• "))
	assert.Contains(t, msg, `<a href="https://example.com/a?x=1&amp;y=2">BTC &amp; ETH rally</a>`)
	assert.Contains(t, msg, "Cryptiq does not offer financial advice.")
	assert.Equal(t, "No news found.\n\nCryptiq does not offer financial advice.", FormatNews(nil))
}
