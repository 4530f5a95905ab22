package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadLocationOr(t *testing.T) {
	ref := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		input      string
		fallback   string
		wantOffset int
	}{
		{name: "plain utc", input: "UTC", fallback: "US/Pacific", wantOffset: 0},
		{name: "positive offset", input: "UTC+2", fallback: "US/Pacific", wantOffset: 2 * 3600},
		{name: "negative half hour", input: "utc-3:30", fallback: "US/Pacific", wantOffset: -(3*3600 + 30*60)},
		{name: "iana zone", input: "Asia/Tokyo", fallback: "US/Pacific", wantOffset: 9 * 3600},
		{name: "garbage uses fallback", input: "Mars/Olympus", fallback: "Asia/Tokyo", wantOffset: 9 * 3600},
		{name: "empty uses fallback", input: "", fallback: "UTC+1", wantOffset: 3600},
		{name: "everything invalid", input: "nope", fallback: "also nope", wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc := LoadLocationOr(tt.input, tt.fallback)
			_, offset := ref.In(loc).Zone()
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}

func TestPrettyDate(t *testing.T) {
	at := time.Date(2025, 3, 4, 15, 7, 0, 0, time.FixedZone("PST", -8*3600))
	assert.Equal(t, "2025-03-04 03:07 PM PST", PrettyDate(at))
}

func TestValidLocation(t *testing.T) {
	for _, name := range []string{"UTC", "utc+2", "GMT-05:30", "Europe/London"} {
		assert.True(t, ValidLocation(name), name)
	}
	for _, name := range []string{"", "skip", "Mars/Olympus", "UTC+99"} {
		assert.False(t, ValidLocation(name), name)
	}
}
