package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanMarkdown(t *testing.T) {
	in := "### Outlook\n**BTC** looks strong\n- hold\n- watch LTC"
	assert.Equal(t, "Outlook\nBTC looks strong\n• hold\n• watch LTC", CleanMarkdown(in))
}

func TestSafeCall(t *testing.T) {
	err := SafeCall(func() error { panic("boom") })
	assert.EqualError(t, err, "panic recovered: boom")

	want := errors.New("plain")
	assert.Equal(t, want, SafeCall(func() error { return want }))
	assert.NoError(t, SafeCall(func() error { return nil }))
}

func TestFormatPercentage(t *testing.T) {
	assert.Equal(t, "+2.50%", FormatPercentage(2.5))
	assert.Equal(t, "-0.10%", FormatPercentage(-0.1))
}
