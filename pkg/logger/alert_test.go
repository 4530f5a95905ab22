package logger

import (
	"errors"
	"testing"
	"time"

	"cryptiq/pkg/common"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestHasAlertFlag(t *testing.T) {
	tests := []struct {
		name   string
		fields []zapcore.Field
		want   bool
	}{
		{name: "no fields", fields: nil, want: false},
		{name: "flag false", fields: []zapcore.Field{zap.Bool(common.KEY_LOG_HOOK_SEND_ALERT, false)}, want: false},
		{name: "flag true", fields: []zapcore.Field{zap.String("user_id", "1"), zap.Bool(common.KEY_LOG_HOOK_SEND_ALERT, true)}, want: true},
		{name: "wrong type", fields: []zapcore.Field{zap.String(common.KEY_LOG_HOOK_SEND_ALERT, "true")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasAlertFlag(tt.fields))
		})
	}
}

func TestFormatAlert(t *testing.T) {
	entry := zapcore.Entry{
		Level:   zapcore.ErrorLevel,
		Message: "alert cycle failed",
		Time:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	fields := []zapcore.Field{
		zap.String("user_id", "42"),
		zap.Error(errors.New("boom")),
		zap.Bool(common.KEY_LOG_HOOK_SEND_ALERT, true),
	}

	msg := formatAlert(entry, fields)

	assert.Contains(t, msg, "ERROR alert")
	assert.Contains(t, msg, "Message: alert cycle failed")
	assert.Contains(t, msg, "• error: boom")
	assert.Contains(t, msg, "• user_id: 42")
	assert.Contains(t, msg, "Time: 2025-01-02 03:04:05")
	assert.NotContains(t, msg, common.KEY_LOG_HOOK_SEND_ALERT)
}

func TestWithTelegramAlert_NoChatIsNoop(t *testing.T) {
	core := zapcore.NewNopCore()
	wrapped := WithTelegramAlert("token", "")(core)
	assert.Equal(t, core, wrapped)
}
