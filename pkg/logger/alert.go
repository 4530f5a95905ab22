package logger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cryptiq/pkg/common"
	"cryptiq/pkg/httpclient"

	"go.uber.org/zap/zapcore"
)

const telegramAPIBaseURL = "https://api.telegram.org"

// AlertCore forwards entries flagged with send_alert to an operator chat.
type AlertCore struct {
	core     zapcore.Core
	minLevel zapcore.Level
	client   httpclient.HTTPClient
	token    string
	chatID   string
}

// WithTelegramAlert tees flagged error entries to the operator chat. When the
// chat id is empty the option is a no-op.
func WithTelegramAlert(botToken, chatID string) Option {
	return func(core zapcore.Core) zapcore.Core {
		if botToken == "" || chatID == "" {
			return core
		}
		return &AlertCore{
			core:     core,
			minLevel: zapcore.ErrorLevel,
			client:   httpclient.New(telegramAPIBaseURL, 5*time.Second),
			token:    botToken,
			chatID:   chatID,
		}
	}
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	clone := *a
	clone.core = a.core.With(fields)
	return &clone
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= a.minLevel && hasAlertFlag(fields) {
		go a.sendTelegramAlert(entry, fields)
	}
	return a.core.Write(entry, fields)
}

func (a *AlertCore) Sync() error {
	return a.core.Sync()
}

func hasAlertFlag(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT && f.Type == zapcore.BoolType && f.Integer == 1 {
			return true
		}
	}
	return false
}

func formatAlert(entry zapcore.Entry, fields []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT {
			continue
		}
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("• %s: %v\n", k, enc.Fields[k]))
	}

	return fmt.Sprintf(
		"🚨 %s alert\n\nMessage: %s\n\nFields:\n%s\nTime: %s",
		entry.Level.CapitalString(),
		entry.Message,
		sb.String(),
		entry.Time.Format("2006-01-02 15:04:05"),
	)
}

func (a *AlertCore) sendTelegramAlert(entry zapcore.Entry, fields []zapcore.Field) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload := map[string]interface{}{
		"chat_id": a.chatID,
		"text":    formatAlert(entry, fields),
	}
	// best effort, the entry itself is already written by the wrapped core
	_, _ = a.client.Post(ctx, fmt.Sprintf("/bot%s/sendMessage", a.token), payload, nil, nil)
}
