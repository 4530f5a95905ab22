package middleware

import (
	"context"
	"fmt"
	"time"

	"cryptiq/pkg/common"
	"cryptiq/pkg/logger"
	"cryptiq/pkg/metrics"
	"cryptiq/pkg/utils"

	"gopkg.in/telebot.v3"
)

// Handler is a telebot handler that receives a request scoped context.
type Handler func(ctx context.Context, c telebot.Context) error

// Wrapper adapts context aware handlers to telebot. Every call gets its own
// timeout, panics are recovered and failures are logged and answered with the
// generic error reply.
type Wrapper struct {
	rootCtx context.Context
	log     *logger.Logger
	timeout time.Duration
}

func NewWrapper(rootCtx context.Context, log *logger.Logger, timeout time.Duration) *Wrapper {
	return &Wrapper{rootCtx: rootCtx, log: log, timeout: timeout}
}

// WithContext wraps handler under the given name, which is used for logs and
// metrics.
func (w *Wrapper) WithContext(name string, handler Handler) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		ctx, cancel := context.WithTimeout(w.rootCtx, w.timeout)
		defer cancel()

		var userID int64
		if c.Sender() != nil {
			userID = c.Sender().ID
		}
		ctx = logger.NewContext(ctx, w.log.With(
			logger.StringField("handler", name),
			logger.Int64Field("user_id", userID),
		))

		err := utils.SafeCall(func() error { return handler(ctx, c) })
		metrics.RecordTelegramUpdate(name, err)
		if err == nil {
			return nil
		}

		w.log.ErrorContext(ctx, "Telegram handler failed", logger.ErrorField(err))
		if sendErr := c.Send(common.GENERIC_ERROR); sendErr != nil {
			return fmt.Errorf("failed to send error reply: %w", sendErr)
		}
		return nil
	}
}
