package utils

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"runtime/debug"
	"strings"

	"cryptiq/pkg/logger"
)

// GoSafe runs the given function in a new goroutine and recovers from any panic.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[Panic Recovered] %v\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}

// SafeCall runs fn and converts a panic into an error.
func SafeCall(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic recovered: %v", r)
		}
	}()
	return fn()
}

func ToPointer[T any](value T) *T {
	return &value
}

func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		pc, _, _, ok := runtime.Caller(1)
		funcName := "unknown"
		if ok {
			fn := runtime.FuncForPC(pc)
			if fn != nil {
				parts := strings.Split(fn.Name(), "/")
				funcName = parts[len(parts)-1]
			}
		}

		log.Warn("Context cancelled",
			logger.StringField("caller", funcName),
		)
		return false
	default:
		return true
	}
}

// CleanMarkdown strips the markdown the model tends to emit so replies render
// as plain Telegram text.
func CleanMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"###", "",
		"**", "",
		"-", "•",
	)
	return strings.TrimSpace(replacer.Replace(text))
}

func FormatPercentage(value float64) string {
	return fmt.Sprintf("%+.2f%%", value)
}
