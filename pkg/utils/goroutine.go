package utils

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang-stock-tracker/pkg/logger"
)

var panicLogger = logger.NewNop()

// SetPanicLogger sets the logger used by GoSafe to report recovered panics.
func SetPanicLogger(l *logger.Logger) {
	if l != nil {
		panicLogger = l
	}
}

// GoSafe runs fn in a new goroutine and recovers from panics.
func GoSafe(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				panicLogger.Error("Recovered from panic in goroutine",
					logger.StringField("panic", fmt.Sprint(r)),
					logger.StringField("stack", string(debug.Stack())))
			}
		}()
		fn()
	}()
}

// ShouldContinue reports whether ctx is still live, logging when it is not.
func ShouldContinue(ctx context.Context, log *logger.Logger) bool {
	select {
	case <-ctx.Done():
		log.DebugContext(ctx, "Context done, stop processing", logger.ErrorField(ctx.Err()))
		return false
	default:
		return true
	}
}
