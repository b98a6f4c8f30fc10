package rabbitmq

import (
	"context"
	"log/slog"
)

// logError helper function to log an error.
func logError(ctx context.Context, log *slog.Logger, err error) {
	if err == nil {
		return
	}

	log.ErrorContext(ctx, "amqp operation failed", "error", err)
}
