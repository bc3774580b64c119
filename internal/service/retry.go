package service

import (
	"context"
	"errors"
	"time"

	"novel-relay/internal/metrics"
	"novel-relay/internal/models"

	"go.uber.org/zap"
)

const (
	maxConflictAttempts = 3
	conflictBackoff     = 20 * time.Millisecond
)

// withConflictRetry повторяет fn, пока она возвращает models.ErrConflict,
// но не более maxConflictAttempts раз. fn должна целиком перечитывать агрегат.
func withConflictRetry(ctx context.Context, op string, m metrics.RoundMetrics, logger *zap.Logger, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxConflictAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, models.ErrConflict) {
			return err
		}
		if attempt == maxConflictAttempts {
			break
		}
		m.RecordConflictRetry(op)
		logger.Warn("Concurrent modification detected, retrying",
			zap.String("operation", op), zap.Int("attempt", attempt))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * conflictBackoff):
		}
	}
	logger.Error("Giving up after repeated conflicts", zap.String("operation", op), zap.Error(err))
	return err
}
