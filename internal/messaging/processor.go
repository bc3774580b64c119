package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"novel-relay/internal/interfaces"
	"novel-relay/internal/metrics"
	"novel-relay/internal/models"
	"novel-relay/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Disposition - что сделать с сообщением после обработки.
type Disposition int

const (
	Ack     Disposition = iota // обработано или дубликат
	Requeue                    // временная ошибка, вернуть в очередь
	Reject                     // сообщение не может быть обработано никогда
)

func (d Disposition) String() string {
	switch d {
	case Ack:
		return "ack"
	case Requeue:
		return "requeue"
	case Reject:
		return "reject"
	}
	return "unknown"
}

// Результаты обработки запроса на закрытие для метрик.
const (
	closeResultMerged        = "merged"
	closeResultAlreadyMerged = "already_merged"
	closeResultDuplicate     = "duplicate"
	closeResultSkipped       = "fragment_duplicate" // текст победителя уже в первой главе
	closeResultRejected      = "rejected"
	closeResultRetry         = "retry"
)

// RoundCloser - часть RoundService, нужная консьюмеру.
type RoundCloser interface {
	MergeWinner(ctx context.Context, storyID, extensionID uuid.UUID) (*service.MergeResult, error)
	MergeLeader(ctx context.Context, storyID uuid.UUID) (*service.MergeResult, error)
}

// CloseRequestProcessor закрывает раунды по запросам планировщика.
// Доставка at-least-once: повтор отсекается по requestId в IdempotencyStore,
// а повторное слияние раунда само по себе идемпотентно.
type CloseRequestProcessor struct {
	closer  RoundCloser
	idem    interfaces.IdempotencyStore
	ttl     time.Duration
	metrics metrics.RoundMetrics
	logger  *zap.Logger
}

// NewCloseRequestProcessor создаёт процессор. idem может быть nil: тогда дедупликация
// держится только на защите от повторного слияния.
func NewCloseRequestProcessor(
	closer RoundCloser,
	idem interfaces.IdempotencyStore,
	ttl time.Duration,
	m metrics.RoundMetrics,
	logger *zap.Logger,
) *CloseRequestProcessor {
	if m == nil {
		m = metrics.Nop{}
	}
	return &CloseRequestProcessor{
		closer:  closer,
		idem:    idem,
		ttl:     ttl,
		metrics: m,
		logger:  logger.Named("CloseRequestProcessor"),
	}
}

// Process разбирает и выполняет один запрос на закрытие раунда.
func (p *CloseRequestProcessor) Process(ctx context.Context, body []byte) Disposition {
	var req models.RoundCloseRequest
	if err := json.Unmarshal(body, &req); err != nil {
		p.logger.Warn("Malformed round close request", zap.Error(err))
		p.metrics.RecordCloseRequest(closeResultRejected)
		return Reject
	}
	if req.StoryID == uuid.Nil {
		p.logger.Warn("Round close request without storyId", zap.String("requestID", req.RequestID))
		p.metrics.RecordCloseRequest(closeResultRejected)
		return Reject
	}

	logFields := []zap.Field{
		zap.String("requestID", req.RequestID),
		zap.String("storyID", req.StoryID.String()),
	}

	dedup := p.idem != nil && req.RequestID != ""
	if dedup {
		acquired, err := p.idem.Acquire(ctx, req.RequestID, p.ttl)
		if err != nil {
			p.logger.Warn("Idempotency store unavailable, requeueing", append(logFields, zap.Error(err))...)
			p.metrics.RecordCloseRequest(closeResultRetry)
			return Requeue
		}
		if !acquired {
			p.logger.Info("Duplicate round close request skipped", logFields...)
			p.metrics.RecordCloseRequest(closeResultDuplicate)
			return Ack
		}
	}

	var (
		result *service.MergeResult
		err    error
	)
	if req.ExtensionID != nil {
		result, err = p.closer.MergeWinner(ctx, req.StoryID, *req.ExtensionID)
	} else {
		result, err = p.closer.MergeLeader(ctx, req.StoryID)
	}

	if err != nil {
		if isPermanent(err) {
			p.logger.Warn("Round close request rejected", append(logFields, zap.Error(err))...)
			p.metrics.RecordCloseRequest(closeResultRejected)
			return Reject
		}
		if dedup {
			if relErr := p.idem.Release(ctx, req.RequestID); relErr != nil {
				p.logger.Error("Failed to release idempotency key", append(logFields, zap.Error(relErr))...)
			}
		}
		p.logger.Error("Round close failed, requeueing", append(logFields, zap.Error(err))...)
		p.metrics.RecordCloseRequest(closeResultRetry)
		return Requeue
	}

	switch {
	case result.AlreadyMerged:
		p.metrics.RecordCloseRequest(closeResultAlreadyMerged)
	case result.Duplicate:
		p.metrics.RecordCloseRequest(closeResultSkipped)
	default:
		p.metrics.RecordCloseRequest(closeResultMerged)
	}
	p.logger.Info("Round close request processed", append(logFields,
		zap.Bool("alreadyMerged", result.AlreadyMerged), zap.Bool("duplicateFragment", result.Duplicate))...)
	return Ack
}

// isPermanent - ошибки, которые не исчезнут при повторной доставке.
func isPermanent(err error) bool {
	return errors.Is(err, models.ErrNotFound) ||
		errors.Is(err, models.ErrInvalidTransition) ||
		errors.Is(err, models.ErrInvalidInput)
}
