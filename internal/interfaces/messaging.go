package interfaces

import (
	"context"
	"time"

	"novel-relay/internal/models"
)

// RoundEventPublisher публикует события жизненного цикла раунда.
type RoundEventPublisher interface {
	PublishRoundEvent(ctx context.Context, event models.RoundEvent) error
}

// IdempotencyStore отмечает обработанные запросы, чтобы повторная доставка
// сообщения не выполняла операцию дважды.
type IdempotencyStore interface {
	// Acquire атомарно занимает ключ на ttl. false - ключ уже занят.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release освобождает ключ, чтобы сообщение можно было обработать повторно.
	Release(ctx context.Context, key string) error
}
