package mocks

import (
	"context"
	"time"

	"novel-relay/internal/interfaces"
	"novel-relay/internal/models"

	"github.com/stretchr/testify/mock"
)

// RoundEventPublisher mock
type RoundEventPublisher struct {
	mock.Mock
}

var _ interfaces.RoundEventPublisher = (*RoundEventPublisher)(nil)

func (m *RoundEventPublisher) PublishRoundEvent(ctx context.Context, event models.RoundEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// IdempotencyStore mock
type IdempotencyStore struct {
	mock.Mock
}

var _ interfaces.IdempotencyStore = (*IdempotencyStore)(nil)

func (m *IdempotencyStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *IdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
