package interfaces

import (
	"context"

	"novel-relay/internal/models"

	"github.com/google/uuid"
)

// VoteRecordRepository - журнал голосов пользователей.
type VoteRecordRepository interface {
	// Create добавляет запись. Повтор для той же тройки (user, story, extension) игнорируется.
	Create(ctx context.Context, record *models.VoteRecord) error

	// DeleteByVote удаляет запись о голосе за кандидата. Отсутствие записи не ошибка.
	DeleteByVote(ctx context.Context, userID, storyID, extensionID uuid.UUID) error

	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.VoteRecord, error)
	Exists(ctx context.Context, userID, storyID, extensionID uuid.UUID) (bool, error)

	// Delete удаляет запись по ID. Возвращает models.ErrVoteRecordNotFound,
	// если запись не принадлежит пользователю.
	Delete(ctx context.Context, userID, recordID uuid.UUID) error
}
