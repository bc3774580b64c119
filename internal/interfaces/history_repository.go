package interfaces

import (
	"context"

	"novel-relay/internal/models"

	"github.com/google/uuid"
)

// ExtensionHistoryRepository хранит записи истории авторов о поданных продолжениях.
type ExtensionHistoryRepository interface {
	Create(ctx context.Context, entry *models.ExtensionHistoryEntry) error

	// SyncVoters копирует множество голосов живого кандидата в запись истории,
	// найденную по (storyID, extensionID). Возвращает false, если записи нет.
	SyncVoters(ctx context.Context, storyID, extensionID uuid.UUID, voters []uuid.UUID) (bool, error)

	// ListActiveByUser - неудалённые записи пользователя с названием и статусом истории.
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error)

	// ListLatestByUser - по одной последней неудалённой записи на историю.
	ListLatestByUser(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error)

	// SoftDelete помечает запись удалённой.
	// Возвращает models.ErrHistoryEntryNotFound, если запись не принадлежит пользователю.
	SoftDelete(ctx context.Context, userID, entryID uuid.UUID) error
}
