package interfaces

import (
	"context"

	"novel-relay/internal/models"

	"github.com/google/uuid"
)

// StoryRepository хранит агрегат истории: строку истории, главы, кандидатов и голоса.
//
//go:generate mockery --name StoryRepository --output ./mocks --outpkg mocks --case=underscore
type StoryRepository interface {
	// Create сохраняет новую историю вместе с главами.
	Create(ctx context.Context, story *models.Story) error

	// GetByID загружает агрегат без блокировки.
	// Возвращает models.ErrStoryNotFound, если истории нет.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error)

	// GetForUpdate загружает агрегат, блокируя строку истории (SELECT ... FOR UPDATE).
	// Имеет смысл только внутри транзакции.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Story, error)

	// Save записывает изменённый агрегат, если версия в БД совпадает со story.Version.
	// При несовпадении возвращает models.ErrConflict. После успеха story.Version увеличена.
	Save(ctx context.Context, story *models.Story) error
}
