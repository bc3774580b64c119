package database

import (
	"context"
	"fmt"

	"novel-relay/internal/interfaces"
	"novel-relay/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const historyViewColumns = `
	h.id AS entry_id, h.story_id, h.extension_id, s.title AS story_title, s.state AS story_state,
	h.chapter_name, h.content, cardinality(h.voters) AS vote_count, h.created_at`

// pgExtensionHistoryRepository реализует ExtensionHistoryRepository для PostgreSQL.
type pgExtensionHistoryRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.ExtensionHistoryRepository = (*pgExtensionHistoryRepository)(nil)

// NewPgExtensionHistoryRepository создает новый экземпляр репозитория истории продолжений.
func NewPgExtensionHistoryRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.ExtensionHistoryRepository {
	return &pgExtensionHistoryRepository{
		db:     db,
		logger: logger.Named("PgExtensionHistoryRepo"),
	}
}

// Create добавляет запись истории автора.
func (r *pgExtensionHistoryRepository) Create(ctx context.Context, entry *models.ExtensionHistoryEntry) error {
	query := `
		INSERT INTO extension_history (id, user_id, story_id, extension_id, chapter_name, content, voters, is_deleted, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	logFields := []zap.Field{
		zap.String("entryID", entry.ID.String()),
		zap.String("userID", entry.UserID.String()),
		zap.String("storyID", entry.StoryID.String()),
	}
	r.logger.Debug("Creating extension history entry", logFields...)

	voters := entry.Voters
	if voters == nil {
		voters = []uuid.UUID{}
	}
	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.UserID, entry.StoryID, entry.ExtensionID, entry.ChapterName,
		entry.Content, voters, entry.IsDeleted, entry.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create extension history entry", append(logFields, zap.Error(err))...)
		return mapWriteError("failed to create extension history entry", err)
	}
	return nil
}

// SyncVoters копирует множество голосов в запись истории.
func (r *pgExtensionHistoryRepository) SyncVoters(ctx context.Context, storyID, extensionID uuid.UUID, voters []uuid.UUID) (bool, error) {
	query := `UPDATE extension_history SET voters = $3 WHERE story_id = $1 AND extension_id = $2`
	logFields := []zap.Field{
		zap.String("storyID", storyID.String()),
		zap.String("extensionID", extensionID.String()),
		zap.Int("voters", len(voters)),
	}
	if voters == nil {
		voters = []uuid.UUID{}
	}

	tag, err := r.db.Exec(ctx, query, storyID, extensionID, voters)
	if err != nil {
		r.logger.Error("Failed to sync history voters", append(logFields, zap.Error(err))...)
		return false, fmt.Errorf("failed to sync history voters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Debug("No history entry to sync", logFields...)
		return false, nil
	}
	return true, nil
}

// ListActiveByUser возвращает неудалённые записи пользователя, новые первыми.
func (r *pgExtensionHistoryRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error) {
	query := `SELECT ` + historyViewColumns + `
		FROM extension_history h
		JOIN stories s ON s.id = h.story_id
		WHERE h.user_id = $1 AND h.is_deleted = FALSE
		ORDER BY h.created_at DESC, h.id`

	views := make([]models.HistoryView, 0)
	if err := pgxscan.Select(ctx, r.db, &views, query, userID); err != nil {
		r.logger.Error("Failed to list history", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list extension history: %w", err)
	}
	return views, nil
}

// ListLatestByUser возвращает последнюю неудалённую запись по каждой истории.
func (r *pgExtensionHistoryRepository) ListLatestByUser(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error) {
	query := `SELECT * FROM (
			SELECT DISTINCT ON (h.story_id) ` + historyViewColumns + `
			FROM extension_history h
			JOIN stories s ON s.id = h.story_id
			WHERE h.user_id = $1 AND h.is_deleted = FALSE
			ORDER BY h.story_id, h.created_at DESC
		) latest
		ORDER BY latest.created_at DESC`

	views := make([]models.HistoryView, 0)
	if err := pgxscan.Select(ctx, r.db, &views, query, userID); err != nil {
		r.logger.Error("Failed to list latest history", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list latest extensions: %w", err)
	}
	return views, nil
}

// SoftDelete помечает запись удалённой. Повторное удаление не ошибка.
func (r *pgExtensionHistoryRepository) SoftDelete(ctx context.Context, userID, entryID uuid.UUID) error {
	query := `UPDATE extension_history SET is_deleted = TRUE WHERE id = $1 AND user_id = $2`
	logFields := []zap.Field{
		zap.String("userID", userID.String()),
		zap.String("entryID", entryID.String()),
	}

	tag, err := r.db.Exec(ctx, query, entryID, userID)
	if err != nil {
		r.logger.Error("Failed to soft delete history entry", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to soft delete history entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("History entry not found for user", logFields...)
		return models.ErrHistoryEntryNotFound
	}
	r.logger.Info("History entry soft deleted", logFields...)
	return nil
}
