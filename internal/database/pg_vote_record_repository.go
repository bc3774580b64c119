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

// pgVoteRecordRepository реализует VoteRecordRepository для PostgreSQL.
type pgVoteRecordRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.VoteRecordRepository = (*pgVoteRecordRepository)(nil)

// NewPgVoteRecordRepository создает новый экземпляр журнала голосов.
func NewPgVoteRecordRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.VoteRecordRepository {
	return &pgVoteRecordRepository{
		db:     db,
		logger: logger.Named("PgVoteRecordRepo"),
	}
}

func (r *pgVoteRecordRepository) Create(ctx context.Context, record *models.VoteRecord) error {
	query := `
		INSERT INTO vote_records (id, user_id, story_id, extension_id, extension_author_id, content, voted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, story_id, extension_id) DO NOTHING`
	logFields := []zap.Field{
		zap.String("userID", record.UserID.String()),
		zap.String("storyID", record.StoryID.String()),
		zap.String("extensionID", record.ExtensionID.String()),
	}

	_, err := r.db.Exec(ctx, query,
		record.ID, record.UserID, record.StoryID, record.ExtensionID,
		record.ExtensionAuthorID, record.Content, record.VotedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create vote record", append(logFields, zap.Error(err))...)
		return mapWriteError("failed to create vote record", err)
	}
	r.logger.Debug("Vote record created", logFields...)
	return nil
}

func (r *pgVoteRecordRepository) DeleteByVote(ctx context.Context, userID, storyID, extensionID uuid.UUID) error {
	query := `DELETE FROM vote_records WHERE user_id = $1 AND story_id = $2 AND extension_id = $3`
	if _, err := r.db.Exec(ctx, query, userID, storyID, extensionID); err != nil {
		r.logger.Error("Failed to delete vote record by vote",
			zap.String("userID", userID.String()),
			zap.String("extensionID", extensionID.String()),
			zap.Error(err))
		return fmt.Errorf("failed to delete vote record: %w", err)
	}
	return nil
}

func (r *pgVoteRecordRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.VoteRecord, error) {
	query := `
		SELECT id, user_id, story_id, extension_id, extension_author_id, content, voted_at
		FROM vote_records
		WHERE user_id = $1
		ORDER BY voted_at DESC, id`

	records := make([]models.VoteRecord, 0)
	if err := pgxscan.Select(ctx, r.db, &records, query, userID); err != nil {
		r.logger.Error("Failed to list vote records", zap.String("userID", userID.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to list vote records: %w", err)
	}
	return records, nil
}

func (r *pgVoteRecordRepository) Exists(ctx context.Context, userID, storyID, extensionID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM vote_records WHERE user_id = $1 AND story_id = $2 AND extension_id = $3)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, storyID, extensionID).Scan(&exists); err != nil {
		r.logger.Error("Failed to check vote record", zap.String("userID", userID.String()), zap.Error(err))
		return false, fmt.Errorf("failed to check vote record: %w", err)
	}
	return exists, nil
}

func (r *pgVoteRecordRepository) Delete(ctx context.Context, userID, recordID uuid.UUID) error {
	query := `DELETE FROM vote_records WHERE id = $1 AND user_id = $2`
	logFields := []zap.Field{
		zap.String("userID", userID.String()),
		zap.String("recordID", recordID.String()),
	}

	tag, err := r.db.Exec(ctx, query, recordID, userID)
	if err != nil {
		r.logger.Error("Failed to delete vote record", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to delete vote record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Vote record not found for user", logFields...)
		return models.ErrVoteRecordNotFound
	}
	return nil
}
