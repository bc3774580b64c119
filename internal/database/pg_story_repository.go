package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"novel-relay/internal/interfaces"
	"novel-relay/internal/models"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	storyColumns = `id, main_author_id, title, total_word_count, current_chapter_word_count,
		words_per_chapter, extend_word_limit, vote_time_seconds, vote_start, vote_end,
		has_merged, state, open_chapter_id, version, created_at, updated_at`

	selectChaptersQuery = `
		SELECT id, story_id, chapter_number, chapter_name, fragments, main, word_count, created_at
		FROM chapters
		WHERE story_id = $1
		ORDER BY chapter_number`

	// Голоса собираются в массив в порядке добавления.
	selectExtensionsQuery = `
		SELECT e.id, e.story_id, e.author_id, e.chapter_name, e.content, e.created_at,
		       COALESCE(array_agg(v.voter_id ORDER BY v.ordinal) FILTER (WHERE v.voter_id IS NOT NULL), '{}') AS voters
		FROM extensions e
		LEFT JOIN extension_votes v ON v.extension_id = e.id
		WHERE e.story_id = $1
		GROUP BY e.id
		ORDER BY e.created_at, e.id`

	insertStoryQuery = `
		INSERT INTO stories (` + storyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	updateStoryQuery = `
		UPDATE stories SET
			title = $3, total_word_count = $4, current_chapter_word_count = $5,
			words_per_chapter = $6, extend_word_limit = $7, vote_time_seconds = $8,
			vote_start = $9, vote_end = $10, has_merged = $11, state = $12,
			open_chapter_id = $13, version = version + 1, updated_at = $14
		WHERE id = $1 AND version = $2`

	upsertChapterQuery = `
		INSERT INTO chapters (id, story_id, chapter_number, chapter_name, fragments, main, word_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			chapter_name = EXCLUDED.chapter_name,
			fragments = EXCLUDED.fragments,
			main = EXCLUDED.main,
			word_count = EXCLUDED.word_count`

	insertExtensionQuery = `
		INSERT INTO extensions (id, story_id, author_id, chapter_name, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	// Удаление кандидата каскадно удаляет его голоса.
	deleteStaleExtensionsQuery = `DELETE FROM extensions WHERE story_id = $1 AND NOT (id = ANY($2))`
	deleteVotesQuery           = `DELETE FROM extension_votes WHERE story_id = $1`
	insertVoteQuery            = `
		INSERT INTO extension_votes (extension_id, story_id, voter_id, ordinal)
		VALUES ($1, $2, $3, $4)`
)

// pgStoryRepository реализует StoryRepository для PostgreSQL.
// Агрегат хранится нормализованно: stories, chapters, extensions, extension_votes.
type pgStoryRepository struct {
	db     interfaces.DBTX
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.StoryRepository = (*pgStoryRepository)(nil)

// NewPgStoryRepository создает новый экземпляр репозитория историй.
func NewPgStoryRepository(db interfaces.DBTX, logger *zap.Logger) interfaces.StoryRepository {
	return &pgStoryRepository{
		db:     db,
		logger: logger.Named("PgStoryRepo"),
	}
}

// Create сохраняет новую историю с главами. Кандидатов у новой истории нет.
func (r *pgStoryRepository) Create(ctx context.Context, story *models.Story) error {
	logFields := []zap.Field{zap.String("storyID", story.ID.String())}
	r.logger.Debug("Creating story", logFields...)

	if story.Version == 0 {
		story.Version = 1
	}
	_, err := r.db.Exec(ctx, insertStoryQuery,
		story.ID, story.MainAuthorID, story.Title, story.TotalWordCount, story.CurrentChapterWordCount,
		story.WordsPerChapter, story.ExtendWordLimit, int64(story.VoteTime/time.Second), story.VoteStart, story.VoteEnd,
		story.HasMerged, story.State, story.OpenChapterID, story.Version, story.CreatedAt, story.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to insert story", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to create story: %w", err)
	}

	if err := r.saveChapters(ctx, story); err != nil {
		r.logger.Error("Failed to insert chapters", append(logFields, zap.Error(err))...)
		return err
	}

	r.logger.Info("Story created", append(logFields, zap.Int("chapters", len(story.Chapters)))...)
	return nil
}

// GetByID загружает агрегат без блокировки.
func (r *pgStoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	return r.load(ctx, id, false)
}

// GetForUpdate загружает агрегат, блокируя строку истории до конца транзакции.
func (r *pgStoryRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	return r.load(ctx, id, true)
}

func (r *pgStoryRepository) load(ctx context.Context, id uuid.UUID, forUpdate bool) (*models.Story, error) {
	logFields := []zap.Field{zap.String("storyID", id.String()), zap.Bool("forUpdate", forUpdate)}
	r.logger.Debug("Loading story", logFields...)

	query := `SELECT ` + storyColumns + ` FROM stories WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	story := &models.Story{}
	var voteTimeSeconds int64
	err := r.db.QueryRow(ctx, query, id).Scan(
		&story.ID, &story.MainAuthorID, &story.Title, &story.TotalWordCount, &story.CurrentChapterWordCount,
		&story.WordsPerChapter, &story.ExtendWordLimit, &voteTimeSeconds, &story.VoteStart, &story.VoteEnd,
		&story.HasMerged, &story.State, &story.OpenChapterID, &story.Version, &story.CreatedAt, &story.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Warn("Story not found", logFields...)
			return nil, models.ErrStoryNotFound
		}
		r.logger.Error("Failed to load story row", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to load story %s: %w", id, err)
	}
	story.VoteTime = time.Duration(voteTimeSeconds) * time.Second

	story.Chapters = []*models.Chapter{}
	if err := pgxscan.Select(ctx, r.db, &story.Chapters, selectChaptersQuery, id); err != nil {
		r.logger.Error("Failed to load chapters", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to load chapters of story %s: %w", id, err)
	}

	story.Extensions = []*models.Extension{}
	if err := pgxscan.Select(ctx, r.db, &story.Extensions, selectExtensionsQuery, id); err != nil {
		r.logger.Error("Failed to load extensions", append(logFields, zap.Error(err))...)
		return nil, fmt.Errorf("failed to load extensions of story %s: %w", id, err)
	}

	return story, nil
}

// Save записывает агрегат с проверкой версии (compare-and-swap).
func (r *pgStoryRepository) Save(ctx context.Context, story *models.Story) error {
	logFields := []zap.Field{
		zap.String("storyID", story.ID.String()),
		zap.Int64("expectedVersion", story.Version),
	}
	r.logger.Debug("Saving story", logFields...)

	now := time.Now().UTC()
	tag, err := r.db.Exec(ctx, updateStoryQuery,
		story.ID, story.Version, story.Title, story.TotalWordCount, story.CurrentChapterWordCount,
		story.WordsPerChapter, story.ExtendWordLimit, int64(story.VoteTime/time.Second),
		story.VoteStart, story.VoteEnd, story.HasMerged, story.State, story.OpenChapterID, now,
	)
	if err != nil {
		r.logger.Error("Failed to update story row", append(logFields, zap.Error(err))...)
		return fmt.Errorf("failed to update story: %w", err)
	}
	if tag.RowsAffected() == 0 {
		r.logger.Warn("Story version mismatch", logFields...)
		return fmt.Errorf("story %s: %w", story.ID, models.ErrConflict)
	}
	story.Version++
	story.UpdatedAt = now

	if err := r.saveChapters(ctx, story); err != nil {
		r.logger.Error("Failed to save chapters", append(logFields, zap.Error(err))...)
		return err
	}
	if err := r.saveRound(ctx, story); err != nil {
		r.logger.Error("Failed to save round", append(logFields, zap.Error(err))...)
		return err
	}

	r.logger.Debug("Story saved", append(logFields, zap.Int64("newVersion", story.Version))...)
	return nil
}

func (r *pgStoryRepository) saveChapters(ctx context.Context, story *models.Story) error {
	for _, ch := range story.Chapters {
		fragments := ch.Fragments
		if fragments == nil {
			fragments = []string{}
		}
		_, err := r.db.Exec(ctx, upsertChapterQuery,
			ch.ID, story.ID, ch.ChapterNumber, ch.ChapterName, fragments, ch.Main, ch.WordCount, ch.CreatedAt,
		)
		if err != nil {
			return mapWriteError(fmt.Sprintf("failed to save chapter %d", ch.ChapterNumber), err)
		}
	}
	return nil
}

// saveRound синхронизирует кандидатов и голоса текущего раунда с агрегатом.
func (r *pgStoryRepository) saveRound(ctx context.Context, story *models.Story) error {
	ids := make([]uuid.UUID, 0, len(story.Extensions))
	for _, ext := range story.Extensions {
		ids = append(ids, ext.ID)
	}
	if _, err := r.db.Exec(ctx, deleteStaleExtensionsQuery, story.ID, ids); err != nil {
		return fmt.Errorf("failed to delete stale extensions: %w", err)
	}

	for _, ext := range story.Extensions {
		_, err := r.db.Exec(ctx, insertExtensionQuery,
			ext.ID, story.ID, ext.AuthorID, ext.ChapterName, ext.Content, ext.CreatedAt,
		)
		if err != nil {
			return mapWriteError("failed to insert extension", err)
		}
	}

	if _, err := r.db.Exec(ctx, deleteVotesQuery, story.ID); err != nil {
		return fmt.Errorf("failed to reset votes: %w", err)
	}
	for _, ext := range story.Extensions {
		for i, voter := range ext.Voters {
			if _, err := r.db.Exec(ctx, insertVoteQuery, ext.ID, story.ID, voter, i); err != nil {
				return mapWriteError("failed to insert vote", err)
			}
		}
	}
	return nil
}

// mapWriteError переводит нарушения ограничений в ошибки домена.
func mapWriteError(msg string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation (в т.ч. второй голос в истории)
			return fmt.Errorf("%s: %w", msg, models.ErrConflict)
		case "23503": // foreign_key_violation: нет истории, главы или кандидата
			return fmt.Errorf("%s: referenced row missing (%s): %w", msg, pgErr.ConstraintName, models.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
