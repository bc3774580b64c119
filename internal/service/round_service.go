package service

import (
	"context"
	"fmt"
	"time"

	"novel-relay/internal/domain"
	"novel-relay/internal/interfaces"
	"novel-relay/internal/metrics"
	"novel-relay/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VoteResult - ответ на голосование.
type VoteResult struct {
	HasVotedElsewhere bool `json:"hasVotedElsewhere"`
	Applied           bool `json:"applied"`
	VoteCount         int  `json:"voteCount"`
}

// MergeResult - итог закрытия раунда.
type MergeResult struct {
	Story         *models.Story   `json:"story"`
	WinnerID      *uuid.UUID      `json:"winnerId,omitempty"`
	IsCompleted   bool            `json:"isCompleted"`
	AlreadyMerged bool            `json:"alreadyMerged"`
	Duplicate     bool            `json:"duplicate"`
	NewChapter    *models.Chapter `json:"newChapter,omitempty"`
}

// RoundService управляет раундами продолжений: подача, голосование, слияние, главы.
type RoundService interface {
	CreateStory(ctx context.Context, params domain.NewStoryParams) (*models.Story, error)
	GetStory(ctx context.Context, storyID uuid.UUID) (*models.Story, error)

	SubmitExtension(ctx context.Context, storyID, authorID uuid.UUID, chapterName, content string) (uuid.UUID, error)
	WithdrawExtension(ctx context.Context, storyID, extensionID, userID uuid.UUID) error
	CastVote(ctx context.Context, storyID, extensionID, voterID uuid.UUID, delta int) (*VoteResult, error)

	MergeWinner(ctx context.Context, storyID, extensionID uuid.UUID) (*MergeResult, error)
	// MergeLeader сливает текущего лидера раунда (см. domain.Standings).
	MergeLeader(ctx context.Context, storyID uuid.UUID) (*MergeResult, error)
	ClearRound(ctx context.Context, storyID uuid.UUID) (int, error)
	OpenChapter(ctx context.Context, storyID uuid.UUID, content, chapterName string) (*models.Chapter, error)

	RescheduleWindow(ctx context.Context, storyID uuid.UUID, start, end time.Time) error
	WindowStatus(ctx context.Context, storyID uuid.UUID) (domain.WindowStatus, error)
	Standings(ctx context.Context, storyID uuid.UUID) ([]domain.Standing, error)

	// EnsureCanManage возвращает models.ErrForbidden, если пользователь
	// не главный автор истории и не модератор.
	EnsureCanManage(ctx context.Context, storyID, userID uuid.UUID, roles []string) error
}

type roundServiceImpl struct {
	txManager interfaces.TxManager
	repos     interfaces.Repositories
	publisher interfaces.RoundEventPublisher
	metrics   metrics.RoundMetrics
	logger    *zap.Logger
	now       func() time.Time
}

var _ RoundService = (*roundServiceImpl)(nil)

// NewRoundService создаёт RoundService.
// repos используются для чтения вне транзакции, изменения идут через txManager.
// publisher может быть nil: тогда события не публикуются.
func NewRoundService(
	txManager interfaces.TxManager,
	repos interfaces.Repositories,
	publisher interfaces.RoundEventPublisher,
	m metrics.RoundMetrics,
	logger *zap.Logger,
) RoundService {
	if m == nil {
		m = metrics.Nop{}
	}
	return &roundServiceImpl{
		txManager: txManager,
		repos:     repos,
		publisher: publisher,
		metrics:   m,
		logger:    logger.Named("RoundService"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *roundServiceImpl) CreateStory(ctx context.Context, params domain.NewStoryParams) (*models.Story, error) {
	story, err := domain.NewStory(params, s.now())
	if err != nil {
		return nil, err
	}
	err = s.txManager.WithTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
		return repos.Stories.Create(ctx, story)
	})
	if err != nil {
		s.logger.Error("Failed to create story", zap.String("mainAuthorID", params.MainAuthorID.String()), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Story created", zap.String("storyID", story.ID.String()))
	return story, nil
}

func (s *roundServiceImpl) GetStory(ctx context.Context, storyID uuid.UUID) (*models.Story, error) {
	return s.repos.Stories.GetByID(ctx, storyID)
}

// SubmitExtension добавляет кандидата и запись в историю автора одной транзакцией.
// Первая подача в раунде открывает окно голосования.
func (s *roundServiceImpl) SubmitExtension(ctx context.Context, storyID, authorID uuid.UUID, chapterName, content string) (uuid.UUID, error) {
	logFields := []zap.Field{
		zap.String("storyID", storyID.String()),
		zap.String("authorID", authorID.String()),
	}

	var result domain.SubmitResult
	err := withConflictRetry(ctx, "submit", s.metrics, s.logger, func() error {
		return s.txManager.WithTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
			story, err := repos.Stories.GetForUpdate(ctx, storyID)
			if err != nil {
				return err
			}
			result, err = domain.Submit(story, authorID, chapterName, content, s.now())
			if err != nil {
				return err
			}
			if err := repos.Stories.Save(ctx, story); err != nil {
				return err
			}
			ext := result.Extension
			return repos.History.Create(ctx, &models.ExtensionHistoryEntry{
				ID:          ext.ID,
				UserID:      authorID,
				StoryID:     storyID,
				ExtensionID: ext.ID,
				ChapterName: ext.ChapterName,
				Content:     ext.Content,
				Voters:      []uuid.UUID{},
				CreatedAt:   ext.CreatedAt,
			})
		})
	})
	if err != nil {
		s.logger.Warn("Failed to submit extension", append(logFields, zap.Error(err))...)
		return uuid.Nil, err
	}

	extID := result.Extension.ID
	s.metrics.RecordExtensionSubmitted()
	s.publish(ctx, models.RoundEvent{
		Type:        models.RoundEventExtensionSubmitted,
		StoryID:     storyID,
		ExtensionID: &extID,
		OccurredAt:  s.now(),
	})
	s.logger.Info("Extension submitted",
		append(logFields, zap.String("extensionID", extID.String()), zap.Bool("windowOpened", result.WindowOpened))...)
	return extID, nil
}

func (s *roundServiceImpl) WithdrawExtension(ctx context.Context, storyID, extensionID, userID uuid.UUID) error {
	return withConflictRetry(ctx, "withdraw", s.metrics, s.logger, func() error {
		return s.txManager.WithTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
			story, err := repos.Stories.GetForUpdate(ctx, storyID)
			if err != nil {
				return err
			}
			ext, err := domain.Withdraw(story, extensionID, userID)
			if err != nil {
				return err
			}
			if err := repos.Stories.Save(ctx, story); err != nil {
				return err
			}
			// Голоса снятой заявки удаляются каскадом; журнал и история должны это отразить
			for _, voterID := range ext.Voters {
				if err := repos.VoteRecords.DeleteByVote(ctx, voterID, storyID, extensionID); err != nil {
					return err
				}
			}
			if len(ext.Voters) == 0 {
				return nil
			}
			if _, err := repos.History.SyncVoters(ctx, storyID, extensionID, []uuid.UUID{}); err != nil {
				return fmt.Errorf("sync history voters: %w", err)
			}
			return nil
		})
	})
}

// CastVote применяет голос и зеркалирует его в историю автора и журнал голосов.
// Отказ из-за голоса за другого кандидата возвращается как результат, не ошибка.
func (s *roundServiceImpl) CastVote(ctx context.Context, storyID, extensionID, voterID uuid.UUID, delta int) (*VoteResult, error) {
	logFields := []zap.Field{
		zap.String("storyID", storyID.String()),
		zap.String("extensionID", extensionID.String()),
		zap.String("voterID", voterID.String()),
		zap.Int("delta", delta),
	}

	var outcome domain.VoteOutcome
	err := withConflictRetry(ctx, "vote", s.metrics, s.logger, func() error {
		return s.txManager.WithTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
			story, err := repos.Stories.GetForUpdate(ctx, storyID)
			if err != nil {
				return err
			}
			outcome, err = domain.Cast(story, extensionID, voterID, delta)
			if err != nil || !outcome.Applied {
				return err
			}
			if err := repos.Stories.Save(ctx, story); err != nil {
				return err
			}
			found, err := repos.History.SyncVoters(ctx, storyID, extensionID, outcome.Extension.Voters)
			if err != nil {
				return fmt.Errorf("sync history voters: %w", err)
			}
			if !found {
				s.logger.Warn("History entry for extension not found, vote not mirrored", logFields...)
			}
			if delta == domain.VoteDown {
				return repos.VoteRecords.DeleteByVote(ctx, voterID, storyID, extensionID)
			}
			return repos.VoteRecords.Create(ctx, &models.VoteRecord{
				ID:                uuid.New(),
				UserID:            voterID,
				StoryID:           storyID,
				ExtensionID:       extensionID,
				ExtensionAuthorID: outcome.Extension.AuthorID,
				Content:           outcome.Extension.Content,
				VotedAt:           s.now(),
			})
		})
	})
	if err != nil {
		s.logger.Warn("Failed to cast vote", append(logFields, zap.Error(err))...)
		return nil, err
	}

	switch {
	case outcome.Applied:
		s.metrics.RecordVote(metrics.VoteApplied)
	case outcome.HasVotedElsewhere:
		s.metrics.RecordVote(metrics.VoteRejectedElsewhere)
	default:
		s.metrics.RecordVote(metrics.VoteNoop)
	}
	s.logger.Debug("Vote processed", append(logFields,
		zap.Bool("applied", outcome.Applied), zap.Int("voteCount", outcome.VoteCount))...)

	return &VoteResult{
		HasVotedElsewhere: outcome.HasVotedElsewhere,
		Applied:           outcome.Applied,
		VoteCount:         outcome.VoteCount,
	}, nil
}

func (s *roundServiceImpl) MergeWinner(ctx context.Context, storyID, extensionID uuid.UUID) (*MergeResult, error) {
	return s.merge(ctx, storyID, func(*models.Story) (uuid.UUID, error) {
		return extensionID, nil
	})
}

func (s *roundServiceImpl) MergeLeader(ctx context.Context, storyID uuid.UUID) (*MergeResult, error) {
	return s.merge(ctx, storyID, func(story *models.Story) (uuid.UUID, error) {
		leader := domain.Leader(story)
		if leader == nil {
			return uuid.Nil, fmt.Errorf("%w: round has no extensions", models.ErrInvalidTransition)
		}
		return leader.ID, nil
	})
}

// merge выполняет слияние в транзакции. pick выбирает победителя по заблокированному
// агрегату и не вызывается, если раунд уже слит.
func (s *roundServiceImpl) merge(ctx context.Context, storyID uuid.UUID, pick func(*models.Story) (uuid.UUID, error)) (*MergeResult, error) {
	logFields := []zap.Field{zap.String("storyID", storyID.String())}

	var (
		outcome      domain.MergeOutcome
		merged       *models.Story
		wasCompleted bool
	)
	err := withConflictRetry(ctx, "merge", s.metrics, s.logger, func() error {
		return s.txManager.WithTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
			story, err := repos.Stories.GetForUpdate(ctx, storyID)
			if err != nil {
				return err
			}
			wasCompleted = story.State
			merged = story

			if story.HasMerged {
				outcome = domain.MergeOutcome{AlreadyMerged: true, IsCompleted: story.State}
				return nil
			}
			winnerID, err := pick(story)
			if err != nil {
				return err
			}
			outcome, err = domain.Merge(story, winnerID, s.now())
			if err != nil {
				return err
			}
			if !outcome.Mutated() {
				return nil
			}
			return repos.Stories.Save(ctx, story)
		})
	})
	if err != nil {
		s.logger.Warn("Failed to merge round", append(logFields, zap.Error(err))...)
		return nil, err
	}

	result := &MergeResult{
		Story:         merged,
		IsCompleted:   outcome.IsCompleted,
		AlreadyMerged: outcome.AlreadyMerged,
		Duplicate:     outcome.Duplicate,
		NewChapter:    outcome.NewChapter,
	}

	switch {
	case outcome.AlreadyMerged:
		s.metrics.RecordMerge(metrics.MergeAlreadyMerged)
		s.logger.Info("Round already merged", logFields...)
		return result, nil
	case outcome.Duplicate:
		s.metrics.RecordMerge(metrics.MergeDuplicate)
		s.logger.Info("Winning fragment already present, merge skipped", logFields...)
		return result, nil
	}

	winnerID := outcome.Winner.ID
	result.WinnerID = &winnerID
	s.metrics.RecordMerge(metrics.MergeApplied)

	events := []models.RoundEvent{{
		Type:        models.RoundEventMerged,
		StoryID:     storyID,
		ExtensionID: &winnerID,
		IsCompleted: outcome.IsCompleted,
		OccurredAt:  s.now(),
	}}
	if outcome.NewChapter != nil {
		s.metrics.RecordChapterOpened()
		events = append(events, models.RoundEvent{
			Type:          models.RoundEventChapterOpened,
			StoryID:       storyID,
			ChapterNumber: outcome.NewChapter.ChapterNumber,
			IsCompleted:   outcome.IsCompleted,
			OccurredAt:    s.now(),
		})
	}
	if outcome.IsCompleted && !wasCompleted {
		s.metrics.RecordStoryCompleted()
		events = append(events, models.RoundEvent{
			Type:        models.RoundEventStoryCompleted,
			StoryID:     storyID,
			IsCompleted: true,
			OccurredAt:  s.now(),
		})
	}
	s.publish(ctx, events...)

	s.logger.Info("Round merged", append(logFields,
		zap.String("winnerID", winnerID.String()),
		zap.Int("cleared", len(outcome.Cleared)),
		zap.Bool("isCompleted", outcome.IsCompleted))...)
	return result, nil
}

// ClearRound снимает всех кандидатов раунда. Повторный вызов ничего не меняет.
func (s *roundServiceImpl) ClearRound(ctx context.Context, storyID uuid.UUID) (int, error) {
	var cleared int
	err := withConflictRetry(ctx, "clear", s.metrics, s.logger, func() error {
		return s.txManager.WithTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
			story, err := repos.Stories.GetForUpdate(ctx, storyID)
			if err != nil {
				return err
			}
			cleared = domain.ClearRound(story)
			if cleared == 0 {
				return nil
			}
			return repos.Stories.Save(ctx, story)
		})
	})
	if err != nil {
		return 0, err
	}
	if cleared > 0 {
		s.publish(ctx, models.RoundEvent{
			Type:       models.RoundEventCleared,
			StoryID:    storyID,
			OccurredAt: s.now(),
		})
		s.logger.Info("Round cleared", zap.String("storyID", storyID.String()), zap.Int("cleared", cleared))
	}
	return cleared, nil
}

func (s *roundServiceImpl) OpenChapter(ctx context.Context, storyID uuid.UUID, content, chapterName string) (*models.Chapter, error) {
	var (
		chapter     *models.Chapter
		isCompleted bool
		cleared     int
	)
	err := withConflictRetry(ctx, "open_chapter", s.metrics, s.logger, func() error {
		return s.txManager.WithTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
			story, err := repos.Stories.GetForUpdate(ctx, storyID)
			if err != nil {
				return err
			}
			cleared = len(story.Extensions)
			chapter, err = domain.OpenChapter(story, content, chapterName, s.now())
			if err != nil {
				return err
			}
			isCompleted = story.State
			return repos.Stories.Save(ctx, story)
		})
	})
	if err != nil {
		s.logger.Warn("Failed to open chapter", zap.String("storyID", storyID.String()), zap.Error(err))
		return nil, err
	}

	s.metrics.RecordChapterOpened()
	events := []models.RoundEvent{{
		Type:          models.RoundEventChapterOpened,
		StoryID:       storyID,
		ChapterNumber: chapter.ChapterNumber,
		IsCompleted:   isCompleted,
		OccurredAt:    s.now(),
	}}
	if cleared > 0 {
		events = append(events, models.RoundEvent{
			Type:       models.RoundEventCleared,
			StoryID:    storyID,
			OccurredAt: s.now(),
		})
	}
	s.publish(ctx, events...)
	s.logger.Info("Chapter opened",
		zap.String("storyID", storyID.String()),
		zap.Int("chapterNumber", chapter.ChapterNumber),
		zap.Int("clearedExtensions", cleared))
	return chapter, nil
}

func (s *roundServiceImpl) RescheduleWindow(ctx context.Context, storyID uuid.UUID, start, end time.Time) error {
	return withConflictRetry(ctx, "reschedule", s.metrics, s.logger, func() error {
		return s.txManager.WithTx(ctx, func(ctx context.Context, repos interfaces.Repositories) error {
			story, err := repos.Stories.GetForUpdate(ctx, storyID)
			if err != nil {
				return err
			}
			if err := domain.RescheduleWindow(story, start.UTC(), end.UTC()); err != nil {
				return err
			}
			return repos.Stories.Save(ctx, story)
		})
	})
}

func (s *roundServiceImpl) WindowStatus(ctx context.Context, storyID uuid.UUID) (domain.WindowStatus, error) {
	story, err := s.repos.Stories.GetByID(ctx, storyID)
	if err != nil {
		return domain.WindowStatus{}, err
	}
	return domain.Window(story, s.now()), nil
}

func (s *roundServiceImpl) Standings(ctx context.Context, storyID uuid.UUID) ([]domain.Standing, error) {
	story, err := s.repos.Stories.GetByID(ctx, storyID)
	if err != nil {
		return nil, err
	}
	return domain.Standings(story), nil
}

func (s *roundServiceImpl) EnsureCanManage(ctx context.Context, storyID, userID uuid.UUID, roles []string) error {
	story, err := s.repos.Stories.GetByID(ctx, storyID)
	if err != nil {
		return err
	}
	if story.MainAuthorID == userID || models.CanManageRounds(roles) {
		return nil
	}
	return models.ErrForbidden
}

// publish отправляет события после коммита. Ошибка публикации только логируется.
func (s *roundServiceImpl) publish(ctx context.Context, events ...models.RoundEvent) {
	if s.publisher == nil {
		return
	}
	for _, event := range events {
		if err := s.publisher.PublishRoundEvent(ctx, event); err != nil {
			s.logger.Error("Failed to publish round event",
				zap.String("type", string(event.Type)),
				zap.String("storyID", event.StoryID.String()),
				zap.Error(err))
		}
	}
}
