package service

import (
	"context"

	"novel-relay/internal/interfaces"
	"novel-relay/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HistoryService отдаёт авторам историю их продолжений.
type HistoryService interface {
	ListUserExtensionHistory(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error)
	// ListForAuthor - по одной последней записи на историю.
	ListForAuthor(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error)
	SoftDeleteHistoryEntry(ctx context.Context, userID, entryID uuid.UUID) error
}

type historyServiceImpl struct {
	historyRepo interfaces.ExtensionHistoryRepository
	logger      *zap.Logger
}

var _ HistoryService = (*historyServiceImpl)(nil)

func NewHistoryService(historyRepo interfaces.ExtensionHistoryRepository, logger *zap.Logger) HistoryService {
	return &historyServiceImpl{
		historyRepo: historyRepo,
		logger:      logger.Named("HistoryService"),
	}
}

func (s *historyServiceImpl) ListUserExtensionHistory(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error) {
	views, err := s.historyRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list extension history", zap.String("userID", userID.String()), zap.Error(err))
		return nil, err
	}
	return nonNilViews(views), nil
}

func (s *historyServiceImpl) ListForAuthor(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error) {
	views, err := s.historyRepo.ListLatestByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list latest extensions", zap.String("userID", userID.String()), zap.Error(err))
		return nil, err
	}
	return nonNilViews(views), nil
}

// SoftDeleteHistoryEntry скрывает запись из истории. Живой раунд не затрагивается.
func (s *historyServiceImpl) SoftDeleteHistoryEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	logFields := []zap.Field{
		zap.String("userID", userID.String()),
		zap.String("entryID", entryID.String()),
	}
	if err := s.historyRepo.SoftDelete(ctx, userID, entryID); err != nil {
		s.logger.Warn("Failed to soft delete history entry", append(logFields, zap.Error(err))...)
		return err
	}
	s.logger.Info("History entry soft deleted", logFields...)
	return nil
}

func nonNilViews(views []models.HistoryView) []models.HistoryView {
	if views == nil {
		return []models.HistoryView{}
	}
	return views
}
