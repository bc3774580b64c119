package service

import (
	"context"

	"novel-relay/internal/interfaces"
	"novel-relay/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// VoteRecordService - чтение и чистка журнала голосов пользователя.
// Записи создаются RoundService при голосовании.
type VoteRecordService interface {
	ListVoteRecords(ctx context.Context, userID uuid.UUID) ([]models.VoteRecord, error)
	HasVoteRecord(ctx context.Context, userID, storyID, extensionID uuid.UUID) (bool, error)
	DeleteVoteRecord(ctx context.Context, userID, recordID uuid.UUID) error
}

type voteRecordServiceImpl struct {
	recordRepo interfaces.VoteRecordRepository
	logger     *zap.Logger
}

var _ VoteRecordService = (*voteRecordServiceImpl)(nil)

func NewVoteRecordService(recordRepo interfaces.VoteRecordRepository, logger *zap.Logger) VoteRecordService {
	return &voteRecordServiceImpl{
		recordRepo: recordRepo,
		logger:     logger.Named("VoteRecordService"),
	}
}

func (s *voteRecordServiceImpl) ListVoteRecords(ctx context.Context, userID uuid.UUID) ([]models.VoteRecord, error) {
	records, err := s.recordRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list vote records", zap.String("userID", userID.String()), zap.Error(err))
		return nil, err
	}
	if records == nil {
		records = []models.VoteRecord{}
	}
	return records, nil
}

func (s *voteRecordServiceImpl) HasVoteRecord(ctx context.Context, userID, storyID, extensionID uuid.UUID) (bool, error) {
	return s.recordRepo.Exists(ctx, userID, storyID, extensionID)
}

// DeleteVoteRecord удаляет только запись журнала, голос в раунде остаётся.
func (s *voteRecordServiceImpl) DeleteVoteRecord(ctx context.Context, userID, recordID uuid.UUID) error {
	if err := s.recordRepo.Delete(ctx, userID, recordID); err != nil {
		s.logger.Warn("Failed to delete vote record",
			zap.String("userID", userID.String()), zap.String("recordID", recordID.String()), zap.Error(err))
		return err
	}
	return nil
}
