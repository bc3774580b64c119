package mocks

import (
	"context"
	"time"

	"novel-relay/internal/domain"
	"novel-relay/internal/models"
	"novel-relay/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// RoundService mock
type RoundService struct {
	mock.Mock
}

var _ service.RoundService = (*RoundService)(nil)

func (m *RoundService) CreateStory(ctx context.Context, params domain.NewStoryParams) (*models.Story, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *RoundService) GetStory(ctx context.Context, storyID uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *RoundService) SubmitExtension(ctx context.Context, storyID, authorID uuid.UUID, chapterName, content string) (uuid.UUID, error) {
	args := m.Called(ctx, storyID, authorID, chapterName, content)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *RoundService) WithdrawExtension(ctx context.Context, storyID, extensionID, userID uuid.UUID) error {
	args := m.Called(ctx, storyID, extensionID, userID)
	return args.Error(0)
}

func (m *RoundService) CastVote(ctx context.Context, storyID, extensionID, voterID uuid.UUID, delta int) (*service.VoteResult, error) {
	args := m.Called(ctx, storyID, extensionID, voterID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VoteResult), args.Error(1)
}

func (m *RoundService) MergeWinner(ctx context.Context, storyID, extensionID uuid.UUID) (*service.MergeResult, error) {
	args := m.Called(ctx, storyID, extensionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MergeResult), args.Error(1)
}

func (m *RoundService) MergeLeader(ctx context.Context, storyID uuid.UUID) (*service.MergeResult, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MergeResult), args.Error(1)
}

func (m *RoundService) ClearRound(ctx context.Context, storyID uuid.UUID) (int, error) {
	args := m.Called(ctx, storyID)
	return args.Int(0), args.Error(1)
}

func (m *RoundService) OpenChapter(ctx context.Context, storyID uuid.UUID, content, chapterName string) (*models.Chapter, error) {
	args := m.Called(ctx, storyID, content, chapterName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Chapter), args.Error(1)
}

func (m *RoundService) RescheduleWindow(ctx context.Context, storyID uuid.UUID, start, end time.Time) error {
	args := m.Called(ctx, storyID, start, end)
	return args.Error(0)
}

func (m *RoundService) WindowStatus(ctx context.Context, storyID uuid.UUID) (domain.WindowStatus, error) {
	args := m.Called(ctx, storyID)
	return args.Get(0).(domain.WindowStatus), args.Error(1)
}

func (m *RoundService) Standings(ctx context.Context, storyID uuid.UUID) ([]domain.Standing, error) {
	args := m.Called(ctx, storyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Standing), args.Error(1)
}

func (m *RoundService) EnsureCanManage(ctx context.Context, storyID, userID uuid.UUID, roles []string) error {
	args := m.Called(ctx, storyID, userID, roles)
	return args.Error(0)
}

// HistoryService mock
type HistoryService struct {
	mock.Mock
}

var _ service.HistoryService = (*HistoryService)(nil)

func (m *HistoryService) ListUserExtensionHistory(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryView), args.Error(1)
}

func (m *HistoryService) ListForAuthor(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryView), args.Error(1)
}

func (m *HistoryService) SoftDeleteHistoryEntry(ctx context.Context, userID, entryID uuid.UUID) error {
	args := m.Called(ctx, userID, entryID)
	return args.Error(0)
}

// VoteRecordService mock
type VoteRecordService struct {
	mock.Mock
}

var _ service.VoteRecordService = (*VoteRecordService)(nil)

func (m *VoteRecordService) ListVoteRecords(ctx context.Context, userID uuid.UUID) ([]models.VoteRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VoteRecord), args.Error(1)
}

func (m *VoteRecordService) HasVoteRecord(ctx context.Context, userID, storyID, extensionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, storyID, extensionID)
	return args.Bool(0), args.Error(1)
}

func (m *VoteRecordService) DeleteVoteRecord(ctx context.Context, userID, recordID uuid.UUID) error {
	args := m.Called(ctx, userID, recordID)
	return args.Error(0)
}
