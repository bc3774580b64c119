package mocks

import (
	"context"

	"novel-relay/internal/interfaces"
	"novel-relay/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// StoryRepository mock
type StoryRepository struct {
	mock.Mock
}

var _ interfaces.StoryRepository = (*StoryRepository)(nil)

func (m *StoryRepository) Create(ctx context.Context, story *models.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *StoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *StoryRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*models.Story, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Story), args.Error(1)
}

func (m *StoryRepository) Save(ctx context.Context, story *models.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

// ExtensionHistoryRepository mock
type ExtensionHistoryRepository struct {
	mock.Mock
}

var _ interfaces.ExtensionHistoryRepository = (*ExtensionHistoryRepository)(nil)

func (m *ExtensionHistoryRepository) Create(ctx context.Context, entry *models.ExtensionHistoryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *ExtensionHistoryRepository) SyncVoters(ctx context.Context, storyID, extensionID uuid.UUID, voters []uuid.UUID) (bool, error) {
	args := m.Called(ctx, storyID, extensionID, voters)
	return args.Bool(0), args.Error(1)
}

func (m *ExtensionHistoryRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryView), args.Error(1)
}

func (m *ExtensionHistoryRepository) ListLatestByUser(ctx context.Context, userID uuid.UUID) ([]models.HistoryView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.HistoryView), args.Error(1)
}

func (m *ExtensionHistoryRepository) SoftDelete(ctx context.Context, userID, entryID uuid.UUID) error {
	args := m.Called(ctx, userID, entryID)
	return args.Error(0)
}

// VoteRecordRepository mock
type VoteRecordRepository struct {
	mock.Mock
}

var _ interfaces.VoteRecordRepository = (*VoteRecordRepository)(nil)

func (m *VoteRecordRepository) Create(ctx context.Context, record *models.VoteRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *VoteRecordRepository) DeleteByVote(ctx context.Context, userID, storyID, extensionID uuid.UUID) error {
	args := m.Called(ctx, userID, storyID, extensionID)
	return args.Error(0)
}

func (m *VoteRecordRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.VoteRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.VoteRecord), args.Error(1)
}

func (m *VoteRecordRepository) Exists(ctx context.Context, userID, storyID, extensionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, storyID, extensionID)
	return args.Bool(0), args.Error(1)
}

func (m *VoteRecordRepository) Delete(ctx context.Context, userID, recordID uuid.UUID) error {
	args := m.Called(ctx, userID, recordID)
	return args.Error(0)
}

// TxManager выполняет fn сразу, передавая Repos. Транзакции нет, считаются только вызовы.
type TxManager struct {
	Repos interfaces.Repositories
	Calls int
}

var _ interfaces.TxManager = (*TxManager)(nil)

func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos interfaces.Repositories) error) error {
	m.Calls++
	return fn(ctx, m.Repos)
}
