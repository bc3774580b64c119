package database

import (
	"context"
	"fmt"

	"novel-relay/internal/interfaces"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pgTxManager выполняет операции в транзакции пула и выдаёт репозитории, привязанные к ней.
type pgTxManager struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Compile-time check
var _ interfaces.TxManager = (*pgTxManager)(nil)

// NewTxManager создает менеджер транзакций поверх пула.
func NewTxManager(pool *pgxpool.Pool, logger *zap.Logger) interfaces.TxManager {
	return &pgTxManager{
		pool:   pool,
		logger: logger.Named("PgTxManager"),
	}
}

// NewRepositories возвращает набор репозиториев, работающих через db (пул или транзакцию).
func NewRepositories(db interfaces.DBTX, logger *zap.Logger) interfaces.Repositories {
	return interfaces.Repositories{
		Stories:     NewPgStoryRepository(db, logger),
		History:     NewPgExtensionHistoryRepository(db, logger),
		VoteRecords: NewPgVoteRecordRepository(db, logger),
	}
}

// WithTx выполняет fn в транзакции с автоматическим rollback при ошибке или панике.
func (m *pgTxManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos interfaces.Repositories) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				m.logger.Error("Failed to rollback transaction after panic",
					zap.Error(rollbackErr),
					zap.Any("panic", p))
			}
			panic(p)
		}
	}()

	if err := fn(ctx, NewRepositories(tx, m.logger)); err != nil {
		if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
			m.logger.Error("Failed to rollback transaction",
				zap.Error(rollbackErr),
				zap.NamedError("original_error", err))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
