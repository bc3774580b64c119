package interfaces

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX - общий интерфейс для *pgxpool.Pool и pgx.Tx.
// Репозитории принимают его, чтобы работать как вне, так и внутри транзакции.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// Repositories - набор репозиториев, привязанных к одному DBTX.
type Repositories struct {
	Stories     StoryRepository
	History     ExtensionHistoryRepository
	VoteRecords VoteRecordRepository
}

// TxManager выполняет fn в одной транзакции БД.
// fn получает репозитории, привязанные к этой транзакции.
// Ошибка или паника в fn откатывают транзакцию.
type TxManager interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
