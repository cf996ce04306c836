package core

import (
	"context"
	"database/sql"
)

type (
	// DBExecutor runs statements; both *sql.DB/*sqlx.DB and *sql.Tx/*sqlx.Tx satisfy it.
	DBExecutor interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	}

	DB interface {
		DBExecutor

		PingContext(ctx context.Context) error
		BeginTx(context.Context, *sql.TxOptions) (*sql.Tx, error)
		Close() error
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)
