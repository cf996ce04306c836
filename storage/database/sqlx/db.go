package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/registrar/core"
)

const uniqueViolation = "23505"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DB is the connection pool shared by every repository.
type DB struct {
	db        *sqlx.DB
	txTimeout time.Duration
}

func NewDB(db *sql.DB, txTimeout time.Duration) *DB {
	return &DB{
		db:        sqlx.NewDb(db, "postgres"),
		txTimeout: txTimeout,
	}
}

// withTx runs fn in a transaction: committed if fn succeeds, rolled back on error or panic.
func (db *DB) withTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) (err error) {
	if db.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.txTimeout)
		defer cancel()
	}

	tx, err := db.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
				err = errors.Wrapf(err, "rolling back (%v)", rbErr)
			}
			return
		}
		if err = tx.Commit(); err != nil {
			err = errors.Wrap(err, "committing transaction")
		}
	}()

	return fn(ctx, tx)
}

func execSq(ctx context.Context, exec core.DBExecutor, b sq.Sqlizer) (sql.Result, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	return exec.ExecContext(ctx, query, args...)
}

func selectSq(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

func getSq(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b sq.Sqlizer) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.GetContext(ctx, q, dest, query, args...)
}

// deleteFrom deletes the rows of table matching where and returns how many went.
func deleteFrom(ctx context.Context, exec core.DBExecutor, table string, where sq.Eq) (int64, error) {
	res, err := execSq(ctx, exec, psql.Delete(table).Where(where))
	if err != nil {
		return 0, errors.Wrapf(err, "deleting from %s", table)
	}
	n, err := res.RowsAffected()
	return n, errors.Wrapf(err, "deleting from %s", table)
}

func exists(ctx context.Context, q sqlx.QueryerContext, b sq.SelectBuilder) (bool, error) {
	var found bool
	err := getSq(ctx, q, &found, b.Prefix("SELECT EXISTS (").Suffix(")"))
	return found, err
}

func trapNoRowsErr(err, notFound error) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return notFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	pqErr, ok := errors.Cause(err).(*pq.Error)
	return ok && pqErr.Code == uniqueViolation
}
