package relational

import (
	"context"
	"database/sql"

	"github.com/itsatony/w4b_v3/server/coldrelay/internal/database"
	"github.com/itsatony/w4b_v3/server/coldrelay/internal/errors"
)

type BaseRepo struct {
	db database.DB
}

func (r *BaseRepo) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	result, err := r.db.GetDB().ExecContext(ctx, r.db.GetDB().Rebind(query), args...)
	if err != nil {
		return nil, errors.NewStorageError("failed to execute query", err)
	}
	return result, nil
}
func (r *BaseRepo) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	if err := r.db.GetDB().SelectContext(ctx, dest, r.db.GetDB().Rebind(query), args...); err != nil {
		return errors.NewStorageError("failed to execute query", err)
	}
	return nil
}
func (r *BaseRepo) Ping(ctx context.Context) error {
	if err := r.db.Ping(ctx); err != nil {
		return errors.NewStorageError("failed to ping database", err)
	}
	return nil
}
func (r *BaseRepo) Close() error {
	if err := r.db.Close(); err != nil {
		return errors.NewStorageError("failed to close database", err)
	}
	return nil
}
