package db

import (
	"database/sql"
	"fmt"
)

// WithTx runs fn inside a transaction, rolling back on error or panic.
func WithTx(sqlDB *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
