// Package repository holds helpers shared by the table repositories
package repository

import (
	"context"
	"database/sql"

	"github.com/thrasher-corp/volatilitytrader/database"
	"github.com/thrasher-corp/volatilitytrader/log"
)

// Migrate runs each statement in order against db
func Migrate(ctx context.Context, db *database.Instance, statements ...string) error {
	con, err := db.GetSQL()
	if err != nil {
		return err
	}
	for _, stmt := range statements {
		if _, err := con.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// InTx runs fn inside a transaction, rolling back when fn fails
func InTx(ctx context.Context, db *database.Instance, fn func(*sql.Tx) error) error {
	con, err := db.GetSQL()
	if err != nil {
		return err
	}
	tx, err := con.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err = fn(tx); err != nil {
		if errRB := tx.Rollback(); errRB != nil {
			log.Errorln(log.DatabaseMgr, errRB)
		}
		return err
	}
	return tx.Commit()
}
