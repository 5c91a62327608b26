package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Scope names a table whose rows belong to an owner row through OwnerColumn.
// Table and column names are compile-time constants, never request input.
type Scope struct {
	Table       string
	OwnerColumn string
}

var (
	ContactScope = Scope{Table: "contacts", OwnerColumn: "user_id"}
	AddressScope = Scope{Table: "addresses", OwnerColumn: "contact_id"}
)

// Step is one hop of an ownership path: the row ID inside Scope.
type Step struct {
	Scope Scope
	ID    int64
}

// Where is the ownership predicate for s.Table. It binds the row ID to $1
// and the owner ID to $2.
func (s Scope) Where() string {
	return "id = $1 AND " + s.OwnerColumn + " = $2"
}

// Resolve returns ErrNotFound unless row id of s.Table is owned by ownerID.
// A row owned by someone else is reported exactly like a missing row.
func (s Scope) Resolve(ctx context.Context, q querier, id, ownerID int64) error {
	return s.resolve(ctx, q, id, ownerID, "")
}

// Lock is Resolve with a FOR SHARE row lock. It must run inside a
// transaction; the lock keeps the row from being deleted until commit.
func (s Scope) Lock(ctx context.Context, tx *sql.Tx, id, ownerID int64) error {
	return s.resolve(ctx, tx, id, ownerID, " FOR SHARE")
}

func (s Scope) resolve(ctx context.Context, q querier, id, ownerID int64, suffix string) error {
	query := `SELECT 1 FROM ` + s.Table + ` WHERE ` + s.Where() + suffix
	var one int
	if err := q.QueryRowContext(ctx, query, id, ownerID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("resolve %s scope: %w", s.Table, err)
	}
	return nil
}

// resolvePath walks an ownership chain starting at rootID. Each step is
// resolved against the ID of the step before it, so the final step is only
// reachable when every ancestor is owned by rootID.
func resolvePath(ctx context.Context, q querier, rootID int64, steps ...Step) error {
	owner := rootID
	for _, step := range steps {
		if err := step.Scope.Resolve(ctx, q, step.ID, owner); err != nil {
			return err
		}
		owner = step.ID
	}
	return nil
}

// lockPath is resolvePath with every hop locked FOR SHARE.
func lockPath(ctx context.Context, tx *sql.Tx, rootID int64, steps ...Step) error {
	owner := rootID
	for _, step := range steps {
		if err := step.Scope.Lock(ctx, tx, step.ID, owner); err != nil {
			return err
		}
		owner = step.ID
	}
	return nil
}

// inTx runs fn inside a transaction, committing on success.
func inTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
