package core

import "context"

// DBExecutor is the read side of *sqlx.DB and *sqlx.Tx.
type DBExecutor interface {
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	Rebind(query string) string
}
