package pool

import (
	"context"

	"gorm.io/gorm"
)

// Pool hands out gorm sessions for the repositories. Writes go to the primaries; reads go to the
// replicas and fall back to a primary when none is registered. A closed pool hands out nil.
type Pool interface {
	// DB returns a session on the next database of the requested kind, round robin.
	DB(ctx context.Context, readOnly bool) *gorm.DB

	// AddConnection opens dsn, a postgres URL or key=value DSN, and adds it to the pool.
	AddConnection(ctx context.Context, dsn string, readOnly bool, opts ...Option) error
	// AddDB adds a database opened elsewhere, such as a DryRun session.
	AddDB(db *gorm.DB, readOnly bool)

	Close(ctx context.Context)
}
