// Package datastore persists model records, one physical column per translated language,
// through gorm over PostgreSQL.
package datastore

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pitabwire/i18nutils/config"
	"github.com/pitabwire/i18nutils/datastore/pool"
)

var ErrInvalidID = errors.New("invalid record id")

// NewPool opens every primary and replica database named by cfg. A configuration without
// any database yields an empty pool.
func NewPool(ctx context.Context, cfg config.ConfigurationDatabase, opts ...pool.Option) (pool.Pool, error) {
	poolOpts := append([]pool.Option{pool.FromConfig(cfg)}, opts...)

	p := pool.NewPool(ctx)
	connections := map[bool][]string{
		false: cfg.GetDatabasePrimaryHostURL(),
		true:  cfg.GetDatabaseReplicaHostURL(),
	}
	for _, readOnly := range []bool{false, true} {
		for _, dsn := range connections[readOnly] {
			if strings.TrimSpace(dsn) == "" {
				continue
			}
			if err := p.AddConnection(ctx, dsn, readOnly, poolOpts...); err != nil {
				p.Close(ctx)
				return nil, err
			}
		}
	}
	return p, nil
}

func isRelationAlreadyExistsErr(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P07" || pgErr.Code == "42701"
	}

	return err != nil && strings.Contains(strings.ToLower(err.Error()), "already exists")
}
