package i18nutils

import (
	"context"
	"fmt"

	"github.com/pitabwire/i18nutils/config"
	"github.com/pitabwire/i18nutils/datastore"
	"github.com/pitabwire/i18nutils/datastore/pool"
)

// WithDatastore opens the primary and replica databases named in the configuration.
func WithDatastore(opts ...pool.Option) Option {
	return func(_ context.Context, s *Service) {
		s.useDatastore = true
		s.datastoreOpts = opts
	}
}

// WithDatastorePool uses an already built pool. The service closes it on Stop.
func WithDatastorePool(dbPool pool.Pool) Option {
	return func(_ context.Context, s *Service) {
		s.setPool(dbPool)
	}
}

func (s *Service) setPool(dbPool pool.Pool) {
	s.dbPool = dbPool
	s.AddCleanupMethod(func(ctx context.Context) {
		dbPool.Close(ctx)
	})
}

func (s *Service) setupDatastore(ctx context.Context) {
	if s.dbPool != nil || !s.useDatastore {
		return
	}

	cfg, ok := s.Config().(config.ConfigurationDatabase)
	if !ok {
		s.Log(ctx).Warn("configuration object not of type : ConfigurationDatabase")
		return
	}

	dbPool, err := datastore.NewPool(ctx, cfg, s.datastoreOpts...)
	if err != nil {
		s.addError(fmt.Errorf("open datastore: %w", err))
		return
	}
	s.setPool(dbPool)
}

// DatastorePool returns the database pool, nil when the service has no datastore.
func (s *Service) DatastorePool() pool.Pool {
	return s.dbPool
}
