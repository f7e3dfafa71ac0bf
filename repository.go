package i18nutils

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/pitabwire/i18nutils/config"
	"github.com/pitabwire/i18nutils/datastore"
	"github.com/pitabwire/i18nutils/model"
)

// Define builds a schema over the service languages without persisting it.
func (s *Service) Define(table string, opts ...model.Option) (*model.Schema, error) {
	return model.Define(table, s.resolver, opts...)
}

// Register defines a schema and returns the repository storing it. When the configuration asks for
// migrations the table is created or extended right away.
func (s *Service) Register(ctx context.Context, table string, opts ...model.Option) (*datastore.Repository, error) {
	if s.dbPool == nil {
		return nil, ErrNoDatastore
	}

	schema, err := s.Define(table, opts...)
	if err != nil {
		return nil, err
	}

	s.repoMu.Lock()
	if _, ok := s.repositories[table]; ok {
		s.repoMu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrDuplicateRepository, table)
	}
	repo := datastore.NewRepository(s.dbPool, schema)
	s.repositories[table] = repo
	s.repoMu.Unlock()

	if cfg, ok := s.Config().(config.ConfigurationDatabase); ok && cfg.DoDatabaseMigrate() {
		if err = repo.Migrate(ctx); err != nil {
			return nil, err
		}
	}

	s.Log(ctx).WithField("table", table).WithField("columns", schema.ColumnNames()).Debug("repository registered")
	return repo, nil
}

// Repository returns the repository registered for table.
func (s *Service) Repository(table string) (*datastore.Repository, bool) {
	s.repoMu.RLock()
	defer s.repoMu.RUnlock()

	repo, ok := s.repositories[table]
	return repo, ok
}

// Migrate creates or extends the tables of every registered repository, in table order.
func (s *Service) Migrate(ctx context.Context) error {
	s.repoMu.RLock()
	tables := slices.Sorted(maps.Keys(s.repositories))
	s.repoMu.RUnlock()

	for _, table := range tables {
		repo, _ := s.Repository(table)
		if err := repo.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}
