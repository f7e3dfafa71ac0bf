// Package i18nutils ties the i18n building blocks together: configuration, logging, the language
// resolver, message catalogs and the multilingual repositories persisted through datastore.
package i18nutils

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/pitabwire/util"

	"github.com/pitabwire/i18nutils/config"
	"github.com/pitabwire/i18nutils/datastore"
	"github.com/pitabwire/i18nutils/datastore/pool"
	"github.com/pitabwire/i18nutils/localization"
	"github.com/pitabwire/i18nutils/version"
)

type contextKey string

func (c contextKey) String() string {
	return "i18nutils/" + string(c)
}

const ctxKeyService = contextKey("serviceKey")

var (
	ErrNoDatastore         = errors.New("service has no datastore")
	ErrDuplicateRepository = errors.New("repository already registered")
)

// Service holds the components an application needs to work with multilingual content.
// One instance lives for the lifetime of the application and is propagated through contexts.
type Service struct {
	name          string
	configuration any
	logger        *util.LogEntry

	resolver           *localization.Resolver
	catalog            localization.Manager
	translationsFolder string
	catalogLanguages   []string
	loadCatalog        bool

	dbPool        pool.Pool
	datastoreOpts []pool.Option
	useDatastore  bool

	repoMu       sync.RWMutex
	repositories map[string]*datastore.Repository

	cleanup   []func(ctx context.Context)
	initErrs  []error
	startOnce sync.Once
	stopOnce  sync.Once
}

type Option func(ctx context.Context, s *Service)

// NewService builds a service from the environment configuration and the supplied options.
// The returned context carries the service, its configuration and its logger.
func NewService(ctx context.Context, name string, opts ...Option) (context.Context, *Service, error) {
	defaultCfg, err := config.FromEnv[config.ConfigurationDefault]()

	s := &Service{
		name:          name,
		configuration: &defaultCfg,
		logger:        util.Log(ctx),
		repositories:  map[string]*datastore.Repository{},
	}
	if err != nil {
		s.addError(fmt.Errorf("read configuration from environment: %w", err))
	}

	opts = append([]Option{WithLogger()}, opts...)
	s.Init(ctx, opts...)

	if err = errors.Join(s.initErrs...); err != nil {
		s.Stop(ctx)
		return ctx, nil, err
	}

	ctx = SvcToContext(ctx, s)
	ctx = config.ToContext(ctx, s.Config())
	ctx = util.ContextWithLogger(ctx, s.logger)

	s.Log(ctx).WithField("version", version.String()).
		WithField("languages", s.resolver.Codes()).
		Debug("service initialised")
	return ctx, s, nil
}

// Init applies options and then builds the components they asked for. Components are built on
// the first call only.
func (s *Service) Init(ctx context.Context, opts ...Option) {
	for _, opt := range opts {
		opt(ctx, s)
	}

	s.startOnce.Do(func() {
		s.setupResolver(ctx)
		s.setupCatalog(ctx)
		s.setupDatastore(ctx)
	})
}

func (s *Service) addError(err error) {
	s.initErrs = append(s.initErrs, err)
}

// SvcToContext pushes a service instance into the supplied context for easier propagation.
func SvcToContext(ctx context.Context, service *Service) context.Context {
	return context.WithValue(ctx, ctxKeyService, service)
}

// Svc obtains a service instance being propagated through the context.
func Svc(ctx context.Context) *Service {
	service, ok := ctx.Value(ctxKeyService).(*Service)
	if !ok {
		return nil
	}

	return service
}

func (s *Service) Name() string {
	return s.name
}

// WithName specifies the name the service will utilize.
func WithName(name string) Option {
	return func(_ context.Context, s *Service) {
		s.name = name
	}
}

// AddCleanupMethod registers a function run by Stop. Cleanups run in reverse registration order.
func (s *Service) AddCleanupMethod(f func(ctx context.Context)) {
	s.cleanup = append(s.cleanup, f)
}

// Stop releases everything the service opened. Calling it more than once is a no-op.
func (s *Service) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		for _, f := range slices.Backward(s.cleanup) {
			f(ctx)
		}
		s.Log(ctx).Debug("service stopped")
	})
}
