package i18nutils

import (
	"context"
	"fmt"

	"github.com/pitabwire/i18nutils/config"
	"github.com/pitabwire/i18nutils/localization"
	"github.com/pitabwire/i18nutils/multilingual"
)

// WithLanguages configures the languages explicitly instead of reading them from configuration.
func WithLanguages(defaultLanguage string, languages ...localization.Language) Option {
	return func(_ context.Context, s *Service) {
		s.resolver = localization.NewResolverWithLanguages(defaultLanguage, languages...)
	}
}

// WithTranslations loads the message catalogs found in translationsFolder. An empty folder uses the
// configured translations folder, and no languages means every configured language.
func WithTranslations(translationsFolder string, languages ...string) Option {
	return func(_ context.Context, s *Service) {
		s.loadCatalog = true
		s.translationsFolder = translationsFolder
		s.catalogLanguages = languages
	}
}

func (s *Service) setupResolver(ctx context.Context) {
	if s.resolver != nil {
		return
	}

	cfg, ok := s.Config().(config.ConfigurationLocalization)
	if !ok {
		s.resolver = localization.NewResolverWithLanguages(localization.FallbackLanguage)
		return
	}

	resolver, err := localization.NewResolver(cfg)
	if err != nil {
		s.addError(fmt.Errorf("configure languages: %w", err))
		return
	}
	s.resolver = resolver

	s.Log(ctx).WithField("languages", resolver.Codes()).
		WithField("default", resolver.DefaultLanguage()).
		Debug("languages configured")
}

func (s *Service) setupCatalog(_ context.Context) {
	if !s.loadCatalog || s.resolver == nil {
		return
	}

	folder := s.translationsFolder
	if cfg, ok := s.Config().(config.ConfigurationLocalization); ok && folder == "" {
		folder = cfg.GetTranslationsFolder()
	}

	catalog, err := localization.NewManager(s.resolver, folder, s.catalogLanguages...)
	if err != nil {
		s.addError(fmt.Errorf("load translations: %w", err))
		return
	}
	s.catalog = catalog
}

// Resolver returns the language resolver built from configuration.
func (s *Service) Resolver() *localization.Resolver {
	return s.resolver
}

// Localization returns the message catalogs, nil unless WithTranslations was used.
func (s *Service) Localization() localization.Manager {
	return s.catalog
}

// Translate looks messageID up in the catalogs for the languages on ctx. Without catalogs the
// message id is returned as is.
func (s *Service) Translate(ctx context.Context, messageID string) string {
	if s.catalog == nil {
		return messageID
	}
	return s.catalog.Translate(ctx, messageID)
}

// Multilingual builds a multilingual string whose default language is the configured one.
func (s *Service) Multilingual(v multilingual.Value) *multilingual.String {
	return multilingual.New(v, multilingual.WithDefaultLanguage(s.resolver.DefaultLanguage()))
}
