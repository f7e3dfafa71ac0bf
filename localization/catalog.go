package localization

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pitabwire/util"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Manager gives access to message catalogs loaded from disk.
type Manager interface {
	Bundle() *i18n.Bundle
	Translate(ctx context.Context, messageID string) string
	TranslateWithMap(ctx context.Context, messageID string, variables map[string]any) string
	TranslateWithMapAndCount(ctx context.Context, messageID string, variables map[string]any, count int) string
}

type managerImpl struct {
	bundle   *i18n.Bundle
	resolver *Resolver
}

// NewManager loads messages.<lang>.toml (or .yaml) for each language found in translationsFolder.
func NewManager(resolver *Resolver, translationsFolder string, languages ...string) (Manager, error) {
	if translationsFolder == "" {
		translationsFolder = "localization"
	}
	if len(languages) == 0 {
		languages = resolver.Codes()
	}

	bundle := i18n.NewBundle(language.Make(resolver.DefaultLanguage()))
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	for _, lang := range languages {
		path, err := messageFile(translationsFolder, lang)
		if err != nil {
			return nil, err
		}
		if _, err = bundle.LoadMessageFile(path); err != nil {
			return nil, fmt.Errorf("load message file %s: %w", path, err)
		}
	}

	return &managerImpl{bundle: bundle, resolver: resolver}, nil
}

func messageFile(folder, lang string) (string, error) {
	for _, ext := range []string{"toml", "yaml"} {
		path := filepath.Join(folder, fmt.Sprintf("messages.%s.%s", lang, ext))
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("no message file for language %q in %s: %w", lang, folder, os.ErrNotExist)
}

// Bundle Access the translation bundle instantiated in the system.
func (s *managerImpl) Bundle() *i18n.Bundle {
	return s.bundle
}

// Translate performs a quick translation based on the supplied message id.
func (s *managerImpl) Translate(ctx context.Context, messageID string) string {
	return s.TranslateWithMap(ctx, messageID, map[string]any{})
}

// TranslateWithMap performs a translation with variables based on the supplied message id.
func (s *managerImpl) TranslateWithMap(ctx context.Context, messageID string, variables map[string]any) string {
	return s.localize(ctx, messageID, variables, nil)
}

// TranslateWithMapAndCount performs a translation with variables based on the supplied message id and can pluralize.
func (s *managerImpl) TranslateWithMapAndCount(
	ctx context.Context,
	messageID string,
	variables map[string]any,
	count int,
) string {
	return s.localize(ctx, messageID, variables, count)
}

// localize tries the languages on ctx in order, then the default language.
// Unknown message ids translate to themselves.
func (s *managerImpl) localize(ctx context.Context, messageID string, variables map[string]any, count any) string {
	languageSlice := append(append([]string(nil), FromContext(ctx)...), s.resolver.DefaultLanguage())

	localizer := i18n.NewLocalizer(s.bundle, languageSlice...)

	transVersion, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: variables,
		PluralCount:  count,
	})
	if err != nil {
		var notFound *i18n.MessageNotFoundErr
		if errors.As(err, &notFound) {
			return messageID
		}
		util.Log(ctx).WithError(err).WithField("messageID", messageID).
			Error("TranslateWithMapAndCount -- could not perform translation")
	}

	return transVersion
}
