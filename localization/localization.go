package localization

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"google.golang.org/grpc/metadata"

	"github.com/pitabwire/i18nutils/config"
)

type contextKey string

func (c contextKey) String() string {
	return "i18nutils/localization/" + string(c)
}

const ctxKeyLanguage = contextKey("languageKey")

// FallbackLanguage is the language used when nothing else is configured.
const FallbackLanguage = config.DefaultFallbackLanguage

var ErrInvalidLanguage = errors.New("invalid language entry")

// ToContext adds language to the current supplied context.
func ToContext(ctx context.Context, lang []string) context.Context {
	return context.WithValue(ctx, ctxKeyLanguage, lang)
}

// WithLanguage activates a single language on ctx.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return ToContext(ctx, []string{lang})
}

// FromContext extracts language from the supplied context if any exist.
func FromContext(ctx context.Context) []string {
	languages, ok := ctx.Value(ctxKeyLanguage).([]string)
	if !ok {
		return nil
	}

	return languages
}

func ToMap(m map[string]string, lang []string) map[string]string {
	m["lang"] = strings.Join(lang, ",")
	return m
}

func FromMap(m map[string]string) []string {
	lang, ok := m["lang"]
	if !ok {
		return nil
	}
	return strings.Split(lang, ",")
}

// ActiveLanguage returns the first usable language code carried by ctx, or "" when there is none.
// Accept-Language style weights ("fr;q=0.8") are stripped.
func ActiveLanguage(ctx context.Context) string {
	for _, l := range FromContext(ctx) {
		if code := cleanTag(l); code != "" {
			return code
		}
	}
	return ""
}

func cleanTag(tag string) string {
	if i := strings.IndexByte(tag, ';'); i >= 0 {
		tag = tag[:i]
	}
	tag = strings.TrimSpace(tag)
	if tag == "*" {
		return ""
	}
	return tag
}

// Language is one configured language.
type Language struct {
	Code string
	Name string
}

// ParseLanguages converts "code:Display Name" entries into languages, keeping their order.
// An entry without a name uses its code as the name.
func ParseLanguages(entries []string) ([]Language, error) {
	languages := make([]Language, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		code, name, _ := strings.Cut(strings.TrimSpace(entry), ":")
		code = strings.TrimSpace(code)
		name = strings.TrimSpace(name)
		if code == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidLanguage, entry)
		}
		if _, err := language.Parse(code); err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidLanguage, entry, err)
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		if name == "" {
			name = code
		}
		languages = append(languages, Language{Code: code, Name: name})
	}
	return languages, nil
}

// Resolver answers which languages are configured and which one is active.
// It only reads state; it never sets the active language.
type Resolver struct {
	languages       []Language
	defaultLanguage string
	matcher         language.Matcher
}

// NewResolver builds a resolver from the localization configuration.
func NewResolver(cfg config.ConfigurationLocalization) (*Resolver, error) {
	languages, err := ParseLanguages(cfg.GetLanguages())
	if err != nil {
		return nil, err
	}

	defaultLanguage := cfg.GetDefaultLanguage()
	if defaultLanguage != "" && len(languages) > 0 && !slices.ContainsFunc(languages, func(l Language) bool {
		return l.Code == defaultLanguage
	}) {
		return nil, fmt.Errorf("%w: default %q is not among the configured languages", ErrInvalidLanguage, defaultLanguage)
	}
	return NewResolverWithLanguages(defaultLanguage, languages...), nil
}

// NewResolverWithLanguages builds a resolver from an explicit language list.
func NewResolverWithLanguages(defaultLanguage string, languages ...Language) *Resolver {
	tags := make([]language.Tag, 0, len(languages))
	for _, l := range languages {
		tags = append(tags, language.Make(l.Code))
	}

	return &Resolver{
		languages:       languages,
		defaultLanguage: strings.TrimSpace(defaultLanguage),
		matcher:         language.NewMatcher(tags),
	}
}

// CurrentLanguage returns the active language on ctx, otherwise the default language.
func (r *Resolver) CurrentLanguage(ctx context.Context) string {
	if lang := ActiveLanguage(ctx); lang != "" {
		return lang
	}
	return r.DefaultLanguage()
}

// DefaultLanguage returns the configured default language, then the first configured language,
// then "en" when no languages are configured.
func (r *Resolver) DefaultLanguage() string {
	if r.defaultLanguage != "" {
		return r.defaultLanguage
	}
	if len(r.languages) > 0 {
		return r.languages[0].Code
	}
	return FallbackLanguage
}

// ConfiguredLanguages returns a copy of the configured languages in configuration order.
func (r *Resolver) ConfiguredLanguages() []Language {
	return append([]Language(nil), r.languages...)
}

// Codes returns the configured language codes in configuration order.
func (r *Resolver) Codes() []string {
	codes := make([]string, 0, len(r.languages))
	for _, l := range r.languages {
		codes = append(codes, l.Code)
	}
	return codes
}

// Supports reports whether code is one of the configured languages.
func (r *Resolver) Supports(code string) bool {
	for _, l := range r.languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// Match picks the configured language that best serves the requested tags.
// Without a confident match the default language is returned.
func (r *Resolver) Match(requested ...string) string {
	if len(r.languages) == 0 {
		return r.DefaultLanguage()
	}

	var tags []language.Tag
	for _, req := range requested {
		parsed, _, err := language.ParseAcceptLanguage(req)
		if err != nil {
			continue
		}
		tags = append(tags, parsed...)
	}
	if len(tags) == 0 {
		return r.DefaultLanguage()
	}

	_, idx, confidence := r.matcher.Match(tags...)
	if confidence == language.No {
		return r.DefaultLanguage()
	}
	return r.languages[idx].Code
}

// MatchContext resolves the languages carried by ctx against the configured ones.
func (r *Resolver) MatchContext(ctx context.Context) string {
	return r.Match(FromContext(ctx)...)
}

func ExtractLanguageFromHTTPRequest(req *http.Request) []string {
	lang := req.URL.Query().Get("lang")

	acceptedLang := ExtractLanguageFromHTTPHeader(req.Header)

	var languages []string
	if lang != "" {
		languages = append(languages, lang)
	}

	return append(languages, acceptedLang...)
}

func ExtractLanguageFromHTTPHeader(req http.Header) []string {
	acceptLanguageHeader := req.Get("Accept-Language")
	if acceptLanguageHeader == "" {
		return nil
	}
	return splitTags(acceptLanguageHeader)
}

func ExtractLanguageFromGrpcRequest(ctx context.Context) []string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return nil
	}

	header, ok := md["accept-language"]
	if !ok || len(header) == 0 {
		return nil
	}
	return splitTags(header[0])
}

func splitTags(header string) []string {
	var tags []string
	for _, t := range strings.Split(header, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
