// Package multilingual provides String, a text value holding one translation per language code,
// together with helpers that turn translation producing functions into plain text.
package multilingual

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"

	"github.com/pitabwire/i18nutils/localization"
)

var ErrUnsupportedValue = errors.New("unsupported multilingual value")

// Value is the closed set of inputs a String can be built from: PlainText, Translations or *String.
type Value interface {
	multilingualValue()
}

// PlainText is a single text assigned to the default language.
type PlainText string

// Translations maps language codes to their text.
type Translations map[string]string

func (PlainText) multilingualValue()    {}
func (Translations) multilingualValue() {}
func (*String) multilingualValue()      {}

// String maps language codes to translated text. Entries keep their insertion order.
// A String is not safe for concurrent mutation.
type String struct {
	data            map[string]string
	order           []string
	defaultLanguage string
}

type Option func(*String)

// WithDefaultLanguage sets the language used when a requested translation is missing.
func WithDefaultLanguage(lang string) Option {
	return func(s *String) {
		if lang != "" {
			s.defaultLanguage = lang
		}
	}
}

// New builds a String. Translations are copied in sorted key order, a *String is copied
// together with its default language unless an option overrides it.
func New(v Value, opts ...Option) *String {
	s := &String{data: map[string]string{}, defaultLanguage: localization.FallbackLanguage}

	switch val := v.(type) {
	case PlainText:
		for _, opt := range opts {
			opt(s)
		}
		s.SetTrans(s.defaultLanguage, string(val))
		return s
	case Translations:
		for _, lang := range slices.Sorted(maps.Keys(val)) {
			s.SetTrans(lang, val[lang])
		}
	case *String:
		if val != nil {
			s.defaultLanguage = val.defaultLanguage
			for lang, text := range val.Items() {
				s.SetTrans(lang, text)
			}
		}
	}

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromAny builds a String from loosely typed input such as decoded request bodies or
// constructor arguments.
func FromAny(v any, opts ...Option) (*String, error) {
	switch val := v.(type) {
	case Value:
		return New(val, opts...), nil
	case String:
		return New(&val, opts...), nil
	case string:
		return New(PlainText(val), opts...), nil
	case map[string]string:
		return New(Translations(val), opts...), nil
	case map[string]any:
		t := make(Translations, len(val))
		for lang, text := range val {
			str, ok := text.(string)
			if !ok {
				return nil, fmt.Errorf("%w: translation %q has type %T", ErrUnsupportedValue, lang, text)
			}
			t[lang] = str
		}
		return New(t, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// SetTrans inserts or overwrites the translation for lang.
func (s *String) SetTrans(lang, text string) {
	if s.data == nil {
		s.data = map[string]string{}
	}
	if _, ok := s.data[lang]; !ok {
		s.order = append(s.order, lang)
	}
	s.data[lang] = text
}

// Trans returns the translation for lang, then for its base language ("fr-CA" -> "fr"),
// then the default translation, then "".
func (s *String) Trans(lang string) string {
	if s == nil {
		return ""
	}
	if text, ok := s.data[lang]; ok {
		return text
	}
	if base, _, found := strings.Cut(lang, "-"); found {
		if text, ok := s.data[base]; ok {
			return text
		}
	}
	return s.DefaultTrans()
}

// DefaultTrans returns the default language translation or "".
func (s *String) DefaultTrans() string {
	if s == nil {
		return ""
	}
	return s.data[s.defaultLanguage]
}

func (s *String) DefaultLanguage() string {
	if s == nil {
		return localization.FallbackLanguage
	}
	return s.defaultLanguage
}

// Lang returns the language active on ctx, or the default language when none is.
func (s *String) Lang(ctx context.Context) string {
	if lang := localization.ActiveLanguage(ctx); lang != "" {
		return lang
	}
	return s.DefaultLanguage()
}

// Langs returns the language codes present, in insertion order.
func (s *String) Langs() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.order)
}

// Items yields (language, text) pairs in insertion order. The sequence can be ranged over repeatedly.
func (s *String) Items() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if s == nil {
			return
		}
		for _, lang := range s.order {
			if !yield(lang, s.data[lang]) {
				return
			}
		}
	}
}

// Map returns a copy of the translations.
func (s *String) Map() map[string]string {
	m := make(map[string]string, s.Len())
	for lang, text := range s.Items() {
		m[lang] = text
	}
	return m
}

func (s *String) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

func (s *String) IsEmpty() bool {
	return s.Len() == 0
}

// Text resolves the String for the language active on ctx.
func (s *String) Text(ctx context.Context) string {
	return s.Trans(s.Lang(ctx))
}

// String implements fmt.Stringer using the default translation; use Text to honour the active language.
func (s *String) String() string {
	return s.DefaultTrans()
}

// Equal reports whether both values hold the same translations and default language.
func (s *String) Equal(other *String) bool {
	if s.Len() != other.Len() || s.DefaultLanguage() != other.DefaultLanguage() {
		return false
	}
	for lang, text := range s.Items() {
		if t, ok := other.data[lang]; !ok || t != text {
			return false
		}
	}
	return true
}

// Add concatenates other onto s language by language, over the languages of both values.
// Missing translations resolve through Trans, so they fall back to each side's default.
func (s *String) Add(other *String) *String {
	out := &String{data: map[string]string{}, defaultLanguage: s.DefaultLanguage()}
	for _, lang := range s.Langs() {
		out.SetTrans(lang, s.Trans(lang)+other.Trans(lang))
	}
	for _, lang := range other.Langs() {
		if _, ok := out.data[lang]; !ok {
			out.SetTrans(lang, s.Trans(lang)+other.Trans(lang))
		}
	}
	return out
}

// AddText appends text to every translation.
func (s *String) AddText(text string) *String {
	out := &String{data: map[string]string{}, defaultLanguage: s.DefaultLanguage()}
	for lang, t := range s.Items() {
		out.SetTrans(lang, t+text)
	}
	return out
}

// PrependText places text in front of every translation.
func (s *String) PrependText(text string) *String {
	out := &String{data: map[string]string{}, defaultLanguage: s.DefaultLanguage()}
	for lang, t := range s.Items() {
		out.SetTrans(lang, text+t)
	}
	return out
}
