package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/pitabwire/util"

	"github.com/pitabwire/i18nutils/localization"
	"github.com/pitabwire/i18nutils/multilingual"
)

// AttrName is the physical column name holding the translation of name into lang.
func AttrName(name, lang string) string {
	return name + "_" + strings.ReplaceAll(lang, "-", "_")
}

// Field is one logical multilingual attribute backed by a column per configured language.
// The template column is cloned for every language when the field is added to a schema.
type Field struct {
	name     string
	template *Column
	schema   *Schema
	langs    []string
	columns  map[string]*Column
}

// NewField wraps a text column template.
func NewField(template *Column) (*Field, error) {
	if template == nil || !template.IsText() {
		kind := "nil"
		if template != nil {
			kind = template.Kind.String()
		}
		return nil, fmt.Errorf("%w: got %s", ErrUnsupportedFieldType, kind)
	}
	if template.Has(ConstraintPrimaryKey) {
		return nil, fmt.Errorf("%w: primary key columns cannot be translated", ErrUnsupportedFieldType)
	}
	return &Field{template: template.Clone()}, nil
}

// MustField is NewField for package level declarations.
func MustField(template *Column) *Field {
	f, err := NewField(template)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Field) Name() string {
	return f.name
}

// Template returns a copy of the wrapped column definition.
func (f *Field) Template() *Column {
	return f.template.Clone()
}

// Languages returns the languages the field has a column for, in configuration order.
func (f *Field) Languages() []string {
	return append([]string(nil), f.langs...)
}

// Column returns the physical column for lang.
func (f *Field) Column(lang string) (*Column, bool) {
	c, ok := f.columns[lang]
	return c, ok
}

// Columns returns the generated physical columns in language order.
func (f *Field) Columns() []*Column {
	cols := make([]*Column, 0, len(f.langs))
	for _, lang := range f.langs {
		cols = append(cols, f.columns[lang])
	}
	return cols
}

func (f *Field) expand(name string, langs []string) []*Column {
	f.name = name
	f.langs = append([]string(nil), langs...)
	f.columns = make(map[string]*Column, len(langs))

	cols := make([]*Column, 0, len(langs))
	for _, lang := range langs {
		c := f.template.Clone()
		c.Name = AttrName(name, lang)
		if c.VerboseName != "" {
			c.VerboseName = fmt.Sprintf("%s (%s)", c.VerboseName, lang)
		}
		f.columns[lang] = c
		cols = append(cols, c)
	}
	return cols
}

// Get assembles the stored translations of rec. Empty and NULL columns are left out.
func (f *Field) Get(rec *Record) *multilingual.String {
	out := multilingual.New(multilingual.Translations{}, multilingual.WithDefaultLanguage(f.defaultLanguage()))
	for _, lang := range f.langs {
		if text, ok := asText(rec.values[f.columns[lang].Name]); ok && text != "" {
			out.SetTrans(lang, text)
		}
	}
	return out
}

// Values returns the stored translation of rec for every configured language, keyed by language
// code. Unset languages map to nil, so every row has the same keys.
func (f *Field) Values(rec *Record) map[string]any {
	out := make(map[string]any, len(f.langs))
	for _, lang := range f.langs {
		out[lang] = nil
		if text, ok := asText(rec.values[f.columns[lang].Name]); ok {
			out[lang] = text
		}
	}
	return out
}

// Set writes v onto rec. A *multilingual.String or mapping writes each language it holds and
// leaves the other languages as they are; plain text writes the default language only; nil,
// including a nil *multilingual.String, clears every language. Nothing is written when any value is rejected.
func (f *Field) Set(ctx context.Context, rec *Record, v any) error {
	if rec.schema != f.schema {
		return fmt.Errorf("%w: field %s does not belong to table %s", ErrUnknownColumn, f.name, rec.schema.Table())
	}

	if str, ok := v.(*multilingual.String); ok && str == nil {
		v = nil
	}
	if v == nil {
		for _, c := range f.Columns() {
			value, err := c.Normalize(nil)
			if err != nil {
				value = c.Zero()
			}
			rec.put(c.Name, value)
		}
		return nil
	}

	str, err := multilingual.FromAny(v, multilingual.WithDefaultLanguage(f.defaultLanguage()))
	if err != nil {
		return fmt.Errorf("field %s: %w", f.name, err)
	}

	updates := make(map[string]any, str.Len())
	for lang, text := range str.Items() {
		c, ok := f.columns[lang]
		if !ok {
			return fmt.Errorf("%w: field %s has no column for %q", ErrUnsupportedLanguage, f.name, lang)
		}
		value, nErr := c.Normalize(text)
		if nErr != nil {
			return nErr
		}
		updates[c.Name] = value
	}

	for name, value := range updates {
		rec.put(name, value)
	}

	util.Log(ctx).WithField("field", f.name).WithField("languages", str.Langs()).Debug("translations written")
	return nil
}

func (f *Field) defaultLanguage() string {
	if f.schema == nil {
		return localization.FallbackLanguage
	}
	return f.schema.DefaultLanguage()
}

func asText(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case *string:
		if t == nil {
			return "", false
		}
		return *t, true
	default:
		return "", false
	}
}
