package multilingual

import (
	"context"

	"github.com/pitabwire/i18nutils/localization"
)

// Formatter post-processes resolved text.
type Formatter func(string) string

// Wrap turns fn, which produces translations, into a function returning the text for the
// language active on ctx.
func Wrap[A any](fn func(context.Context, A) Value) func(context.Context, A) string {
	return wrap(fn, nil)
}

// WrapWith is Wrap with a formatter applied to the resolved text.
func WrapWith[A any](formatter Formatter) func(func(context.Context, A) Value) func(context.Context, A) string {
	return func(fn func(context.Context, A) Value) func(context.Context, A) string {
		return wrap(fn, formatter)
	}
}

func wrap[A any](fn func(context.Context, A) Value, formatter Formatter) func(context.Context, A) string {
	return func(ctx context.Context, arg A) string {
		var s *String
		switch v := fn(ctx, arg).(type) {
		case *String:
			s = v
		case nil:
			s = New(PlainText(""))
		default:
			s = New(v)
		}

		text := s.Text(ctx)
		if formatter != nil {
			text = formatter(text)
		}
		return text
	}
}

// Collect evaluates fn once per language, with that language active on ctx, and gathers the
// results into a String whose default is the first language. When every language produced the
// same text the result collapses to that single default entry.
func Collect[A any](langs []string, fn func(context.Context, A) string, formatter Formatter) func(context.Context, A) *String {
	return func(ctx context.Context, arg A) *String {
		out := New(Translations{})
		if len(langs) > 0 {
			out.defaultLanguage = langs[0]
		}

		distinct := map[string]bool{}
		for _, lang := range langs {
			text := fn(localization.WithLanguage(ctx, lang), arg)
			if formatter != nil {
				text = formatter(text)
			}
			distinct[text] = true
			out.SetTrans(lang, text)
		}

		if len(distinct) == 1 {
			return New(PlainText(out.DefaultTrans()), WithDefaultLanguage(out.defaultLanguage))
		}
		return out
	}
}

// FromCatalog builds a String holding messageID translated into each language by the catalog.
func FromCatalog(
	ctx context.Context,
	manager localization.Manager,
	langs []string,
	messageID string,
	variables map[string]any,
) *String {
	translate := func(ctx context.Context, id string) string {
		return manager.TranslateWithMap(ctx, id, variables)
	}
	return Collect(langs, translate, nil)(ctx, messageID)
}
