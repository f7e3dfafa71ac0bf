package model

import (
	"context"
	"fmt"
	"maps"

	"github.com/pitabwire/util"

	"github.com/pitabwire/i18nutils/multilingual"
)

// ExpandKwargs rewrites constructor keywords so that every translatable field given as a
// mapping, a *multilingual.String or plain text becomes one keyword per language, named
// AttrName(field, lang). Plain text goes to the default language only. The input map is not
// modified; keys not listed in translatable, including direct per-language keys, pass through.
func ExpandKwargs(
	ctx context.Context,
	translatable []string,
	kwargs map[string]any,
	defaultLanguage string,
) (map[string]any, error) {
	out := maps.Clone(kwargs)
	if out == nil {
		out = map[string]any{}
	}

	for _, name := range translatable {
		v, ok := out[name]
		if !ok {
			continue
		}
		delete(out, name)
		if v == nil {
			continue
		}

		str, err := multilingual.FromAny(v, multilingual.WithDefaultLanguage(defaultLanguage))
		if err != nil {
			return nil, fmt.Errorf("keyword %s: %w", name, err)
		}
		for lang, text := range str.Items() {
			out[AttrName(name, lang)] = text
		}

		util.Log(ctx).WithField("field", name).WithField("languages", str.Langs()).
			Debug("expanded translatable keyword")
	}
	return out, nil
}
