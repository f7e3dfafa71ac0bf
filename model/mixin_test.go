package model_test

import (
	"context"

	"github.com/pitabwire/i18nutils/localization"
	"github.com/pitabwire/i18nutils/model"
	"github.com/pitabwire/i18nutils/multilingual"
)

func (s *ModelSuite) TestExpandKwargs() {
	ctx := context.Background()

	testCases := []struct {
		name         string
		translatable []string
		kwargs       map[string]any
		want         map[string]any
		wantErr      error
	}{
		{
			name:         "mapping",
			translatable: []string{"name"},
			kwargs: map[string]any{
				"name":  map[string]string{"en": "Laptop", "fr": "Ordinateur portable"},
				"price": 10,
			},
			want: map[string]any{"name_en": "Laptop", "name_fr": "Ordinateur portable", "price": 10},
		},
		{
			name:         "multilingual string",
			translatable: []string{"name"},
			kwargs:       map[string]any{"name": multilingual.New(multilingual.Translations{"pt-BR": "Caneta"})},
			want:         map[string]any{"name_pt_BR": "Caneta"},
		},
		{
			name:         "plain text goes to default language",
			translatable: []string{"name"},
			kwargs:       map[string]any{"name": "Laptop"},
			want:         map[string]any{"name_en": "Laptop"},
		},
		{
			name:         "absent field is a no-op",
			translatable: []string{"name"},
			kwargs:       map[string]any{"name_fr": "Ordinateur"},
			want:         map[string]any{"name_fr": "Ordinateur"},
		},
		{
			name:         "nil value is dropped",
			translatable: []string{"name"},
			kwargs:       map[string]any{"name": nil},
			want:         map[string]any{},
		},
		{
			name:         "no translatable fields",
			translatable: nil,
			kwargs:       map[string]any{"name": map[string]string{"en": "Laptop"}},
			want:         map[string]any{"name": map[string]string{"en": "Laptop"}},
		},
		{
			name:         "unsupported value",
			translatable: []string{"name"},
			kwargs:       map[string]any{"name": 12},
			wantErr:      multilingual.ErrUnsupportedValue,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			got, err := model.ExpandKwargs(ctx, tc.translatable, tc.kwargs, "en")
			if tc.wantErr != nil {
				s.Require().ErrorIs(err, tc.wantErr)
				return
			}
			s.Require().NoError(err)
			s.Equal(tc.want, got)
		})
	}
}

func (s *ModelSuite) TestExpandKwargsDoesNotModifyInput() {
	kwargs := map[string]any{"name": map[string]string{"en": "Laptop"}}
	_, err := model.ExpandKwargs(context.Background(), []string{"name"}, kwargs, "en")
	s.Require().NoError(err)
	s.Contains(kwargs, "name")
	s.NotContains(kwargs, "name_en")
}

func (s *ModelSuite) TestSchemaNew() {
	ctx := context.Background()
	schema := s.productSchema()

	rec, err := schema.New(ctx, map[string]any{
		"name":    map[string]string{"en": "Laptop", "fr": "Ordinateur portable"},
		"slug_en": "laptop",
		"price":   1200,
	})
	s.Require().NoError(err)

	values := rec.Values()
	s.Equal("Laptop", values["name_en"])
	s.Equal("Ordinateur portable", values["name_fr"])
	s.Equal("laptop", values["slug_en"])
	s.Equal(int64(1200), values["price"])
	s.NotContains(values, "name")
	s.Equal([]string{"name_en", "name_fr", "price", "slug_en"}, rec.Changed())

	rec.MarkClean()
	s.Empty(rec.Changed())
	s.Require().NoError(rec.Set("active", true))
	s.Equal(map[string]any{"active": true}, rec.ChangedValues())
}

func (s *ModelSuite) TestSchemaNewErrors() {
	ctx := context.Background()
	schema := s.productSchema()

	_, err := schema.New(ctx, map[string]any{"colour": "red"})
	s.Require().ErrorIs(err, model.ErrUnknownColumn)

	_, err = schema.New(ctx, map[string]any{"name": map[string]string{"de": "Rechner"}})
	s.Require().ErrorIs(err, model.ErrUnsupportedLanguage)

	_, err = schema.New(ctx, map[string]any{"price": "cheap"})
	s.Require().ErrorIs(err, model.ErrInvalidValue)
}

func (s *ModelSuite) TestLoadAndID() {
	ctx := context.Background()
	schema := s.productSchema()

	rec := schema.Load(map[string]any{"id": "abc", "name_fr": "Stylo", "unknown": 1})
	s.Equal("abc", rec.ID())
	s.Empty(rec.Changed())
	_, ok := rec.Get("unknown")
	s.False(ok)
	s.Equal("Stylo", rec.Text(localization.WithLanguage(ctx, "fr"), "name"))
	s.Empty(rec.Text(ctx, "missing"))

	fresh, err := schema.New(ctx, nil)
	s.Require().NoError(err)
	s.Empty(fresh.ID())
	fresh.GenID(ctx)
	s.NotEmpty(fresh.ID())
	id := fresh.ID()
	fresh.GenID(ctx)
	s.Equal(id, fresh.ID())
}
