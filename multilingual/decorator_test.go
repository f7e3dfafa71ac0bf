package multilingual_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/pitabwire/i18nutils/localization"
	"github.com/pitabwire/i18nutils/multilingual"
)

type DecoratorSuite struct {
	suite.Suite
}

func TestDecoratorSuite(t *testing.T) {
	suite.Run(t, new(DecoratorSuite))
}

func greeting(_ context.Context, _ struct{}) multilingual.Value {
	return multilingual.Translations{"en": "Good morning", "fr": "Bonjour"}
}

func (s *DecoratorSuite) TestWrap() {
	wrapped := multilingual.Wrap(greeting)

	fr := localization.WithLanguage(context.Background(), "fr")
	s.Equal("Bonjour", wrapped(fr, struct{}{}))
	s.Equal("Good morning", wrapped(context.Background(), struct{}{}))
	s.Equal("Good morning", wrapped(localization.WithLanguage(context.Background(), "de"), struct{}{}))
}

func (s *DecoratorSuite) TestWrapWithFormatter() {
	wrapped := multilingual.WrapWith[struct{}](strings.ToUpper)(greeting)

	fr := localization.WithLanguage(context.Background(), "fr")
	s.Equal("BONJOUR", wrapped(fr, struct{}{}))
}

func (s *DecoratorSuite) TestWrapResultKinds() {
	testCases := []struct {
		name   string
		result multilingual.Value
		want   string
	}{
		{name: "plain text", result: multilingual.PlainText("Hi"), want: "Hi"},
		{
			name:   "multilingual used as is",
			result: multilingual.New(multilingual.PlainText("Salut"), multilingual.WithDefaultLanguage("fr")),
			want:   "Salut",
		},
		{name: "nil", result: nil, want: ""},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			wrapped := multilingual.Wrap(func(_ context.Context, name string) multilingual.Value {
				return tc.result
			})
			s.Equal(tc.want, wrapped(localization.WithLanguage(context.Background(), "es"), "x"))
		})
	}
}

func (s *DecoratorSuite) TestWrapPassesArguments() {
	hello := multilingual.WrapWith[string](strings.TrimSpace)(func(_ context.Context, name string) multilingual.Value {
		return multilingual.Translations{"en": "Hello " + name + " ", "fr": "Bonjour " + name + " "}
	})

	s.Equal("Bonjour Jean", hello(localization.WithLanguage(context.Background(), "fr"), "Jean"))
}

func (s *DecoratorSuite) TestCollect() {
	byLanguage := map[string]string{"en": "Good morning", "fr": "Bonjour"}
	collect := multilingual.Collect([]string{"en", "fr"}, func(ctx context.Context, _ int) string {
		return byLanguage[localization.ActiveLanguage(ctx)]
	}, nil)

	str := collect(context.Background(), 0)
	s.Equal([]string{"en", "fr"}, str.Langs())
	s.Equal("Bonjour", str.Trans("fr"))
	s.Equal("en", str.DefaultLanguage())
}

func (s *DecoratorSuite) TestCollectCollapsesIdenticalResults() {
	collect := multilingual.Collect([]string{"fr", "en"}, func(_ context.Context, n int) string {
		return strings.Repeat("x", n)
	}, strings.ToUpper)

	str := collect(context.Background(), 3)
	s.Equal([]string{"fr"}, str.Langs())
	s.Equal("fr", str.DefaultLanguage())
	s.Equal("XXX", str.Trans("en"))
}

func (s *DecoratorSuite) TestFromCatalog() {
	resolver := localization.NewResolverWithLanguages("en",
		localization.Language{Code: "en", Name: "English"},
		localization.Language{Code: "fr", Name: "Français"},
	)
	manager, err := localization.NewManager(resolver, "../localization/test_data")
	s.Require().NoError(err)

	str := multilingual.FromCatalog(context.Background(), manager, resolver.Codes(), "Welcome",
		map[string]any{"Name": "Ana"})
	s.Equal("Welcome Ana", str.Trans("en"))
	s.Equal("Bienvenue Ana", str.Trans("fr"))
	s.Equal("Bienvenue Ana", str.Text(localization.WithLanguage(context.Background(), "fr")))
}
