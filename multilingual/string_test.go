package multilingual_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/pitabwire/i18nutils/localization"
	"github.com/pitabwire/i18nutils/multilingual"
)

type StringSuite struct {
	suite.Suite
}

func TestStringSuite(t *testing.T) {
	suite.Run(t, new(StringSuite))
}

func collect(s *multilingual.String) [][2]string {
	var pairs [][2]string
	for lang, text := range s.Items() {
		pairs = append(pairs, [2]string{lang, text})
	}
	return pairs
}

func (s *StringSuite) TestPlainText() {
	for _, text := range []string{"", "Hello", "Grüß Gott", "  spaced  "} {
		str := multilingual.New(multilingual.PlainText(text))
		s.Equal(text, str.Trans(localization.FallbackLanguage))
		s.Equal([]string{"en"}, str.Langs())
	}

	str := multilingual.New(multilingual.PlainText("Bonjour"), multilingual.WithDefaultLanguage("fr"))
	s.Equal("fr", str.DefaultLanguage())
	s.Equal([]string{"fr"}, str.Langs())
	s.Equal("Bonjour", str.DefaultTrans())
}

func (s *StringSuite) TestTranslationsAreCopied() {
	m := multilingual.Translations{"fr": "Bonjour", "en": "Hello"}
	str := multilingual.New(m)

	s.Equal([][2]string{{"en", "Hello"}, {"fr", "Bonjour"}}, collect(str))

	m["en"] = "changed"
	s.Equal("Hello", str.Trans("en"))

	// re-iterable
	s.Equal(collect(str), collect(str))
}

func (s *StringSuite) TestItemsKeepInsertionOrder() {
	str := multilingual.New(multilingual.Translations{})
	str.SetTrans("fr", "Bonjour")
	str.SetTrans("en", "Hello")
	str.SetTrans("de", "Hallo")
	str.SetTrans("fr", "Salut")

	s.Equal([]string{"fr", "en", "de"}, str.Langs())
	s.Equal([][2]string{{"fr", "Salut"}, {"en", "Hello"}, {"de", "Hallo"}}, collect(str))
	s.Equal(map[string]string{"fr": "Salut", "en": "Hello", "de": "Hallo"}, str.Map())
	s.Equal(3, str.Len())
}

func (s *StringSuite) TestTransFallbacks() {
	str := multilingual.New(multilingual.Translations{"en": "Hello", "fr": "Bonjour"})

	testCases := []struct {
		lang string
		want string
	}{
		{lang: "en", want: "Hello"},
		{lang: "fr", want: "Bonjour"},
		{lang: "fr-CA", want: "Bonjour"},
		{lang: "de", want: "Hello"},
		{lang: "", want: "Hello"},
		{lang: "zz-ZZ-x", want: "Hello"},
	}
	for _, tc := range testCases {
		s.Run(tc.lang, func() {
			s.Equal(tc.want, str.Trans(tc.lang))
		})
	}

	noDefault := multilingual.New(multilingual.Translations{"fr": "Bonjour"})
	s.Empty(noDefault.Trans("de"))
	s.Empty(noDefault.DefaultTrans())

	var nilString *multilingual.String
	s.Empty(nilString.Trans("en"))
	s.True(nilString.IsEmpty())
}

func (s *StringSuite) TestTextUsesActiveLanguage() {
	str := multilingual.New(multilingual.Translations{"en": "Hello", "fr": "Bonjour"})

	s.Equal("Hello", str.Text(context.Background()))
	s.Equal("Bonjour", str.Text(localization.WithLanguage(context.Background(), "fr")))
	s.Equal("Hello", str.Text(localization.WithLanguage(context.Background(), "de")))
	s.Equal("fr", str.Lang(localization.WithLanguage(context.Background(), "fr")))
	s.Equal("en", str.Lang(context.Background()))
	s.Equal("Hello", str.String())
}

func (s *StringSuite) TestAdd() {
	a := multilingual.New(multilingual.Translations{"en": "Hello", "fr": "Bonjour"})
	b := multilingual.New(multilingual.Translations{"en": " John", "fr": " Jean"})

	sum := a.Add(b)
	s.Equal("Hello John", sum.Trans("en"))
	s.Equal("Bonjour Jean", sum.Trans("fr"))
	s.Equal(a.DefaultLanguage(), sum.DefaultLanguage())

	// languages missing on one side resolve through its default
	c := multilingual.New(multilingual.Translations{"en": " World", "de": " Welt"})
	sum = a.Add(c)
	s.Equal([]string{"en", "fr", "de"}, sum.Langs())
	s.Equal("Bonjour World", sum.Trans("fr"))
	s.Equal("Hello Welt", sum.Trans("de"))

	// operands are not mutated
	s.Equal("Hello", a.Trans("en"))
	s.Equal(" John", b.Trans("en"))
}

func (s *StringSuite) TestAddText() {
	a := multilingual.New(multilingual.Translations{"en": "Hello", "fr": "Bonjour"})

	right := a.AddText("!")
	s.Equal("Hello!", right.Trans("en"))
	s.Equal("Bonjour!", right.Trans("fr"))

	left := a.PrependText("> ")
	s.Equal("> Hello", left.Trans("en"))
	s.Equal("> Bonjour", left.Trans("fr"))
	s.Equal([]string{"en", "fr"}, left.Langs())
}

func (s *StringSuite) TestFromAny() {
	testCases := []struct {
		name    string
		input   any
		want    map[string]string
		wantErr bool
	}{
		{name: "string", input: "Hello", want: map[string]string{"en": "Hello"}},
		{name: "map", input: map[string]string{"fr": "Bonjour"}, want: map[string]string{"fr": "Bonjour"}},
		{name: "any map", input: map[string]any{"fr": "Bonjour"}, want: map[string]string{"fr": "Bonjour"}},
		{name: "plain text", input: multilingual.PlainText("Hi"), want: map[string]string{"en": "Hi"}},
		{
			name:  "multilingual",
			input: multilingual.New(multilingual.Translations{"en": "Hi"}),
			want:  map[string]string{"en": "Hi"},
		},
		{name: "any map with number", input: map[string]any{"fr": 1}, wantErr: true},
		{name: "int", input: 123, wantErr: true},
		{name: "nil", input: nil, wantErr: true},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			got, err := multilingual.FromAny(tc.input)
			if tc.wantErr {
				s.Require().ErrorIs(err, multilingual.ErrUnsupportedValue)
				return
			}
			s.Require().NoError(err)
			s.Equal(tc.want, got.Map())
		})
	}
}

func (s *StringSuite) TestCopyKeepsDefaultLanguage() {
	orig := multilingual.New(multilingual.PlainText("Bonjour"), multilingual.WithDefaultLanguage("fr"))
	cp := multilingual.New(orig)
	s.True(orig.Equal(cp))
	s.Equal("fr", cp.DefaultLanguage())

	cp.SetTrans("en", "Hello")
	s.False(orig.Equal(cp))
	s.Equal([]string{"fr"}, orig.Langs())
}

func (s *StringSuite) TestJSON() {
	str := multilingual.New(multilingual.Translations{})
	str.SetTrans("fr", "Bonjour")
	str.SetTrans("en", "Hello \"you\"")

	data, err := json.Marshal(str)
	s.Require().NoError(err)
	s.JSONEq(`{"fr":"Bonjour","en":"Hello \"you\""}`, string(data))
	s.Equal(`{"fr":"Bonjour","en":"Hello \"you\""}`, string(data))

	decoded := multilingual.New(multilingual.Translations{})
	s.Require().NoError(json.Unmarshal(data, decoded))
	s.Equal([]string{"fr", "en"}, decoded.Langs())
	s.True(str.Equal(decoded))

	plain := multilingual.New(multilingual.Translations{}, multilingual.WithDefaultLanguage("fr"))
	s.Require().NoError(json.Unmarshal([]byte(`"Salut"`), plain))
	s.Equal(map[string]string{"fr": "Salut"}, plain.Map())

	bad := multilingual.New(multilingual.Translations{})
	s.Require().Error(json.Unmarshal([]byte(`{"en":1}`), bad))
	s.Require().ErrorIs(json.Unmarshal([]byte(`[1]`), bad), multilingual.ErrUnsupportedValue)
}

func (s *StringSuite) TestSQLValueAndScan() {
	str := multilingual.New(multilingual.Translations{"en": "Hello", "fr": "Bonjour"})

	value, err := str.Value()
	s.Require().NoError(err)

	scanned := multilingual.New(multilingual.Translations{})
	s.Require().NoError(scanned.Scan(value))
	s.True(str.Equal(scanned))

	s.Require().NoError(scanned.Scan(`{"de":"Hallo"}`))
	s.Equal(map[string]string{"de": "Hallo"}, scanned.Map())

	s.Require().NoError(scanned.Scan(nil))
	s.True(scanned.IsEmpty())

	s.Require().Error(scanned.Scan(42))

	var nilString *multilingual.String
	value, err = nilString.Value()
	s.Require().NoError(err)
	s.Nil(value)
}

func (s *StringSuite) TestProtoStruct() {
	str := multilingual.New(multilingual.Translations{"en": "Hello", "fr": "Bonjour"})

	pb := str.ToProtoStruct()
	s.Len(pb.GetFields(), 2)
	s.Equal("Bonjour", pb.GetFields()["fr"].GetStringValue())

	back, err := multilingual.FromProtoStruct(pb)
	s.Require().NoError(err)
	s.True(str.Equal(back))

	_, err = multilingual.FromProtoStruct(&structpb.Struct{Fields: map[string]*structpb.Value{
		"en": structpb.NewNumberValue(1),
	}})
	s.Require().ErrorIs(err, multilingual.ErrUnsupportedValue)
}
