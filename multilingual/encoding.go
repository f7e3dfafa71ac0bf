package multilingual

import (
	"bytes"
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// bufferPool is used to minimize allocations for encoding.
//
//nolint:gochecknoglobals //optimization allows us to reuse byte buffers
var bufferPool = sync.Pool{
	New: func() any {
		return new(bytes.Buffer)
	},
}

// MarshalJSON encodes the translations as an object whose keys keep insertion order.
func (s *String) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}

	buf, _ := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	buf.WriteByte('{')
	i := 0
	for lang, text := range s.Items() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		key, err := json.Marshal(lang)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	return bytes.Clone(buf.Bytes()), nil
}

// UnmarshalJSON accepts either an object of translations or a plain JSON string, which is stored
// under the default language. Existing translations are replaced.
func (s *String) UnmarshalJSON(data []byte) error {
	defaultLanguage := s.DefaultLanguage()
	*s = String{data: map[string]string{}, defaultLanguage: defaultLanguage}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		s.SetTrans(defaultLanguage, text)
		return nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	tok, err := decoder.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: json %v", ErrUnsupportedValue, tok)
	}

	for decoder.More() {
		keyTok, err := decoder.Token()
		if err != nil {
			return err
		}
		lang, _ := keyTok.(string)

		var text string
		if err = decoder.Decode(&text); err != nil {
			return fmt.Errorf("%w: translation %q: %w", ErrUnsupportedValue, lang, err)
		}
		s.SetTrans(lang, text)
	}

	_, err = decoder.Token()
	return err
}

// Value implements the driver.Valuer interface for database serialization.
func (s *String) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil //nolint:nilnil //we don't need to error when there is nothing
	}
	return s.MarshalJSON()
}

// Scan implements the sql.Scanner interface for database deserialization.
func (s *String) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		return s.UnmarshalJSON(nil)
	case []byte:
		return s.UnmarshalJSON(v)
	case string:
		return s.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("multilingual: unsupported Scan type: %T", value)
	}
}

// GormDataType returns the common GORM data type.
func (s *String) GormDataType() string {
	return "multilingual"
}

// GormDBDataType returns the dialect-specific database column type.
func (s *String) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres":
		return "JSONB"
	case "mysql", "sqlite":
		return "JSON"
	case "sqlserver":
		return "NVARCHAR(MAX)"
	default:
		return ""
	}
}

// GormValue renders the value for the active dialect.
func (s *String) GormValue(_ context.Context, db *gorm.DB) clause.Expr {
	if s == nil {
		return clause.Expr{SQL: "?", Vars: []any{nil}}
	}

	data, err := s.MarshalJSON()
	if err != nil {
		return clause.Expr{SQL: "?", Vars: []any{nil}}
	}

	switch db.Dialector.Name() {
	case "mysql":
		return gorm.Expr("CAST(? AS JSON)", string(data))
	default:
		return gorm.Expr("?", string(data))
	}
}

// ToProtoStruct converts the translations into a structpb.Struct.
func (s *String) ToProtoStruct() *structpb.Struct {
	fields := make(map[string]*structpb.Value, s.Len())
	for lang, text := range s.Items() {
		fields[lang] = structpb.NewStringValue(text)
	}
	return &structpb.Struct{Fields: fields}
}

// FromProtoStruct builds a String from a structpb.Struct. Non string values are rejected.
func FromProtoStruct(st *structpb.Struct, opts ...Option) (*String, error) {
	t := Translations{}
	for lang, v := range st.GetFields() {
		str, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: translation %q is not a string", ErrUnsupportedValue, lang)
		}
		t[lang] = str.StringValue
	}
	return New(t, opts...), nil
}
