package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pitabwire/i18nutils/localization"
)

const (
	ColumnID         = "id"
	ColumnCreatedAt  = "created_at"
	ColumnModifiedAt = "modified_at"

	idLength = 50
)

// Schema is a model definition: a table with its physical columns and the multilingual fields
// expanded into them. Columns and fields are added first, then the schema is finalized; a
// finalized schema is read-only and safe for concurrent use.
type Schema struct {
	table    string
	resolver *localization.Resolver

	columns   []*Column
	byName    map[string]*Column
	fields    []*Field
	fieldBy   map[string]*Field
	translate []string
	final     bool
}

// NewSchema starts a schema for table with the implicit id, created_at and modified_at columns.
func NewSchema(table string, resolver *localization.Resolver) *Schema {
	if resolver == nil {
		resolver = localization.NewResolverWithLanguages("")
	}
	s := &Schema{
		table:    table,
		resolver: resolver,
		byName:   map[string]*Column{},
		fieldBy:  map[string]*Field{},
	}
	s.columns = append(s.columns,
		&Column{Name: ColumnID, Kind: KindChar, MaxLength: idLength, Constraints: ConstraintPrimaryKey | ConstraintNotNull},
		&Column{Name: ColumnCreatedAt, Kind: KindTimestamp},
		&Column{Name: ColumnModifiedAt, Kind: KindTimestamp},
	)
	for _, c := range s.columns {
		s.byName[c.Name] = c
	}
	return s
}

// Option adds a column or field while defining a schema.
type Option func(*Schema) error

func WithColumn(name string, c *Column) Option {
	return func(s *Schema) error {
		return s.AddColumn(name, c)
	}
}

func WithField(name string, f *Field) Option {
	return func(s *Schema) error {
		return s.AddField(name, f)
	}
}

// WithTranslateFields registers names as translatable without a multilingual field, for tables
// whose per-language columns are declared one by one.
func WithTranslateFields(names ...string) Option {
	return func(s *Schema) error {
		for _, name := range names {
			if err := s.AddTranslateField(name); err != nil {
				return err
			}
		}
		return nil
	}
}

// Define builds and finalizes a schema.
func Define(table string, resolver *localization.Resolver, opts ...Option) (*Schema, error) {
	s := NewSchema(table, resolver)
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("table %s: %w", table, err)
		}
	}
	s.Finalize()
	return s, nil
}

// MustDefine is Define for package level declarations.
func MustDefine(table string, resolver *localization.Resolver, opts ...Option) *Schema {
	s, err := Define(table, resolver, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// AddColumn registers a physical column under name.
func (s *Schema) AddColumn(name string, c *Column) error {
	if s.final {
		return ErrSchemaFinalized
	}
	if name == "" || c == nil {
		return fmt.Errorf("%w: column needs a name and a definition", ErrInvalidValue)
	}
	if err := s.reserve(name); err != nil {
		return err
	}
	c = c.Clone()
	c.Name = name
	s.columns = append(s.columns, c)
	s.byName[name] = c
	return nil
}

// AddField expands f into one column per configured language and registers name as translatable.
func (s *Schema) AddField(name string, f *Field) error {
	if s.final {
		return ErrSchemaFinalized
	}
	if f == nil || name == "" {
		return fmt.Errorf("%w: field needs a name and a definition", ErrInvalidValue)
	}
	if f.schema != nil {
		return fmt.Errorf("%w: field %s is already part of table %s", ErrDuplicateColumn, f.name, f.schema.table)
	}
	if _, ok := s.fieldBy[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
	}
	if _, ok := s.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
	}

	cols := f.expand(name, s.resolver.Codes())
	for _, c := range cols {
		if err := s.reserve(c.Name); err != nil {
			return err
		}
	}

	f.schema = s
	for _, c := range cols {
		s.columns = append(s.columns, c)
		s.byName[c.Name] = c
	}
	s.fields = append(s.fields, f)
	s.fieldBy[name] = f
	s.markTranslatable(name)
	return nil
}

// AddTranslateField marks name as translatable for ExpandKwargs.
func (s *Schema) AddTranslateField(name string) error {
	if s.final {
		return ErrSchemaFinalized
	}
	if name == "" {
		return fmt.Errorf("%w: translatable field needs a name", ErrInvalidValue)
	}
	s.markTranslatable(name)
	return nil
}

func (s *Schema) markTranslatable(name string) {
	if !slices.Contains(s.translate, name) {
		s.translate = append(s.translate, name)
	}
}

func (s *Schema) reserve(name string) error {
	if _, ok := s.byName[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
	}
	if _, ok := s.fieldBy[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, name)
	}
	return nil
}

// Finalize freezes the schema; later AddColumn and AddField calls fail.
func (s *Schema) Finalize() {
	s.final = true
}

func (s *Schema) IsFinalized() bool {
	return s.final
}

func (s *Schema) Table() string {
	return s.table
}

func (s *Schema) Resolver() *localization.Resolver {
	return s.resolver
}

func (s *Schema) DefaultLanguage() string {
	return s.resolver.DefaultLanguage()
}

func (s *Schema) Languages() []string {
	return s.resolver.Codes()
}

// Columns returns the physical columns in definition order.
func (s *Schema) Columns() []*Column {
	return slices.Clone(s.columns)
}

// ColumnNames returns the physical column names in definition order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		names = append(names, c.Name)
	}
	return names
}

func (s *Schema) Column(name string) (*Column, bool) {
	c, ok := s.byName[name]
	return c, ok
}

func (s *Schema) Field(name string) (*Field, bool) {
	f, ok := s.fieldBy[name]
	return f, ok
}

func (s *Schema) Fields() []*Field {
	return slices.Clone(s.fields)
}

// TranslateFields lists the logical names rewritten by ExpandKwargs.
func (s *Schema) TranslateFields() []string {
	return slices.Clone(s.translate)
}

func (s *Schema) IsTranslatable(name string) bool {
	return slices.Contains(s.translate, name)
}

// lookupError explains why key is not a column, distinguishing unconfigured languages of a
// translatable field from plain unknown names.
func (s *Schema) lookupError(key string) error {
	for _, name := range s.translate {
		if lang, ok := strings.CutPrefix(key, name+"_"); ok && lang != "" {
			return fmt.Errorf("%w: %q for field %s on table %s", ErrUnsupportedLanguage, lang, name, s.table)
		}
	}
	return fmt.Errorf("%w: %s on table %s", ErrUnknownColumn, key, s.table)
}
