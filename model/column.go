package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Kind is the storage kind of a column.
type Kind int

const (
	KindChar Kind = iota
	KindText
	KindSlug
	KindInteger
	KindBoolean
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindChar:
		return "char"
	case KindText:
		return "text"
	case KindSlug:
		return "slug"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindTimestamp:
		return "timestamp"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Constraint is a bitmask of column-level constraints.
type Constraint int

const ConstraintNone Constraint = 0

const (
	ConstraintPrimaryKey Constraint = 1 << iota
	ConstraintUnique
	ConstraintNotNull
)

const defaultSlugLength = 50

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Column describes one physical column. Columns are used as templates by Field, which clones them once per
// configured language.
type Column struct {
	Name        string
	Kind        Kind
	MaxLength   int
	Constraints Constraint
	VerboseName string
	// AutoSlug slugifies text written to a slug column instead of rejecting it.
	AutoSlug bool
}

func Char(maxLength int) *Column {
	return &Column{Kind: KindChar, MaxLength: maxLength}
}

func Text() *Column {
	return &Column{Kind: KindText}
}

func Slug(maxLength int) *Column {
	if maxLength <= 0 {
		maxLength = defaultSlugLength
	}
	return &Column{Kind: KindSlug, MaxLength: maxLength}
}

func Integer() *Column {
	return &Column{Kind: KindInteger}
}

func Boolean() *Column {
	return &Column{Kind: KindBoolean}
}

func Timestamp() *Column {
	return &Column{Kind: KindTimestamp}
}

func (c *Column) NotNull() *Column {
	c.Constraints |= ConstraintNotNull
	return c
}

func (c *Column) Unique() *Column {
	c.Constraints |= ConstraintUnique
	return c
}

func (c *Column) PrimaryKey() *Column {
	c.Constraints |= ConstraintPrimaryKey | ConstraintNotNull
	return c
}

func (c *Column) Verbose(name string) *Column {
	c.VerboseName = name
	return c
}

func (c *Column) Slugified() *Column {
	c.AutoSlug = true
	return c
}

func (c *Column) Has(constraint Constraint) bool {
	return c.Constraints&constraint == constraint
}

// IsText reports whether the column stores text.
func (c *Column) IsText() bool {
	return c.Kind == KindChar || c.Kind == KindText || c.Kind == KindSlug
}

// Clone copies the column definition including all constraints.
func (c *Column) Clone() *Column {
	cp := *c
	return &cp
}

// Zero is the value a new record holds for the column.
func (c *Column) Zero() any {
	if !c.Has(ConstraintNotNull) {
		return nil
	}
	switch c.Kind {
	case KindChar, KindText, KindSlug:
		return ""
	case KindInteger:
		return int64(0)
	case KindBoolean:
		return false
	default:
		return nil
	}
}

// Normalize converts v to the representation stored for the column and validates it.
func (c *Column) Normalize(v any) (any, error) {
	if v == nil {
		if c.Has(ConstraintNotNull) {
			return nil, fmt.Errorf("%w: column %s may not be null", ErrInvalidValue, c.Name)
		}
		return nil, nil
	}

	switch c.Kind {
	case KindChar, KindText, KindSlug:
		text, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%w: column %s expects text, got %T", ErrInvalidValue, c.Name, v)
		}
		return c.normalizeText(text)
	case KindInteger:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		}
	case KindBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case KindTimestamp:
		if t, ok := v.(time.Time); ok {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: column %s of kind %s cannot hold %T", ErrInvalidValue, c.Name, c.Kind, v)
}

func (c *Column) normalizeText(text string) (string, error) {
	if c.Kind == KindSlug && text != "" {
		if c.AutoSlug {
			text = Slugify(text)
		}
		if !slugPattern.MatchString(text) {
			return "", fmt.Errorf("%w: column %s: %q is not a valid slug", ErrInvalidValue, c.Name, text)
		}
	}
	if c.MaxLength > 0 && utf8.RuneCountInString(text) > c.MaxLength {
		return "", fmt.Errorf("%w: column %s: text longer than %d characters", ErrInvalidValue, c.Name, c.MaxLength)
	}
	return text, nil
}

// DataType returns the column type for the dialect behind db.
func (c *Column) DataType(db *gorm.DB) string {
	field := &schema.Field{Name: c.Name, DBName: c.Name}
	switch c.Kind {
	case KindChar, KindSlug:
		field.DataType = schema.String
		field.Size = c.MaxLength
	case KindText:
		field.DataType = schema.String
	case KindInteger:
		field.DataType = schema.Int
		field.Size = 64
	case KindBoolean:
		field.DataType = schema.Bool
	case KindTimestamp:
		field.DataType = schema.Time
	}
	return db.Dialector.DataTypeOf(field)
}

// Definition renders the column type and constraints for DDL, without the column name.
func (c *Column) Definition(db *gorm.DB) string {
	parts := []string{c.DataType(db)}
	if c.Has(ConstraintNotNull) {
		parts = append(parts, "NOT NULL")
	}
	if c.Has(ConstraintPrimaryKey) {
		parts = append(parts, "PRIMARY KEY")
	} else if c.Has(ConstraintUnique) {
		parts = append(parts, "UNIQUE")
	}
	return strings.Join(parts, " ")
}

var (
	slugInvalid     = regexp.MustCompile(`[^a-z0-9-]+`)
	slugHyphens     = regexp.MustCompile(`-{2,}`)
	slugSeparators  = regexp.MustCompile(`[\s_]+`)
	removeDiacritic = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify converts text to a lowercase ASCII slug, dropping accents.
func Slugify(text string) string {
	result, _, err := transform.String(removeDiacritic, text)
	if err != nil {
		result = text
	}

	result = strings.ToLower(result)
	result = slugSeparators.ReplaceAllString(result, "-")
	result = slugInvalid.ReplaceAllString(result, "")
	result = slugHyphens.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}
