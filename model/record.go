package model

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/rs/xid"

	"github.com/pitabwire/i18nutils/multilingual"
)

// Record is one instance of a schema, holding its physical column values.
type Record struct {
	schema  *Schema
	values  map[string]any
	changed map[string]bool
}

// New builds a record from constructor keywords. Translatable fields may be given as a
// mapping, a *multilingual.String or plain text; they are expanded with ExpandKwargs before the
// physical columns are assigned.
func (s *Schema) New(ctx context.Context, kwargs map[string]any) (*Record, error) {
	expanded, err := ExpandKwargs(ctx, s.translate, kwargs, s.DefaultLanguage())
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", s.table, err)
	}

	rec := s.blank()
	for _, key := range slices.Sorted(maps.Keys(expanded)) {
		if err = rec.Set(key, expanded[key]); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// Load wraps a stored row. Keys that are not columns of the schema are ignored.
func (s *Schema) Load(row map[string]any) *Record {
	rec := s.blank()
	for name, value := range row {
		if _, ok := s.byName[name]; ok {
			rec.values[name] = value
		}
	}
	return rec
}

func (s *Schema) blank() *Record {
	rec := &Record{schema: s, values: make(map[string]any, len(s.columns)), changed: map[string]bool{}}
	for _, c := range s.columns {
		rec.values[c.Name] = c.Zero()
	}
	return rec
}

func (r *Record) Schema() *Schema {
	return r.schema
}

// ID returns the primary key, or "" when none is assigned yet.
func (r *Record) ID() string {
	id, _ := asText(r.values[ColumnID])
	return id
}

// GenID assigns a new xid when the record has no id yet.
func (r *Record) GenID(_ context.Context) {
	if r.ID() != "" {
		return
	}
	r.put(ColumnID, xid.New().String())
}

// Get returns the value held for a physical column.
func (r *Record) Get(column string) (any, bool) {
	v, ok := r.values[column]
	return v, ok
}

// Set assigns a physical column after validating v against its definition.
func (r *Record) Set(column string, v any) error {
	c, ok := r.schema.byName[column]
	if !ok {
		return r.schema.lookupError(column)
	}
	value, err := c.Normalize(v)
	if err != nil {
		return err
	}
	r.put(column, value)
	return nil
}

func (r *Record) put(column string, v any) {
	r.values[column] = v
	r.changed[column] = true
}

// Translation reads a multilingual field.
func (r *Record) Translation(field string) (*multilingual.String, error) {
	f, ok := r.schema.fieldBy[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a multilingual field of %s", ErrUnknownColumn, field, r.schema.table)
	}
	return f.Get(r), nil
}

// SetTranslation writes a multilingual field, see Field.Set.
func (r *Record) SetTranslation(ctx context.Context, field string, v any) error {
	f, ok := r.schema.fieldBy[field]
	if !ok {
		return fmt.Errorf("%w: %s is not a multilingual field of %s", ErrUnknownColumn, field, r.schema.table)
	}
	return f.Set(ctx, r, v)
}

// Text resolves a multilingual field for the language active on ctx.
func (r *Record) Text(ctx context.Context, field string) string {
	str, err := r.Translation(field)
	if err != nil {
		return ""
	}
	return str.Text(ctx)
}

// Values returns a copy of all column values.
func (r *Record) Values() map[string]any {
	return maps.Clone(r.values)
}

// Changed lists the columns assigned since the record was built or loaded, sorted.
func (r *Record) Changed() []string {
	return slices.Sorted(maps.Keys(r.changed))
}

// ChangedValues returns the values of the changed columns.
func (r *Record) ChangedValues() map[string]any {
	out := make(map[string]any, len(r.changed))
	for name := range r.changed {
		out[name] = r.values[name]
	}
	return out
}

// MarkClean forgets the changed set, after the record was persisted.
func (r *Record) MarkClean() {
	clear(r.changed)
}
