package datastore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/pitabwire/util"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pitabwire/i18nutils/data"
	"github.com/pitabwire/i18nutils/datastore/pool"
	"github.com/pitabwire/i18nutils/model"
	"github.com/pitabwire/i18nutils/telemetry"
)

const instrumentationName = "github.com/pitabwire/i18nutils/datastore"

// Repository stores the records of one schema.
type Repository struct {
	dbPool pool.Pool
	schema *model.Schema
	tracer telemetry.Tracer
}

func NewRepository(dbPool pool.Pool, schema *model.Schema) *Repository {
	return &Repository{dbPool: dbPool, schema: schema, tracer: telemetry.NewTracer(instrumentationName)}
}

//nolint:spancheck // the span is ended by the caller
func (r *Repository) start(ctx context.Context, operation string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, operation, trace.WithAttributes(telemetry.AttrTableKey.String(r.schema.Table())))
}

func (r *Repository) Svc() pool.Pool {
	return r.dbPool
}

func (r *Repository) Schema() *model.Schema {
	return r.schema
}

func (r *Repository) db(ctx context.Context, readOnly bool) (*gorm.DB, error) {
	if r.dbPool == nil {
		return nil, pool.ErrNoDatabase
	}
	db := r.dbPool.DB(ctx, readOnly)
	if db == nil {
		return nil, pool.ErrNoDatabase
	}
	return db, nil
}

func (r *Repository) table(db *gorm.DB) *gorm.DB {
	return db.Table(r.schema.Table())
}

// validateColumn checks if a column name is safe to use in queries.
func (r *Repository) validateColumn(column string) error {
	if _, ok := r.schema.Column(column); !ok {
		return fmt.Errorf("%w: %s on table %s", model.ErrUnknownColumn, column, r.schema.Table())
	}
	return nil
}

func (r *Repository) validateID(id string) error {
	if !data.ValidXID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Migrate creates the table when missing and otherwise adds the columns it lacks, which
// happens when languages are added to the configuration.
func (r *Repository) Migrate(ctx context.Context) (err error) {
	ctx, span := r.start(ctx, "Migrate")
	defer func() { r.tracer.End(ctx, span, err) }()
	return r.migrate(ctx)
}

func (r *Repository) migrate(ctx context.Context) error {
	db, err := r.db(ctx, false)
	if err != nil {
		return err
	}

	log := util.Log(ctx).WithField("table", r.schema.Table())
	migrator := db.Migrator()

	if !migrator.HasTable(r.schema.Table()) {
		query, vars := createTableSQL(db, r.schema)
		err = db.Exec(query, vars...).Error
		if err != nil && !isRelationAlreadyExistsErr(err) {
			log.WithError(err).Error("could not create table")
			return err
		}
		log.Info("table created")
		return nil
	}

	for _, c := range r.schema.Columns() {
		if migrator.HasColumn(r.schema.Table(), c.Name) {
			continue
		}
		query, vars := addColumnSQL(db, r.schema, c)
		err = db.Exec(query, vars...).Error
		if err != nil && !isRelationAlreadyExistsErr(err) {
			log.WithError(err).WithField("column", c.Name).Error("could not add column")
			return err
		}
		log.WithField("column", c.Name).Info("column added")
	}
	return nil
}

func createTableSQL(db *gorm.DB, s *model.Schema) (string, []any) {
	columns := s.Columns()
	definitions := make([]string, 0, len(columns))
	vars := make([]any, 0, len(columns)+1)

	vars = append(vars, clause.Table{Name: s.Table()})
	for _, c := range columns {
		definitions = append(definitions, "? "+c.Definition(db))
		vars = append(vars, clause.Column{Name: c.Name})
	}
	return "CREATE TABLE IF NOT EXISTS ? (" + strings.Join(definitions, ", ") + ")", vars
}

func addColumnSQL(db *gorm.DB, s *model.Schema, c *model.Column) (string, []any) {
	definition := c.Definition(db)
	// existing rows need a value for NOT NULL columns
	switch c.Zero().(type) {
	case string:
		definition += " DEFAULT ''"
	case int64:
		definition += " DEFAULT 0"
	case bool:
		definition += " DEFAULT false"
	}
	return "ALTER TABLE ? ADD COLUMN IF NOT EXISTS ? " + definition,
		[]any{clause.Table{Name: s.Table()}, clause.Column{Name: c.Name}}
}

// Create inserts rec, assigning its id and timestamps.
func (r *Repository) Create(ctx context.Context, rec *model.Record) (err error) {
	ctx, span := r.start(ctx, "Create")
	defer func() { r.tracer.End(ctx, span, err) }()
	return r.create(ctx, rec)
}

func (r *Repository) create(ctx context.Context, rec *model.Record) error {
	if rec.Schema() != r.schema {
		return fmt.Errorf("%w: record is not of table %s", model.ErrUnknownColumn, r.schema.Table())
	}

	rec.GenID(ctx)
	if err := r.validateID(rec.ID()); err != nil {
		return err
	}

	now := time.Now().UTC()
	if v, _ := rec.Get(model.ColumnCreatedAt); v == nil {
		if err := rec.Set(model.ColumnCreatedAt, now); err != nil {
			return err
		}
	}
	if err := rec.Set(model.ColumnModifiedAt, now); err != nil {
		return err
	}

	db, err := r.db(ctx, false)
	if err != nil {
		return err
	}
	if err = r.table(db).Create(rec.Values()).Error; err != nil {
		return err
	}
	rec.MarkClean()
	return nil
}

// GetByID loads one record.
func (r *Repository) GetByID(ctx context.Context, id string) (*model.Record, error) {
	if err := r.validateID(id); err != nil {
		return nil, err
	}

	db, err := r.db(ctx, true)
	if err != nil {
		return nil, err
	}

	row := map[string]any{}
	err = r.table(db).Where(clause.Eq{Column: clause.Column{Name: model.ColumnID}, Value: id}).Take(&row).Error
	if err != nil {
		return nil, err
	}
	if len(row) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.schema.Load(row), nil
}

// GetAllBy lists records whose physical columns equal the given properties, oldest first.
func (r *Repository) GetAllBy(
	ctx context.Context,
	properties map[string]any,
	offset, limit int,
) ([]*model.Record, error) {
	for key := range properties {
		if err := r.validateColumn(key); err != nil {
			return nil, err
		}
	}

	db, err := r.db(ctx, true)
	if err != nil {
		return nil, err
	}

	query := r.table(db).Order(model.ColumnCreatedAt).Order(model.ColumnID).Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if len(properties) > 0 {
		query = query.Where(properties)
	}

	var rows []map[string]any
	if err = query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.load(rows), nil
}

// CountBy counts records whose physical columns equal the given properties.
func (r *Repository) CountBy(ctx context.Context, properties map[string]any) (int64, error) {
	for key := range properties {
		if err := r.validateColumn(key); err != nil {
			return 0, err
		}
	}

	db, err := r.db(ctx, true)
	if err != nil {
		return 0, err
	}

	var count int64
	query := r.table(db)
	if len(properties) > 0 {
		query = query.Where(properties)
	}
	err = query.Count(&count).Error
	return count, err
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.CountBy(ctx, nil)
}

// Update writes the columns changed since rec was loaded or created.
func (r *Repository) Update(ctx context.Context, rec *model.Record) (err error) {
	ctx, span := r.start(ctx, "Update")
	defer func() { r.tracer.End(ctx, span, err) }()
	return r.update(ctx, rec)
}

func (r *Repository) update(ctx context.Context, rec *model.Record) error {
	if err := r.validateID(rec.ID()); err != nil {
		return err
	}

	changes := rec.ChangedValues()
	delete(changes, model.ColumnID)
	delete(changes, model.ColumnCreatedAt)
	if len(changes) == 0 {
		return nil
	}

	if err := rec.Set(model.ColumnModifiedAt, time.Now().UTC()); err != nil {
		return err
	}
	changes[model.ColumnModifiedAt], _ = rec.Get(model.ColumnModifiedAt)

	db, err := r.db(ctx, false)
	if err != nil {
		return err
	}

	result := r.table(db).Where(clause.Eq{Column: clause.Column{Name: model.ColumnID}, Value: rec.ID()}).Updates(changes)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 && !db.DryRun {
		return fmt.Errorf("update %s %s: %w", r.schema.Table(), rec.ID(), gorm.ErrRecordNotFound)
	}

	util.Log(ctx).WithField("table", r.schema.Table()).WithField("columns", slices.Sorted(maps.Keys(changes))).
		Debug("record updated")
	rec.MarkClean()
	return nil
}

// Delete removes a record by id.
func (r *Repository) Delete(ctx context.Context, id string) (err error) {
	ctx, span := r.start(ctx, "Delete")
	defer func() { r.tracer.End(ctx, span, err) }()
	return r.remove(ctx, id)
}

func (r *Repository) remove(ctx context.Context, id string) error {
	if err := r.validateID(id); err != nil {
		return err
	}

	db, err := r.db(ctx, false)
	if err != nil {
		return err
	}
	return db.Exec("DELETE FROM ? WHERE ? = ?",
		clause.Table{Name: r.schema.Table()}, clause.Column{Name: model.ColumnID}, id).Error
}

// Values returns one map per record holding the requested names. A multilingual field name
// yields its translations keyed by language code; other names are physical columns. Without
// names every column is returned, with the language columns of multilingual fields folded.
func (r *Repository) Values(ctx context.Context, names ...string) ([]map[string]any, error) {
	if len(names) == 0 {
		names = r.defaultValueNames()
	}

	var columns []clause.Column
	for _, name := range names {
		if field, ok := r.schema.Field(name); ok {
			for _, c := range field.Columns() {
				columns = append(columns, clause.Column{Name: c.Name})
			}
			continue
		}
		if err := r.validateColumn(name); err != nil {
			return nil, err
		}
		columns = append(columns, clause.Column{Name: name})
	}

	db, err := r.db(ctx, true)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	// quoted, language columns such as name_pt_BR are case sensitive
	err = r.table(db).Clauses(clause.Select{Columns: columns}).Order(model.ColumnCreatedAt).Order(model.ColumnID).Find(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		rec := r.schema.Load(row)
		values := make(map[string]any, len(names))
		for _, name := range names {
			if field, ok := r.schema.Field(name); ok {
				values[name] = field.Values(rec)
				continue
			}
			values[name], _ = rec.Get(name)
		}
		out = append(out, values)
	}
	return out, nil
}

func (r *Repository) defaultValueNames() []string {
	owner := map[string]string{}
	for _, f := range r.schema.Fields() {
		for _, c := range f.Columns() {
			owner[c.Name] = f.Name()
		}
	}

	var names []string
	seen := map[string]bool{}
	for _, c := range r.schema.Columns() {
		name := c.Name
		if fieldName, ok := owner[c.Name]; ok {
			name = fieldName
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

// FindByTranslation lists records whose translation of field into lang equals text.
func (r *Repository) FindByTranslation(ctx context.Context, field, lang, text string) ([]*model.Record, error) {
	column, err := r.translationColumn(field, lang)
	if err != nil {
		return nil, err
	}
	return r.GetAllBy(ctx, map[string]any{column.Name: text}, 0, 0)
}

// SearchTranslation lists records with a translation of field, in any language, containing
// query. Matching is case-insensitive.
func (r *Repository) SearchTranslation(ctx context.Context, field, query string, limit int) ([]*model.Record, error) {
	f, ok := r.schema.Field(field)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a multilingual field of %s", model.ErrUnknownColumn, field, r.schema.Table())
	}

	db, err := r.db(ctx, true)
	if err != nil {
		return nil, err
	}

	pattern := "%" + escapeLike(query) + "%"
	conditions := make([]string, 0, len(f.Languages()))
	args := make([]any, 0, 2*len(f.Languages()))
	for _, c := range f.Columns() {
		conditions = append(conditions, "? ILIKE ?")
		args = append(args, clause.Column{Name: c.Name}, pattern)
	}

	stmt := r.table(db).Where(strings.Join(conditions, " OR "), args...).
		Order(model.ColumnCreatedAt).Order(model.ColumnID)
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}

	var rows []map[string]any
	if err = stmt.Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.load(rows), nil
}

func (r *Repository) translationColumn(field, lang string) (*model.Column, error) {
	f, ok := r.schema.Field(field)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a multilingual field of %s", model.ErrUnknownColumn, field, r.schema.Table())
	}
	c, ok := f.Column(lang)
	if !ok {
		return nil, fmt.Errorf("%w: %q for field %s", model.ErrUnsupportedLanguage, lang, field)
	}
	return c, nil
}

func (r *Repository) load(rows []map[string]any) []*model.Record {
	records := make([]*model.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, r.schema.Load(row))
	}
	return records
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
