package quarry

import (
	"context"
	"database/sql"
	"reflect"

	"go.uber.org/zap"

	"github.com/quarrydb/quarry/codec"
	"github.com/quarrydb/quarry/query"
	"github.com/quarrydb/quarry/schema"
	"github.com/quarrydb/quarry/sqlgen"
	"github.com/quarrydb/quarry/typeinfo"
)

// Store sequences the core components against one database handle. It
// owns the schema cache, so tables derive once per type per store.
type Store struct {
	db       *sql.DB
	gen      sqlgen.Generator
	cache    *schema.Cache
	log      *zap.Logger
	dates    codec.DateFormat
	idColumn string
	idType   schema.ColumnType
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default swallows nothing because the
// store logs nothing above debug level.
func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

// WithDates sets the row representation for time values.
func WithDates(f codec.DateFormat) Option {
	return func(s *Store) { s.dates = f }
}

// WithIDColumn overrides the identifier column name and the storage
// type used when a model has no matching field.
func WithIDColumn(name string, t schema.ColumnType) Option {
	return func(s *Store) { s.idColumn = name; s.idType = t }
}

// WithCache shares a schema cache between stores.
func WithCache(c *schema.Cache) Option {
	return func(s *Store) { s.cache = c }
}

// NewStore creates a store over an open database handle.
func NewStore(db *sql.DB, dialect sqlgen.Dialect, opts ...Option) *Store {
	s := &Store{
		db:       db,
		gen:      sqlgen.Generator{Dialect: dialect},
		cache:    schema.NewCache(),
		log:      zap.NewNop(),
		idColumn: "id",
		idType:   schema.TypeInteger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the derived table for a model type, deriving it on
// first use.
func Table[T any](s *Store) (*schema.Table, error) {
	var model T
	t := reflect.TypeOf(model)
	name := typeinfo.TableNameFor(t)
	table, err := s.cache.GetTable(s.idColumn, s.idType, name, t)
	if err != nil {
		return nil, err
	}
	if table.PrimaryKey().Name == "" {
		return nil, &InternalError{Reason: "derived table " + name + " has no primary key"}
	}
	return table, nil
}

// CreateTable creates the model's table if it does not exist.
func CreateTable[T any](ctx context.Context, s *Store) error {
	table, err := Table[T](s)
	if err != nil {
		return err
	}
	stmt := s.gen.CreateTable(table)
	s.log.Debug("create table", zap.String("sql", stmt))
	_, err = s.db.ExecContext(ctx, stmt)
	return ConvertDBError(err)
}

// DropTable drops the model's table if it exists.
func DropTable[T any](ctx context.Context, s *Store) error {
	table, err := Table[T](s)
	if err != nil {
		return err
	}
	stmt := s.gen.DropTable(table)
	s.log.Debug("drop table", zap.String("sql", stmt))
	_, err = s.db.ExecContext(ctx, stmt)
	return ConvertDBError(err)
}

// Save inserts a model and returns its identifier. When the identifier
// column auto-assigns and the instance left it unset, the store reads
// the assigned value back; an explicitly set identifier is written
// as given.
func Save[T any](ctx context.Context, s *Store, model T) (Identifier, error) {
	table, err := Table[T](s)
	if err != nil {
		return Identifier{}, err
	}

	enc := codec.Encoder{Dates: s.dates}
	row, err := enc.Encode(model)
	if err != nil {
		return Identifier{}, err
	}
	row = renameCell(row, "id", s.idColumn)

	pk := table.PrimaryKey()
	supplied, hasID := row.Get(pk.Name)

	if hasID {
		stmt, args := s.gen.Insert(table, row)
		s.log.Debug("insert", zap.String("sql", stmt))
		if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
			return Identifier{}, ConvertDBError(err)
		}
		return NewIdentifier(supplied)
	}

	if !pk.AutoIncrement {
		// A mandatory identifier field means the caller owns id values.
		return Identifier{}, &codec.ValueMissingError{Column: pk.Name}
	}

	if s.gen.Dialect == sqlgen.Postgres {
		stmt, args := s.gen.InsertReturning(table, row)
		s.log.Debug("insert", zap.String("sql", stmt))
		var raw any
		if err := s.db.QueryRowContext(ctx, stmt, args...).Scan(&raw); err != nil {
			return Identifier{}, ConvertDBError(err)
		}
		return NewIdentifier(raw)
	}

	stmt, args := s.gen.Insert(table, row)
	s.log.Debug("insert", zap.String("sql", stmt))
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return Identifier{}, ConvertDBError(err)
	}
	assigned, err := res.LastInsertId()
	if err != nil {
		return Identifier{}, ConvertDBError(err)
	}
	return NewIdentifier(assigned)
}

// Find loads the record with the given identifier.
func Find[T any](ctx context.Context, s *Store, id any) (T, error) {
	var zero T
	table, err := Table[T](s)
	if err != nil {
		return zero, err
	}

	stmt := s.gen.SelectByID(table)
	s.log.Debug("select", zap.String("sql", stmt))
	rows, err := s.db.QueryContext(ctx, stmt, id)
	if err != nil {
		return zero, ConvertDBError(err)
	}
	records, err := scanRows(rows)
	if err != nil {
		return zero, ConvertDBError(err)
	}
	if len(records) == 0 {
		return zero, ErrNotFound
	}

	dec := codec.Decoder{Dates: s.dates, IDColumn: s.idColumn}
	return codec.Decode[T](dec, records[0])
}

// FindAll loads every record matching the query parameters. A nil
// params value loads the whole table.
func FindAll[T any](ctx context.Context, s *Store, params any) ([]T, error) {
	table, err := Table[T](s)
	if err != nil {
		return nil, err
	}

	compiled, err := query.Compiler{Dates: s.dates}.Compile(params, table)
	if err != nil {
		return nil, err
	}

	stmt, args := s.gen.Select(table, compiled)
	s.log.Debug("select", zap.String("sql", stmt), zap.Int("params", len(args)))
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, ConvertDBError(err)
	}
	records, err := scanRows(rows)
	if err != nil {
		return nil, ConvertDBError(err)
	}

	dec := codec.Decoder{Dates: s.dates, IDColumn: s.idColumn}
	return codec.DecodeAll[T](dec, records)
}

// Update rewrites the record with the given identifier from the model's
// current field values.
func Update[T any](ctx context.Context, s *Store, id any, model T) error {
	table, err := Table[T](s)
	if err != nil {
		return err
	}

	enc := codec.Encoder{Dates: s.dates}
	row, err := enc.Encode(model)
	if err != nil {
		return err
	}
	row = renameCell(row, "id", s.idColumn)

	stmt, args := s.gen.Update(table, row, id)
	s.log.Debug("update", zap.String("sql", stmt))
	res, err := s.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return ConvertDBError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return ConvertDBError(err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the record with the given identifier.
func Delete[T any](ctx context.Context, s *Store, id any) error {
	table, err := Table[T](s)
	if err != nil {
		return err
	}
	stmt := s.gen.DeleteByID(table)
	s.log.Debug("delete", zap.String("sql", stmt))
	_, err = s.db.ExecContext(ctx, stmt, id)
	return ConvertDBError(err)
}

// DeleteAll removes every record matching the query parameters. A nil
// params value empties the table.
func DeleteAll[T any](ctx context.Context, s *Store, params any) error {
	table, err := Table[T](s)
	if err != nil {
		return err
	}
	compiled, err := query.Compiler{Dates: s.dates}.Compile(params, table)
	if err != nil {
		return err
	}
	stmt, args := s.gen.Delete(table, compiled)
	s.log.Debug("delete", zap.String("sql", stmt))
	_, err = s.db.ExecContext(ctx, stmt, args...)
	return ConvertDBError(err)
}

// renameCell moves a model's canonical identifier cell to the table's
// identifier column name.
func renameCell(row codec.Row, from, to string) codec.Row {
	if from == to {
		return row
	}
	for i, c := range row {
		if c.Name == from {
			row[i].Name = to
			break
		}
	}
	return row
}

// scanRows drains a result set into name-value records, closing it.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		valuePtrs := make([]any, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			record[col] = values[i]
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
