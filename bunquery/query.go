package bunquery

import (
	"context"
	"database/sql"
	"reflect"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/querycache"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// ErrUnsupportedOperator is returned when a condition uses an unknown operator.
var ErrUnsupportedOperator = errors.New("bunquery: unsupported condition operator")

// Conditions maps column names to values or operator maps.
type Conditions = map[string]any

var comparison = map[string]string{
	"$eq":  "=",
	"$ne":  "<>",
	"$gt":  ">",
	"$gte": ">=",
	"$lt":  "<",
	"$lte": "<=",
}

// Builder is a select query over the table of T.
type Builder[T any] struct {
	db   bun.IDB
	desc cache.Descriptor
}

var _ querycache.Query = (*Builder[struct{}])(nil)

func newBuilder[T any](db bun.IDB, op cache.Op, conditions []Conditions) *Builder[T] {
	merged := Conditions{}
	for _, c := range conditions {
		for k, v := range c {
			merged[k] = v
		}
	}
	return &Builder[T]{
		db: db,
		desc: cache.Descriptor{
			Model:      tableFor[T](db).Name,
			Op:         op,
			Conditions: merged,
		},
	}
}

// Find selects every row of T matching conditions.
func Find[T any](db bun.IDB, conditions ...Conditions) *Builder[T] {
	return newBuilder[T](db, cache.OpFind, conditions)
}

// FindOne selects the first row of T matching conditions. A missing row
// executes to a nil result.
func FindOne[T any](db bun.IDB, conditions ...Conditions) *Builder[T] {
	return newBuilder[T](db, cache.OpFindOne, conditions)
}

// CountOf counts rows of T matching conditions.
func CountOf[T any](db bun.IDB, conditions ...Conditions) *Builder[T] {
	return newBuilder[T](db, cache.OpCountDocuments, conditions)
}

// Where adds an equality or operator condition on column.
func (b *Builder[T]) Where(column string, value any) *Builder[T] {
	b.desc.Conditions[column] = value
	return b
}

// Sort appends sort columns. A leading "-" sorts descending.
func (b *Builder[T]) Sort(columns ...string) *Builder[T] {
	for _, col := range columns {
		if strings.HasPrefix(col, "-") {
			b.desc.Sort = append(b.desc.Sort, cache.SortField{Field: col[1:], Desc: true})
			continue
		}
		b.desc.Sort = append(b.desc.Sort, cache.SortField{Field: col})
	}
	return b
}

func (b *Builder[T]) Skip(n int) *Builder[T] {
	b.desc.Skip = n
	return b
}

func (b *Builder[T]) Limit(n int) *Builder[T] {
	b.desc.Limit = n
	return b
}

// Select restricts the returned columns. A leading "-" excludes a column.
func (b *Builder[T]) Select(columns ...string) *Builder[T] {
	if b.desc.Fields == nil {
		b.desc.Fields = cache.Projection{}
	}
	for _, col := range columns {
		if strings.HasPrefix(col, "-") {
			b.desc.Fields[col[1:]] = 0
			continue
		}
		b.desc.Fields[col] = 1
	}
	return b
}

// Lean returns rows as documents instead of T values.
func (b *Builder[T]) Lean() *Builder[T] {
	b.desc.Lean = true
	return b
}

// Count turns the query into a count of matching rows.
func (b *Builder[T]) Count() *Builder[T] {
	b.desc.Op = cache.OpCountDocuments
	return b
}

// Distinct turns the query into the list of distinct values of column.
func (b *Builder[T]) Distinct(column string) *Builder[T] {
	b.desc.Op = cache.OpDistinct
	b.desc.Distinct = column
	return b
}

// Option records an execution option. Options only take part in key derivation.
func (b *Builder[T]) Option(name string, value any) *Builder[T] {
	if b.desc.Options == nil {
		b.desc.Options = map[string]any{}
	}
	b.desc.Options[name] = value
	return b
}

// Describe implements querycache.Query.
func (b *Builder[T]) Describe() cache.Descriptor {
	return b.desc.Clone()
}

// Execute implements querycache.Query. The SQL is built from d.
func (b *Builder[T]) Execute(ctx context.Context, d cache.Descriptor) (any, error) {
	q, err := b.selectQuery(d)
	if err != nil {
		return nil, err
	}

	switch {
	case d.Op.IsCount():
		n, err := q.Count(ctx)
		if err != nil {
			return nil, err
		}
		return int64(n), nil

	case d.Op == cache.OpDistinct:
		var rows []map[string]any
		if err := q.Distinct().Column(d.Distinct).Scan(ctx, &rows); err != nil {
			return nil, err
		}
		values := make([]any, 0, len(rows))
		for _, row := range rows {
			values = append(values, row[d.Distinct])
		}
		return values, nil

	case d.Op == cache.OpFindOne:
		q = q.Limit(1)
		var err error
		var result any
		if d.Lean {
			row := map[string]any{}
			err = q.Scan(ctx, &row)
			result = querycache.Document(row)
		} else {
			var row T
			err = q.Scan(ctx, &row)
			result = row
		}
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return result, nil

	default:
		if d.Lean {
			var rows []map[string]any
			if err := q.Scan(ctx, &rows); err != nil {
				return nil, err
			}
			docs := make([]querycache.Document, len(rows))
			for i, row := range rows {
				docs[i] = row
			}
			return docs, nil
		}
		var rows []T
		if err := q.Scan(ctx, &rows); err != nil {
			return nil, err
		}
		return rows, nil
	}
}

func (b *Builder[T]) selectQuery(d cache.Descriptor) (*bun.SelectQuery, error) {
	q := b.db.NewSelect().Model((*T)(nil))

	q, err := applyConditions(q, d.Conditions)
	if err != nil {
		return nil, err
	}

	for _, s := range d.Sort {
		if s.Desc {
			q = q.OrderExpr("? DESC", bun.Ident(s.Field))
		} else {
			q = q.OrderExpr("? ASC", bun.Ident(s.Field))
		}
	}
	if d.Skip > 0 {
		q = q.Offset(d.Skip)
	}
	if d.Limit > 0 {
		q = q.Limit(d.Limit)
	}
	if cols := columns(tableFor[T](b.db), d.Fields); len(cols) > 0 && d.Op != cache.OpDistinct && !d.Op.IsCount() {
		q = q.Column(cols...)
	}
	return q, nil
}

func applyConditions(q *bun.SelectQuery, conditions map[string]any) (*bun.SelectQuery, error) {
	for _, column := range sortedKeys(conditions) {
		value := conditions[column]
		ops, ok := value.(map[string]any)
		if !ok {
			q = where(q, column, "$eq", value)
			continue
		}
		for _, op := range sortedKeys(ops) {
			if op != "$in" {
				if _, known := comparison[op]; !known {
					return nil, errors.Wrapf(ErrUnsupportedOperator, "%s on %s", op, column)
				}
			}
			q = where(q, column, op, ops[op])
		}
	}
	return q, nil
}

func where(q *bun.SelectQuery, column, op string, value any) *bun.SelectQuery {
	switch {
	case op == "$in":
		return q.Where("? IN (?)", bun.Ident(column), bun.In(value))
	case value == nil && op == "$eq":
		return q.Where("? IS NULL", bun.Ident(column))
	case value == nil && op == "$ne":
		return q.Where("? IS NOT NULL", bun.Ident(column))
	default:
		return q.Where("? "+comparison[op]+" ?", bun.Ident(column), value)
	}
}

// columns resolves a projection to the selected column list. Inclusion keeps
// the primary key unless it is excluded explicitly. Exclusion only projections
// select every other column of the table.
func columns(table *schema.Table, fields cache.Projection) []string {
	if len(fields) == 0 {
		return nil
	}
	if included := fields.Included(); len(included) > 0 {
		for _, pk := range table.PKs {
			if _, listed := fields[pk.Name]; !listed {
				included = append(included, pk.Name)
			}
		}
		sort.Strings(included)
		return included
	}
	var out []string
	for _, f := range table.Fields {
		if v, ok := fields[f.Name]; ok && v == 0 {
			continue
		}
		out = append(out, f.Name)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func tableFor[T any](db bun.IDB) *schema.Table {
	return db.Dialect().Tables().Get(reflect.TypeFor[T]())
}
