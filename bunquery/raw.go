package bunquery

import (
	"context"

	"github.com/goliatone/go-query-cache/cache"
	"github.com/goliatone/go-query-cache/querycache"
	"github.com/uptrace/bun"
)

// RawQuery is a hand written SQL statement treated as an aggregation. Its
// statement and arguments form the pipeline used for key derivation.
type RawQuery struct {
	db   bun.IDB
	desc cache.Descriptor
	sql  string
	args []any
}

var _ querycache.Query = (*RawQuery)(nil)

// Raw creates an aggregation for model from a SQL statement.
func Raw(db bun.IDB, model, sql string, args ...any) *RawQuery {
	return &RawQuery{
		db:   db,
		sql:  sql,
		args: args,
		desc: cache.Descriptor{
			Model: model,
			Op:    cache.OpAggregate,
			Pipeline: []map[string]any{
				{"$sql": sql, "$args": args},
			},
		},
	}
}

func (r *RawQuery) Describe() cache.Descriptor { return r.desc.Clone() }

// Execute runs the statement and returns its rows as documents.
func (r *RawQuery) Execute(ctx context.Context, _ cache.Descriptor) (any, error) {
	var rows []map[string]any
	if err := r.db.NewRaw(r.sql, r.args...).Scan(ctx, &rows); err != nil {
		return nil, err
	}
	docs := make([]querycache.Document, len(rows))
	for i, row := range rows {
		docs[i] = row
	}
	return docs, nil
}
