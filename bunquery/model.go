package bunquery

import (
	"github.com/goliatone/go-query-cache/querycache"
	"github.com/uptrace/bun"
)

// ModelFor returns a querycache model named after T's table, using the first
// primary key column as identity field.
func ModelFor[T any](db bun.IDB) *querycache.TypedModel[T] {
	table := tableFor[T](db)
	idField := querycache.DefaultIDField
	if len(table.PKs) > 0 {
		idField = table.PKs[0].Name
	}
	return querycache.NewModel[T](table.Name, querycache.WithIDField(idField))
}

// Register adds ModelFor[T] to registry and returns it.
func Register[T any](registry *querycache.Registry, db bun.IDB) *querycache.TypedModel[T] {
	m := ModelFor[T](db)
	registry.Register(m)
	return m
}
