// Package bunquery adapts bun select queries to the querycache.Query interface.
//
// Builders capture a query as a cache.Descriptor and rebuild the SQL from the
// descriptor they are asked to execute, so the interceptors can strip the
// projection before running it:
//
//	q := bunquery.Find[Account](db, bunquery.Conditions{"active": true}).
//		Sort("-created_at").
//		Limit(20)
//	accounts, err := querycache.All[Account](qc.Wrap(q).Cache(60).Exec(ctx))
//
// Conditions use column names. A value may be an operator map using $eq, $ne,
// $gt, $gte, $lt, $lte or $in. Lean builders return rows as documents keyed
// by column name; other builders return T values, which are cached through
// their json tags. Keep json names equal to column names so projections and
// identity fields line up in both modes.
package bunquery
