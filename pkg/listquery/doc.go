// Package listquery implements filtering, relation loading, sorting and
// pagination exactly once for every list endpoint in the back office.
//
// # Overview
//
// Each resource module supplies a Contract: the allow-listed filter
// names, relation joins, sort columns and default sort for its entity.
// Handlers build a Spec from the request (plus the server-injected tenant
// filter) and hand both to the shared Builder, which issues one SELECT and
// one COUNT against the storage pool and returns rows plus PageMeta.
//
//	spec := listquery.SpecFromRequest(r, contract)
//	spec.Filters, err = tenant.ApplyScope(identity, spec.Filters)
//	...
//	meta, err := builder.List(ctx, contract, spec, func(rows *sql.Rows) error {
//		var c Catalog
//		if err := rows.Scan(&c.ID, ...); err != nil {
//			return err
//		}
//		out = append(out, c)
//		return nil
//	})
//
// # Guarantees
//
//   - Filter and relation names are validated against the contract before
//     any SQL exists; unknown names are an InvalidQueryError naming the
//     field.
//   - Unknown sort keys fall back to the contract's default sort instead
//     of failing, keeping listings tolerant of stale client sort state.
//   - Page size defaults to 25 and is capped at 100; listings are never
//     unbounded.
//   - The count reflects all rows matching the filters regardless of page
//     size, so the same filters yield the same count at any page size.
//
// Storage errors propagate wrapped; the builder never retries.
package listquery
