package listquery

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// RowScanner consumes one row of the listing's result set
type RowScanner func(rows *sql.Rows) error

// Builder executes list queries for every resource module: one SELECT with
// equality filters, requested joins, validated sort and bounded
// pagination, plus one independent COUNT over the same filter set.
type Builder struct {
	db *sql.DB
}

// NewBuilder creates a builder over the shared connection pool
func NewBuilder(db *sql.DB) *Builder {
	return &Builder{db: db}
}

// List validates the spec against the contract, runs the count and select
// queries, feeds each result row to scan, and returns the page metadata.
//
// The two queries are not transactionally consistent with each other: a
// row inserted between them can skew the count by one. Acceptable for
// browse listings; do not reuse this for anything needing a strict
// snapshot.
func (b *Builder) List(ctx context.Context, c *Contract, spec *Spec, scan RowScanner) (PageMeta, error) {
	if err := c.validate(spec); err != nil {
		return PageMeta{}, err
	}
	spec.normalize()

	where, args := b.buildWhere(c, spec)

	count, err := b.count(ctx, c, where, args)
	if err != nil {
		return PageMeta{}, err
	}

	query := b.buildSelect(c, spec, where, len(args))
	args = append(args, spec.PageSize, spec.offset())

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return PageMeta{}, fmt.Errorf("failed to query %s: %w", c.Table, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return PageMeta{}, fmt.Errorf("failed to scan %s row: %w", c.Table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return PageMeta{}, fmt.Errorf("failed to iterate %s rows: %w", c.Table, err)
	}

	return NewPageMeta(spec, count), nil
}

// buildWhere renders the equality predicates in deterministic (sorted key)
// order so generated SQL is stable across runs
func (b *Builder) buildWhere(c *Contract, spec *Spec) (string, []any) {
	if len(spec.Filters) == 0 {
		return "", nil
	}

	names := make([]string, 0, len(spec.Filters))
	for name := range spec.Filters {
		names = append(names, name)
	}
	sort.Strings(names)

	predicates := make([]string, 0, len(names))
	args := make([]any, 0, len(names))
	for i, name := range names {
		predicates = append(predicates,
			fmt.Sprintf("%s.%s = $%d", c.Alias, c.FilterColumns[name], i+1))
		args = append(args, spec.Filters[name])
	}

	return " WHERE " + strings.Join(predicates, " AND "), args
}

func (b *Builder) buildSelect(c *Contract, spec *Spec, where string, argOffset int) string {
	columns := make([]string, 0, len(c.Columns))
	for _, col := range c.Columns {
		columns = append(columns, c.Alias+"."+col)
	}

	joins := ""
	for _, name := range spec.Relations {
		join := c.Relations[name]
		for _, col := range join.Columns {
			columns = append(columns, join.Alias+"."+col)
		}
		joins += fmt.Sprintf(" LEFT JOIN %s %s ON %s", join.Table, join.Alias, join.On)
	}

	s := c.sortFor(spec)
	direction := "ASC"
	if s.Desc {
		direction = "DESC"
	}

	return fmt.Sprintf("SELECT %s FROM %s %s%s%s ORDER BY %s.%s %s LIMIT $%d OFFSET $%d",
		strings.Join(columns, ", "),
		c.Table, c.Alias,
		joins,
		where,
		c.Alias, s.Column, direction,
		argOffset+1, argOffset+2,
	)
}

// count runs the total count over the same filter set, independent of
// pagination
func (b *Builder) count(ctx context.Context, c *Contract, where string, args []any) (int, error) {
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s %s%s", c.Table, c.Alias, where)

	var count int
	if err := b.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", c.Table, err)
	}
	return count, nil
}
