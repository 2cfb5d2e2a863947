package listquery

import "fmt"

// Join describes one eagerly-loadable relation of an entity. Relations
// must be to-one (many-to-one or one-to-one): the builder paginates on raw
// rows, and a to-many join would duplicate them.
type Join struct {
	// Table is the joined table name
	Table string
	// Alias used for the joined table in SQL
	Alias string
	// On is the full join condition, e.g. "it.uuid = c.item_type_id"
	On string
	// Columns are the joined columns to select, unqualified
	Columns []string
}

// Sort is a sort column plus direction
type Sort struct {
	Column string
	Desc   bool
}

// Contract is the per-entity query contract every resource module supplies
// to the shared builder: which columns exist, which may be filtered or
// sorted on, which relations may be expanded, and how to sort by default.
// One Contract value per module, built once at startup.
type Contract struct {
	// Table and Alias name the root entity
	Table string
	Alias string
	// Columns are the root columns to select, unqualified
	Columns []string
	// FilterColumns maps public filter names to columns, e.g.
	// "companyId" -> "company_id". Only listed names are filterable.
	FilterColumns map[string]string
	// Relations maps public relation names to joins
	Relations map[string]Join
	// SortColumns maps public sort names to columns. Requests naming
	// anything else silently fall back to DefaultSort.
	SortColumns map[string]string
	// DefaultSort orders listings when no valid sort is requested
	DefaultSort Sort
}

// InvalidQueryError is a caller error: a filter or relation name unknown
// to the entity's contract. Reported before any SQL is built.
type InvalidQueryError struct {
	Kind  string // "filter" or "relation"
	Field string
}

func (e *InvalidQueryError) Error() string {
	return fmt.Sprintf("unknown %s field %q", e.Kind, e.Field)
}

// validate checks a spec's filters and relations against the contract
func (c *Contract) validate(spec *Spec) error {
	for name := range spec.Filters {
		if _, ok := c.FilterColumns[name]; !ok {
			return &InvalidQueryError{Kind: "filter", Field: name}
		}
	}
	for _, name := range spec.Relations {
		if _, ok := c.Relations[name]; !ok {
			return &InvalidQueryError{Kind: "relation", Field: name}
		}
	}
	return nil
}

// sortFor resolves the requested sort against the allow-list, falling back
// to the contract's default. Unknown sort keys degrade, they never fail.
func (c *Contract) sortFor(spec *Spec) Sort {
	if spec.SortBy == "" {
		return c.DefaultSort
	}
	column, ok := c.SortColumns[spec.SortBy]
	if !ok {
		return c.DefaultSort
	}
	return Sort{Column: column, Desc: spec.SortDesc}
}
