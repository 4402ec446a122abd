// Package database builds the parameterized SELECT statements used by the
// audit repository.
package database

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ConditionType is the SQL operator a Condition applies.
type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThan        ConditionType = ">"
	LessThan           ConditionType = "<"
	GreaterThanOrEqual ConditionType = ">="
	LessThanOrEqual    ConditionType = "<="
	ILike              ConditionType = "ILIKE"
	// In matches any element of a slice value, rendered as "= ANY($n)".
	In ConditionType = "IN"
)

// Condition is one predicate of a WHERE clause. Conditions are ANDed.
type Condition struct {
	Field string
	Type  ConditionType
	Value any
}

// WhereCond builds a Condition.
func WhereCond(field string, condType ConditionType, value any) Condition {
	return Condition{Field: field, Type: condType, Value: value}
}

// ListQueryOptions describes a single-table list or count query.
type ListQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	OrderBy    string
	OrderDir   string
	// Limit and Offset are omitted when negative.
	Limit  int
	Offset int
}

// ListQueryOption mutates ListQueryOptions.
type ListQueryOption func(*ListQueryOptions)

// NewListQueryOptions returns options for table with opts applied.
func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	o := &ListQueryOptions{Table: table, Limit: -1, Offset: -1}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithColumns sets the selected columns. None selects "*".
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) { o.Columns = cols }
}

// WithConditions replaces the WHERE conditions.
func WithConditions(conds ...Condition) ListQueryOption {
	return func(o *ListQueryOptions) { o.Conditions = conds }
}

// WithCountOnly turns the query into SELECT COUNT(*).
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) { o.CountOnly = true }
}

// WithOrderBy orders by column. Direction is ASC unless it is "desc" in any case.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithLimit sets LIMIT. Zero is kept; negative values are ignored.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets OFFSET. Negative values are ignored.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// BuildListQuery renders o as SQL with $n placeholders and the matching
// arguments. Identifiers are quoted, so only values travel as arguments.
// Count queries ignore ordering and paging.
func BuildListQuery(o *ListQueryOptions) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString("SELECT ")
	switch {
	case o.CountOnly:
		sb.WriteString("COUNT(*)")
	case len(o.Columns) == 0:
		sb.WriteString("*")
	default:
		for i, c := range o.Columns {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(quote(c))
		}
	}
	sb.WriteString(" FROM ")
	sb.WriteString(quote(o.Table))

	for i, c := range o.Conditions {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, c.Value)
		sb.WriteString(renderCondition(c, len(args)))
	}

	if o.CountOnly {
		return sb.String(), args
	}

	if o.OrderBy != "" {
		dir := "ASC"
		if strings.EqualFold(strings.TrimSpace(o.OrderDir), "desc") {
			dir = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s", quote(o.OrderBy), dir)
	}
	if o.Limit >= 0 {
		args = append(args, o.Limit)
		sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	if o.Offset >= 0 {
		args = append(args, o.Offset)
		sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}
	return sb.String(), args
}

func renderCondition(c Condition, n int) string {
	ph := "$" + strconv.Itoa(n)
	if c.Type == In {
		return quote(c.Field) + " = ANY(" + ph + ")"
	}
	return quote(c.Field) + " " + string(c.Type) + " " + ph
}

// quote sanitizes a possibly schema-qualified identifier.
func quote(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}
