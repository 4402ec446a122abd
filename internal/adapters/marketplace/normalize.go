package marketplace

import (
	"fmt"

	"github.com/jmespath-community/go-jmespath"

	"github.com/urbanmart/marketplace-admin/internal/domain/resource"
)

type searchFunc func(data any) (any, error)

func compile(expr string) (searchFunc, error) {
	compiled, err := jmespath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, err)
	}
	return func(data any) (any, error) { return compiled.Search(data) }, nil
}

// normalizer extracts rows and the total page count from a list response.
// It is the only place that knows about response shapes.
type normalizer struct {
	rows  searchFunc
	total searchFunc
}

func newNormalizer(spec resource.ListSpec) (*normalizer, error) {
	rowsExpr := spec.RowsPath
	if rowsExpr == "" {
		rowsExpr = resource.DefaultRowsPath
	}
	totalExpr := spec.TotalPagesPath
	if totalExpr == "" {
		totalExpr = resource.DefaultTotalPagesPath
	}
	rows, err := compile(rowsExpr)
	if err != nil {
		return nil, err
	}
	total, err := compile(totalExpr)
	if err != nil {
		return nil, err
	}
	return &normalizer{rows: rows, total: total}, nil
}

// collection never fails: a bare array is one page of rows, and anything it
// cannot recognize is an empty single page.
func (n *normalizer) collection(doc any) resource.Collection {
	if arr, ok := doc.([]any); ok {
		return resource.Collection{Rows: toRows(arr), TotalPages: 1}
	}
	out := resource.Collection{TotalPages: 1}
	if v, err := n.rows(doc); err == nil {
		if arr, ok := v.([]any); ok {
			out.Rows = toRows(arr)
		}
	}
	if v, err := n.total(doc); err == nil {
		if f, ok := resource.ToFloat(v); ok && f >= 1 {
			out.TotalPages = int(f)
		}
	}
	return out
}

func toRows(items []any) []resource.Row {
	rows := make([]resource.Row, 0, len(items))
	for _, it := range items {
		if m, ok := it.(map[string]any); ok {
			rows = append(rows, resource.Row(m))
		}
	}
	return rows
}

// unwrapRow returns doc.data when it is an object, or doc itself.
func unwrapRow(doc any) resource.Row {
	m, ok := doc.(map[string]any)
	if !ok {
		return resource.Row{}
	}
	if data, ok := m["data"].(map[string]any); ok {
		return resource.Row(data)
	}
	if _, enveloped := m["success"]; enveloped {
		return resource.Row{}
	}
	return resource.Row(m)
}
