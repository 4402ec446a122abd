package listing

// Tone is a semantic color hint for a cell.
type Tone string

const (
	ToneNeutral Tone = ""
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneInfo    Tone = "info"
)

// Cell is the presentation of one column for one row. Text is always set so
// plain renderers (terminal, CSV) can ignore the richer fields.
type Cell struct {
	Text     string
	Tone     Tone
	Href     string
	ImageURL string
	// Progress is a 0-100 bar value when HasProgress is true.
	Progress    int
	HasProgress bool
	// Toggle renders an on/off switch bound to a row action.
	Toggle *Toggle
}

// Toggle describes an on/off control rendered inside a cell.
type Toggle struct {
	On     bool
	Action string
}

// RowContext is what a column renderer sees: the row plus its position, so
// derived fields like sequence numbers never need to live on the row itself.
type RowContext[T any] struct {
	Row      T
	Index    int
	Page     int
	PageSize int
}

// Sequence is the 1-based position of the row across all pages.
func (rc RowContext[T]) Sequence() int {
	page := max(rc.Page, 1)
	return (page-1)*max(rc.PageSize, 0) + rc.Index + 1
}

// Column is an ordered (key, label, render) triple.
type Column[T any] struct {
	Key    string
	Label  string
	Render func(RowContext[T]) Cell
}

// Header is a rendered column heading.
type Header struct {
	Key   string
	Label string
}

// TableRow is one rendered row.
type TableRow struct {
	ID    string
	Cells []Cell
}

// Table is a fully rendered collection.
type Table struct {
	Headers []Header
	Rows    []TableRow
}

// Empty reports whether the table has no rows.
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// TableSpec bundles what RenderTable needs.
type TableSpec[T any] struct {
	Columns  []Column[T]
	RowID    func(T) string
	Page     int
	PageSize int
}

// RenderTable maps rows through columns.
func RenderTable[T any](rows []T, spec TableSpec[T]) Table {
	t := Table{Headers: make([]Header, 0, len(spec.Columns))}
	for _, c := range spec.Columns {
		t.Headers = append(t.Headers, Header{Key: c.Key, Label: c.Label})
	}
	t.Rows = make([]TableRow, 0, len(rows))
	for i, row := range rows {
		rc := RowContext[T]{Row: row, Index: i, Page: spec.Page, PageSize: spec.PageSize}
		tr := TableRow{Cells: make([]Cell, 0, len(spec.Columns))}
		if spec.RowID != nil {
			tr.ID = spec.RowID(row)
		}
		for _, c := range spec.Columns {
			if c.Render == nil {
				tr.Cells = append(tr.Cells, Cell{})
				continue
			}
			tr.Cells = append(tr.Cells, c.Render(rc))
		}
		t.Rows = append(t.Rows, tr)
	}
	return t
}
