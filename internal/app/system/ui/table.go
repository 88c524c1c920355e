package ui

import "html/template"

// Align is a column's horizontal alignment.
type Align string

const (
	AlignLeft  Align = ""
	AlignRight Align = "right"
)

// Column describes one table column.
type Column struct {
	Key   string
	Label string
	Align Align
}

// Cell is one table cell: text, an optional link, a badge or sanitized markup.
type Cell struct {
	Text  string
	Href  string
	Badge *Badge
	HTML  template.HTML
}

func TextCell(s string) Cell { return Cell{Text: s} }
func LinkCell(text, href string) Cell { return Cell{Text: text, Href: href} }
func BadgeCell(b Badge) Cell { return Cell{Text: b.Label, Badge: &b} }

// HTMLCell holds markup that has already been sanitized.
func HTMLCell(h template.HTML) Cell { return Cell{HTML: h} }

func (c Cell) IsHTML() bool { return c.HTML != "" }
func (c Cell) IsBadge() bool { return c.Badge != nil }
func (c Cell) IsLink() bool { return c.Href != "" }

// Row is one table row. Cells line up with the table's Columns.
type Row struct {
	Cells []Cell
}

// Table is a generic data table. Empty is shown when there are no rows.
type Table struct {
	Caption string
	Columns []Column
	Rows    []Row
	Empty   string
}

// NewTable starts a table with the given columns.
func NewTable(columns ...Column) *Table {
	return &Table{Columns: columns}
}

// AddRow appends a row. Short rows are padded with empty cells and extra
// cells are dropped, so every row matches the column count.
func (t *Table) AddRow(cells ...Cell) {
	row := make([]Cell, len(t.Columns))
	copy(row, cells)
	t.Rows = append(t.Rows, Row{Cells: row})
}

// IsEmpty reports whether the table has no rows.
func (t *Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// ColumnAlign returns the alignment of column i, for the template.
func (t *Table) ColumnAlign(i int) Align {
	if i < 0 || i >= len(t.Columns) {
		return AlignLeft
	}
	return t.Columns[i].Align
}
