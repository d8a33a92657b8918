package canopy

import (
	"fmt"
	"sort"
	"strconv"
)

// ValidateData checks incoming data for a layer. Nil incoming keeps
// current; incoming of another type is a configuration error and current
// is kept; otherwise incoming is returned, passed through filter if set.
func ValidateData[T any](current T, incoming any, filter func(T) T) (T, error) {
	if incoming == nil {
		return current, nil
	}
	v, ok := incoming.(T)
	if !ok {
		return current, NewError(ErrCodeConfiguration, "invalid data: want %T, got %T", current, incoming)
	}
	if filter != nil {
		return filter(v), nil
	}
	return v, nil
}

// Table is the tabular data wrapper layers consume: named columns over
// rows of string cells. Numeric columns are parsed on access.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable builds a table, padding short rows with empty cells.
func NewTable(columns []string, rows [][]string) *Table {
	t := &Table{Columns: append([]string(nil), columns...)}
	for _, r := range rows {
		row := make([]string, len(columns))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Strings returns the cells of column i.
func (t *Table) Strings(i int) []string {
	out := make([]string, 0, t.Len())
	for _, r := range t.Rows {
		if i >= 0 && i < len(r) {
			out = append(out, r[i])
		} else {
			out = append(out, "")
		}
	}
	return out
}

// Floats parses column i. Unparseable cells are an error naming the row.
func (t *Table) Floats(i int) ([]float64, error) {
	out := make([]float64, 0, t.Len())
	for n, s := range t.Strings(i) {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d column %d: %w", n, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// Extent returns the min and max of numeric columns cols over every row.
func (t *Table) Extent(cols ...int) ([2]float64, error) {
	var (
		ext   [2]float64
		first = true
	)
	for _, c := range cols {
		vals, err := t.Floats(c)
		if err != nil {
			return ext, err
		}
		for _, v := range vals {
			if first {
				ext = [2]float64{v, v}
				first = false
				continue
			}
			ext[0] = min(ext[0], v)
			ext[1] = max(ext[1], v)
		}
	}
	return ext, nil
}

// Distinct returns the distinct values of column i in first-seen order.
func (t *Table) Distinct(i int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range t.Strings(i) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Filter returns a table holding only the rows keep accepts.
func (t *Table) Filter(keep func(row []string) bool) *Table {
	out := &Table{Columns: t.Columns}
	for _, r := range t.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// SortBy returns a copy sorted by column i, numerically when every cell
// parses as a number.
func (t *Table) SortBy(i int, desc bool) *Table {
	order := make([]int, t.Len())
	for n := range order {
		order[n] = n
	}
	var less func(a, b int) bool
	if nums, err := t.Floats(i); err == nil {
		less = func(a, b int) bool { return nums[a] < nums[b] }
	} else {
		cells := t.Strings(i)
		less = func(a, b int) bool { return cells[a] < cells[b] }
	}
	sort.SliceStable(order, func(a, b int) bool {
		if desc {
			return less(order[b], order[a])
		}
		return less(order[a], order[b])
	})
	out := &Table{Columns: t.Columns, Rows: make([][]string, len(order))}
	for n, o := range order {
		out.Rows[n] = t.Rows[o]
	}
	return out
}
