// Package table searches and sorts lists of records client side and turns
// the visible rows into an export dataset.
package table

import (
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/wellness-client/pkg/export"
)

// Direction is a sort order.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Column describes one displayed field. Value overrides the lookup of Key
// in the flattened record.
type Column[T any] struct {
	Key    string
	Header string
	Value  func(T) any
}

// SortState is the active sort. An empty Key means input order.
type SortState struct {
	Key       string
	Direction Direction
}

// Table holds records, a search term and a sort state. Rows recomputes
// the visible list on every call.
type Table[T any] struct {
	columns []Column[T]
	rows    []T
	search  string
	sort    SortState
}

// New builds a table over rows.
func New[T any](columns []Column[T], rows []T) *Table[T] {
	return &Table[T]{columns: columns, rows: rows}
}

// Columns returns the column definitions.
func (t *Table[T]) Columns() []Column[T] { return t.columns }

// SetRows replaces the input records.
func (t *Table[T]) SetRows(rows []T) { t.rows = rows }

// SetSearch sets the free-text filter.
func (t *Table[T]) SetSearch(term string) { t.search = term }

// Sort returns the active sort.
func (t *Table[T]) Sort() SortState { return t.sort }

// Toggle activates the column key. A new column sorts ascending; the
// active column flips direction.
func (t *Table[T]) Toggle(key string) SortState {
	if t.sort.Key == key {
		if t.sort.Direction == Ascending {
			t.sort.Direction = Descending
		} else {
			t.sort.Direction = Ascending
		}
	} else {
		t.sort = SortState{Key: key, Direction: Ascending}
	}
	return t.sort
}

// Rows returns the records matching the search, sorted.
func (t *Table[T]) Rows() []T {
	rows := Search(t.rows, t.search)
	if t.sort.Key != "" {
		SortBy(rows, t.valueFunc(t.sort.Key), t.sort.Direction)
	}
	return rows
}

// Dataset renders the visible rows with the column headers.
func (t *Table[T]) Dataset(title string) export.Dataset {
	data := export.Dataset{Title: title, Headers: make([]string, len(t.columns))}
	for i, col := range t.columns {
		data.Headers[i] = col.Header
		if data.Headers[i] == "" {
			data.Headers[i] = col.Key
		}
	}
	for _, row := range t.Rows() {
		fields := Fields(row)
		record := make([]string, len(t.columns))
		for i, col := range t.columns {
			if col.Value != nil {
				record[i] = Text(col.Value(row))
			} else {
				record[i] = Text(fields[col.Key])
			}
		}
		data.Rows = append(data.Rows, record)
	}
	return data
}

func (t *Table[T]) valueFunc(key string) func(T) any {
	for _, col := range t.columns {
		if col.Key == key && col.Value != nil {
			return col.Value
		}
	}
	return func(row T) any { return Fields(row)[key] }
}

// Search keeps the records whose string form of any field contains term,
// ignoring case. An empty term keeps everything. The input is not
// modified.
func Search[T any](rows []T, term string) []T {
	out := make([]T, 0, len(rows))
	needle := strings.ToLower(term)
	for _, row := range rows {
		if needle == "" || matches(row, needle) {
			out = append(out, row)
		}
	}
	return out
}

func matches(row any, needle string) bool {
	for _, v := range Fields(row) {
		if strings.Contains(strings.ToLower(Text(v)), needle) {
			return true
		}
	}
	return false
}

// SortBy sorts rows in place by value. Equal values keep their input
// order in both directions.
func SortBy[T any](rows []T, value func(T) any, dir Direction) {
	keys := make([]any, len(rows))
	for i, row := range rows {
		keys[i] = value(row)
	}
	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		c := Compare(keys[idx[a]], keys[idx[b]])
		if dir == Descending {
			return c > 0
		}
		return c < 0
	})
	sorted := make([]T, len(rows))
	for i, j := range idx {
		sorted[i] = rows[j]
	}
	copy(rows, sorted)
}

// Compare orders two field values: nil first, numbers numerically, times
// chronologically, false before true, strings lexically. Values of
// different kinds compare by their string form.
func Compare(a, b any) int {
	a, b = deref(a), deref(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return cmpFloat(x, y)
		}
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(Text(a), Text(b))
}

func deref(v any) any {
	rv := reflect.ValueOf(v)
	for rv.IsValid() && rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}

func cmpFloat(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}
