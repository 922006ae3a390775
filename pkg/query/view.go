package query

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPageSize is used whenever a caller does not pick one.
const DefaultPageSize = 10

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Field is a named, sortable column of T.
type Field[T any] struct {
	Name  string
	Value func(T) Value
}

// Schema describes how rows of T are sorted and filtered.
type Schema[T any] struct {
	Fields  []Field[T]
	Display func(T) []string
}

func (s Schema[T]) field(name string) (Field[T], bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

// FieldNames lists the sortable columns in declaration order.
func (s Schema[T]) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		names = append(names, f.Name)
	}
	return names
}

// Page is one window of a filtered, sorted list.
type Page[T any] struct {
	Items     []T
	Page      int
	PageSize  int
	PageCount int
	Total     int
}

// Params is a one-shot query, as received on a list endpoint.
type Params struct {
	Filter   string
	Sort     string
	Dir      Direction
	Page     int
	PageSize int
}

// Apply filters, sorts and paginates rows without keeping state.
func Apply[T any](schema Schema[T], rows []T, params Params) (Page[T], error) {
	filtered := Filter(schema, rows, params.Filter)
	if params.Sort != "" {
		dir := params.Dir
		if dir == "" {
			dir = Asc
		}
		if dir != Asc && dir != Desc {
			return Page[T]{}, fmt.Errorf("invalid sort direction %q", params.Dir)
		}
		if err := Sort(schema, filtered, params.Sort, dir); err != nil {
			return Page[T]{}, err
		}
	}
	return Paginate(filtered, params.Page, params.PageSize), nil
}

// Filter keeps the rows whose joined display fields contain text, ignoring case.
// The input slice is not modified.
func Filter[T any](schema Schema[T], rows []T, text string) []T {
	needle := strings.ToLower(strings.TrimSpace(text))
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		if needle == "" || schema.Display == nil {
			out = append(out, row)
			continue
		}
		haystack := strings.ToLower(strings.Join(schema.Display(row), " "))
		if strings.Contains(haystack, needle) {
			out = append(out, row)
		}
	}
	return out
}

// Sort orders rows in place by the named field. Equal rows keep their relative order.
func Sort[T any](schema Schema[T], rows []T, fieldName string, dir Direction) error {
	field, ok := schema.field(fieldName)
	if !ok {
		return fmt.Errorf("unknown sort field %q", fieldName)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		c := Compare(field.Value(rows[i]), field.Value(rows[j]))
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
	return nil
}

// Paginate slices a 1-based page out of rows. Out of range pages clamp to the
// nearest valid page and an empty list is page 1 of 1.
func Paginate[T any](rows []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(rows)
	count := (total + size - 1) / size
	if count == 0 {
		count = 1
	}
	if page < 1 {
		page = 1
	}
	if page > count {
		page = count
	}
	start := (page - 1) * size
	end := start + size
	if end > total {
		end = total
	}
	return Page[T]{
		Items:     rows[start:end],
		Page:      page,
		PageSize:  size,
		PageCount: count,
		Total:     total,
	}
}

// View keeps filter, sort and page state over a list the way a table widget does.
type View[T any] struct {
	schema   Schema[T]
	rows     []T
	filter   string
	sortBy   string
	dir      Direction
	page     int
	pageSize int
}

func NewView[T any](schema Schema[T], rows []T) *View[T] {
	return &View[T]{
		schema:   schema,
		rows:     rows,
		dir:      Asc,
		page:     1,
		pageSize: DefaultPageSize,
	}
}

// SetRows swaps the underlying data and keeps the current state.
func (v *View[T]) SetRows(rows []T) {
	v.rows = rows
}

// SortBy toggles direction when field is already the sort key, otherwise sorts
// ascending by field. Either way the view returns to the first page.
func (v *View[T]) SortBy(field string) error {
	if _, ok := v.schema.field(field); !ok {
		return fmt.Errorf("unknown sort field %q", field)
	}
	if v.sortBy == field {
		if v.dir == Asc {
			v.dir = Desc
		} else {
			v.dir = Asc
		}
	} else {
		v.sortBy = field
		v.dir = Asc
	}
	v.page = 1
	return nil
}

// SetFilter changes the filter text and returns to the first page when it differs.
func (v *View[T]) SetFilter(text string) {
	if text == v.filter {
		return
	}
	v.filter = text
	v.page = 1
}

func (v *View[T]) SetPage(page int) {
	v.page = page
}

func (v *View[T]) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	v.pageSize = size
	v.page = 1
}

func (v *View[T]) SortState() (string, Direction) {
	return v.sortBy, v.dir
}

// Page renders the current window. It does not mutate the rows passed to SetRows.
func (v *View[T]) Page() Page[T] {
	filtered := Filter(v.schema, v.rows, v.filter)
	if v.sortBy != "" {
		// the field was validated by SortBy
		_ = Sort(v.schema, filtered, v.sortBy, v.dir)
	}
	p := Paginate(filtered, v.page, v.pageSize)
	v.page = p.Page
	return p
}
