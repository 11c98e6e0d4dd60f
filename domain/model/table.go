package model

import (
	"context"
	"fmt"
	"iter"
	"path/filepath"
	"strings"
)

// Column is one named, typed column of a Table.
type Column struct {
	// Name is the column name.
	Name string
	// DType is the declared storage type.
	DType DType
	// Values holds every cell in row order, nulls included.
	Values []Value
}

// NewColumn create new Column.
func NewColumn(name string, dtype DType, values ...Value) Column {
	return Column{Name: name, DType: dtype, Values: values}
}

// NewStringColumn creates an object column from text cells.
func NewStringColumn(name string, values ...string) Column {
	vs := make([]Value, len(values))
	for i, v := range values {
		vs[i] = StringValue(v)
	}
	return NewColumn(name, DTypeObject, vs...)
}

// Table represents tabular contents held in memory.
type Table struct {
	// name is table name derived from file path.
	name string
	// columns in their original order
	columns []Column
	// index maps column name to position
	index map[string]int
}

// NewTable create new Table. A later column with a repeated name replaces
// the lookup entry of the earlier one; loaders reject duplicate headers
// before getting here.
func NewTable(name string, columns ...Column) *Table {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		index[c.Name] = i
	}
	return &Table{
		name:    name,
		columns: columns,
		index:   index,
	}
}

// Name return table name.
func (t *Table) Name() string {
	return t.name
}

// Header return table header.
func (t *Table) Header() Header {
	h := make(Header, len(t.columns))
	for i, c := range t.columns {
		h[i] = c.Name
	}
	return h
}

// ColumnInfo returns the name and dtype of every column
func (t *Table) ColumnInfo() []ColumnInfo {
	infos := make([]ColumnInfo, len(t.columns))
	for i, c := range t.columns {
		infos[i] = ColumnInfo{Name: c.Name, DType: c.DType}
	}
	return infos
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// NumRows returns the length of the longest column.
func (t *Table) NumRows() int {
	n := 0
	for _, c := range t.columns {
		n = max(n, len(c.Values))
	}
	return n
}

// Columns returns the column names in order.
func (t *Table) Columns(_ context.Context) ([]string, error) {
	return t.Header(), nil
}

// DType returns the declared storage type of the named column.
func (t *Table) DType(_ context.Context, column string) (DType, error) {
	c, ok := t.Column(column)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrColumnNotFound, column)
	}
	return c.DType, nil
}

// Values yields the non-null values of the named column in row order.
func (t *Table) Values(ctx context.Context, column string) iter.Seq2[Value, error] {
	return func(yield func(Value, error) bool) {
		c, ok := t.Column(column)
		if !ok {
			yield(Null(), fmt.Errorf("%w: %s", ErrColumnNotFound, column))
			return
		}
		for _, v := range c.Values {
			if err := ctx.Err(); err != nil {
				yield(Null(), err)
				return
			}
			if v.IsNull() {
				continue
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}

// Equal compare Table.
func (t *Table) Equal(t2 *Table) bool {
	if t.Name() != t2.Name() {
		return false
	}
	if len(t.columns) != len(t2.columns) {
		return false
	}
	for i, c := range t.columns {
		c2 := t2.columns[i]
		if c.Name != c2.Name || c.DType != c2.DType || len(c.Values) != len(c2.Values) {
			return false
		}
		for j, v := range c.Values {
			if v.Kind() != c2.Values[j].Kind() || v.String() != c2.Values[j].String() {
				return false
			}
		}
	}
	return true
}

// TableFromFilePath creates table name from file path
func TableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	// Remove compression extensions first
	for _, ext := range []string{ExtGZ, ExtBZ2, ExtXZ, ExtZSTD} {
		if strings.HasSuffix(fileName, ext) {
			fileName = strings.TrimSuffix(fileName, ext)
			break
		}
	}
	// Then remove the file type extension
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
