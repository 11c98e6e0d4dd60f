// Package model provides domain model for datesniff
package model

// Header is table header.
type Header []string

// NewHeader create new Header.
func NewHeader(h []string) Header {
	return Header(h)
}

// Equal compare Header.
func (h Header) Equal(h2 Header) bool {
	if len(h) != len(h2) {
		return false
	}
	for i, v := range h {
		if v != h2[i] {
			return false
		}
	}
	return true
}

// Record is one row of raw cell text as read from a text source.
type Record []string

// NewRecord create new Record.
func NewRecord(r []string) Record {
	return Record(r)
}

// Equal compare Record.
func (r Record) Equal(r2 Record) bool {
	if len(r) != len(r2) {
		return false
	}
	for i, v := range r {
		if v != r2[i] {
			return false
		}
	}
	return true
}

// DType is the declared storage type of a column.
// Names follow pandas so that verdicts line up with the dtypes users already see.
type DType string

const (
	// DTypeObject marks a generic column holding arbitrary values, usually text.
	// It is the only dtype whose columns are examined for dates.
	DTypeObject DType = "object"
	// DTypeInt64 marks a column of integers
	DTypeInt64 DType = "int64"
	// DTypeFloat64 marks a column of floating point numbers
	DTypeFloat64 DType = "float64"
	// DTypeBool marks a column of booleans
	DTypeBool DType = "bool"
	// DTypeDatetime marks a column that is already typed as date/time
	DTypeDatetime DType = "datetime64[ns]"
)

// String returns the dtype name
func (d DType) String() string {
	return string(d)
}

// IsObject reports whether the dtype is the generic/untyped text dtype.
func (d DType) IsObject() bool {
	return d == DTypeObject
}

// ColumnInfo represents column information with name and declared type
type ColumnInfo struct {
	Name  string
	DType DType
}
