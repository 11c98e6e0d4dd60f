package model

import (
	"strconv"
	"strings"
)

// DefaultNullValues are the cell texts a text source treats as missing.
// The list matches the tokens pandas.read_csv recognises by default.
var DefaultNullValues = []string{
	"",
	"#N/A", "#N/A N/A", "#NA",
	"-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN",
	"<NA>", "N/A", "NA", "NULL", "NaN", "None",
	"n/a", "nan", "null",
}

// NullSet is a set of cell texts treated as missing.
type NullSet map[string]struct{}

// NewNullSet creates a NullSet. With no arguments it holds DefaultNullValues.
func NewNullSet(values ...string) NullSet {
	if len(values) == 0 {
		values = DefaultNullValues
	}
	set := make(NullSet, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// Contains reports whether cell is a null token.
func (s NullSet) Contains(cell string) bool {
	_, ok := s[cell]
	return ok
}

// InferDType infers the storage type of a column read from a text source.
// Cells are not trimmed; only exact null tokens count as missing.
func InferDType(cells []string, nulls NullSet) DType {
	nonNull := 0
	allInteger, allNumeric, allBool := true, true, true

	for _, cell := range cells {
		if nulls.Contains(cell) {
			continue
		}
		nonNull++

		if allInteger && !isInteger(cell) {
			allInteger = false
		}
		if allNumeric && !isInteger(cell) && !isFloat(cell) {
			allNumeric = false
		}
		if allBool {
			if _, ok := parseBool(cell); !ok {
				allBool = false
			}
		}

		// Any cell that is neither number nor bool makes the column object
		if !allNumeric && !allBool {
			return DTypeObject
		}
	}

	switch {
	case nonNull == 0:
		// A column with nothing but missing cells has no values to hold, pandas stores NaN
		return DTypeFloat64
	case allInteger:
		return DTypeInt64
	case allNumeric:
		return DTypeFloat64
	case allBool:
		return DTypeBool
	default:
		return DTypeObject
	}
}

// ConvertCell converts raw cell text to a Value of the given dtype.
func ConvertCell(cell string, dtype DType, nulls NullSet) Value {
	if nulls.Contains(cell) {
		return Null()
	}
	switch dtype {
	case DTypeInt64:
		if i, err := strconv.ParseInt(strings.TrimSpace(cell), 10, 64); err == nil {
			return IntValue(i)
		}
	case DTypeFloat64:
		if f, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err == nil {
			return FloatValue(f)
		}
	case DTypeBool:
		if b, ok := parseBool(cell); ok {
			return BoolValue(b)
		}
	}
	return StringValue(cell)
}

// ColumnsFromRecords builds typed columns from a header and its records.
// Short records are padded with missing cells whatever the null set holds.
func ColumnsFromRecords(header Header, records []Record, nulls NullSet) []Column {
	columns := make([]Column, len(header))
	for i, name := range header {
		cells := make([]string, 0, len(records))
		for _, record := range records {
			if i < len(record) {
				cells = append(cells, record[i])
			}
		}
		dtype := InferDType(cells, nulls)

		values := make([]Value, len(records))
		next := 0
		for j, record := range records {
			if i >= len(record) {
				values[j] = Null()
				continue
			}
			values[j] = ConvertCell(cells[next], dtype, nulls)
			next++
		}
		columns[i] = NewColumn(name, dtype, values...)
	}
	return columns
}

// InferDTypeFromValues infers the storage type of a column whose cells
// already carry their own kind, as spreadsheet cells do.
func InferDTypeFromValues(values []Value) DType {
	counts := make(map[Kind]int)
	nonNull := 0
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		nonNull++
		counts[v.Kind()]++
	}

	switch {
	case nonNull == 0:
		return DTypeFloat64
	case counts[KindInteger] == nonNull:
		return DTypeInt64
	case counts[KindInteger]+counts[KindFloat] == nonNull:
		return DTypeFloat64
	case counts[KindBool] == nonNull:
		return DTypeBool
	case counts[KindTime] == nonNull:
		return DTypeDatetime
	default:
		return DTypeObject
	}
}

// NewColumnFromValues builds a column from kind-carrying cells. Integers in a
// float64 column are widened to floats; object columns keep every cell as is.
func NewColumnFromValues(name string, values []Value) Column {
	dtype := InferDTypeFromValues(values)
	if dtype == DTypeFloat64 {
		for i, v := range values {
			if v.Kind() == KindInteger {
				values[i] = FloatValue(float64(v.Any().(int64)))
			}
		}
	}
	return NewColumn(name, dtype, values...)
}

// isInteger checks if a value is an integer with optimized parsing
func isInteger(value string) bool {
	value = strings.TrimSpace(value)
	// Quick pre-check: must start with digit or sign
	if len(value) == 0 {
		return false
	}
	first := value[0]
	if first != '+' && first != '-' && (first < '0' || first > '9') {
		return false
	}

	_, err := strconv.ParseInt(value, 10, 64)
	return err == nil
}

// isFloat checks if a value is a float with optimized parsing
func isFloat(value string) bool {
	value = strings.TrimSpace(value)
	// Quick pre-check: must contain digits
	hasDigit := false
	for _, r := range value {
		if r >= '0' && r <= '9' {
			hasDigit = true
			break
		}
	}
	if !hasDigit {
		return false
	}

	_, err := strconv.ParseFloat(value, 64)
	return err == nil
}

// parseBool accepts the spellings pandas reads as booleans.
func parseBool(value string) (b bool, ok bool) {
	switch strings.TrimSpace(value) {
	case "True", "TRUE", "true":
		return true, true
	case "False", "FALSE", "false":
		return false, true
	default:
		return false, false
	}
}
