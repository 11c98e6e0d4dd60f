package datesniff

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/datesniff/domain/model"
)

// Standard error messages and error creation functions for consistency
var (
	// ErrFrameAccess wraps any failure reported by a Frame while its columns,
	// dtypes or values are being read. Classification outcomes are never errors.
	ErrFrameAccess = errors.New("datesniff: frame access failed")

	// ErrDuplicateColumnName is returned when a file contains duplicate column names
	ErrDuplicateColumnName = model.ErrDuplicateColumnName

	// ErrEmptyData indicates that the data source contains no records
	ErrEmptyData = errors.New("datesniff: empty data source")

	// ErrUnsupportedFormat indicates an unsupported file format
	ErrUnsupportedFormat = errors.New("datesniff: unsupported file format")

	// ErrFileNotFound indicates file not found
	ErrFileNotFound = errors.New("datesniff: file not found")

	// ErrNoInputs indicates that a Loader has nothing to load
	ErrNoInputs = errors.New("datesniff: no valid input found")

	// ErrTableNotFound indicates a database table that does not exist
	ErrTableNotFound = errors.New("datesniff: table not found")

	// ErrTooManyFields indicates a CSV or TSV record longer than its header
	ErrTooManyFields = errors.New("datesniff: record has more fields than the header")
)

// ErrorContext provides context for where an error occurred
type ErrorContext struct {
	Operation string
	FilePath  string
	TableName string
	Column    string
	Details   string
}

// NewErrorContext creates a new error context
func NewErrorContext(operation, filePath string) *ErrorContext {
	return &ErrorContext{
		Operation: operation,
		FilePath:  filePath,
	}
}

// WithTable adds table context to the error
func (ec *ErrorContext) WithTable(tableName string) *ErrorContext {
	ec.TableName = tableName
	return ec
}

// WithColumn adds column context to the error
func (ec *ErrorContext) WithColumn(column string) *ErrorContext {
	ec.Column = column
	return ec
}

// WithDetails adds details to the error context
func (ec *ErrorContext) WithDetails(details string) *ErrorContext {
	ec.Details = details
	return ec
}

// Error creates a formatted error with context
func (ec *ErrorContext) Error(baseErr error) error {
	var parts []string
	parts = append(parts, fmt.Sprintf("datesniff: %s failed", ec.Operation))

	if ec.FilePath != "" {
		parts = append(parts, "file: "+ec.FilePath)
	}

	if ec.TableName != "" {
		parts = append(parts, "table: "+ec.TableName)
	}

	if ec.Column != "" {
		parts = append(parts, "column: "+ec.Column)
	}

	if ec.Details != "" {
		parts = append(parts, "details: "+ec.Details)
	}

	context := strings.Join(parts, ", ")
	if baseErr != nil {
		return fmt.Errorf("%s: %w", context, baseErr)
	}
	return fmt.Errorf("%s", context)
}

// validateColumnNames checks for duplicate column names and returns error if found.
// Column name comparison is case-sensitive.
func validateColumnNames(columns []string) error {
	columnsSeen := make(map[string]bool)
	for _, col := range columns {
		trimmedCol := strings.TrimSpace(col)
		if columnsSeen[trimmedCol] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumnName, col)
		}
		columnsSeen[trimmedCol] = true
	}
	return nil
}
