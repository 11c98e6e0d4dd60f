package datesniff

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// validator handles validation logic for Loader
type validator struct{}

// newValidator creates a new validator instance
func newValidator() *validator {
	return &validator{}
}

// validatePath validates a single file or directory path
func (v *validator) validatePath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path cannot be empty")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return fmt.Errorf("failed to stat path %s: %w", path, err)
	}

	// For files, check if they are supported
	if !info.IsDir() && !isSupportedFile(path) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// validateReader validates a reader input
func (v *validator) validateReader(input readerInput) error {
	if input.reader == nil {
		return errors.New("reader cannot be nil")
	}
	if strings.TrimSpace(input.tableName) == "" {
		return errors.New("table name must be specified for reader input")
	}
	if input.fileType == FileTypeUnsupported {
		return fmt.Errorf("%w: file type must be specified for reader input", ErrUnsupportedFormat)
	}

	// For specific readers where we can safely peek without consuming, validate empty content
	if stringReader, ok := input.reader.(*strings.Reader); ok && stringReader.Len() == 0 {
		return fmt.Errorf("%w: empty %s data", ErrEmptyData, input.fileType)
	}
	return nil
}

// validateInputsAvailable checks if any valid inputs remain after collection
func (v *validator) validateInputsAvailable(collectedPaths []string, fsFiles []fsFile, readers []readerInput) error {
	if len(collectedPaths) == 0 && len(fsFiles) == 0 && len(readers) == 0 {
		return ErrNoInputs
	}
	return nil
}
