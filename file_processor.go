package datesniff

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
)

// fsFile is a supported file found inside an fs.FS
type fsFile struct {
	filesystem fs.FS
	path       string
}

// fileProcessor collects loadable files from paths and filesystems
type fileProcessor struct {
	validator *validator
}

// newFileProcessor creates a new file processor instance
func newFileProcessor() *fileProcessor {
	return &fileProcessor{
		validator: newValidator(),
	}
}

// collectFilesFromPaths validates and collects all files from the given paths
func (fp *fileProcessor) collectFilesFromPaths(paths []string) ([]string, error) {
	var collectedPaths []string
	processedFiles := make(map[string]bool)

	for _, path := range paths {
		if err := fp.validator.validatePath(path); err != nil {
			return nil, err
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to stat path %s: %w", path, err)
		}

		if info.IsDir() {
			dirFiles, err := fp.collectFilesFromDirectory(path, processedFiles)
			if err != nil {
				return nil, err
			}
			collectedPaths = append(collectedPaths, dirFiles...)
			continue
		}
		if err := fp.addSingleFile(path, processedFiles, &collectedPaths); err != nil {
			return nil, err
		}
	}

	return collectedPaths, nil
}

// collectFilesFromDirectory recursively collects all supported files from a directory
func (fp *fileProcessor) collectFilesFromDirectory(dirPath string, processedFiles map[string]bool) ([]string, error) {
	var collectedPaths []string

	err := filepath.WalkDir(dirPath, func(filePath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isSupportedFile(filePath) {
			return nil
		}
		return fp.addSingleFile(filePath, processedFiles, &collectedPaths)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	return collectedPaths, nil
}

// addSingleFile validates and adds a single file to the collected paths
func (fp *fileProcessor) addSingleFile(filePath string, processedFiles map[string]bool, collectedPaths *[]string) error {
	if !isSupportedFile(filePath) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filePath)
	}

	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for %s: %w", filePath, err)
	}

	if !processedFiles[absPath] {
		processedFiles[absPath] = true
		*collectedPaths = append(*collectedPaths, filePath)
	}
	return nil
}

// collectFSFiles finds every supported file in filesystem, recursively
func (fp *fileProcessor) collectFSFiles(filesystem fs.FS) ([]fsFile, error) {
	if filesystem == nil {
		return nil, fmt.Errorf("%w: FS cannot be nil", ErrNoInputs)
	}

	var matches []string
	err := fs.WalkDir(filesystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isSupportedFile(path) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk filesystem: %w", err)
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no supported files found in filesystem", ErrNoInputs)
	}

	// Remove compressed duplicates when uncompressed versions exist
	matches = fp.deduplicateCompressedFiles(matches)

	files := make([]fsFile, 0, len(matches))
	for _, match := range matches {
		files = append(files, fsFile{filesystem: filesystem, path: match})
	}
	return files, nil
}

// deduplicateCompressedFiles removes compressed files when their uncompressed
// versions exist in the same directory. The result is sorted.
func (fp *fileProcessor) deduplicateCompressedFiles(files []string) []string {
	key := func(file string) string {
		return filepath.Join(filepath.Dir(file), newFile(file).tableName())
	}

	// Create a map of table names to file paths, prioritizing uncompressed files
	tableToFile := make(map[string]string)

	// First pass: collect all uncompressed files
	for _, file := range files {
		if !fp.isCompressedFile(file) {
			tableToFile[key(file)] = file
		}
	}

	// Second pass: add compressed files only if uncompressed version doesn't exist
	for _, file := range files {
		if fp.isCompressedFile(file) {
			if _, exists := tableToFile[key(file)]; !exists {
				tableToFile[key(file)] = file
			}
		}
	}

	result := make([]string, 0, len(tableToFile))
	for _, file := range tableToFile {
		result = append(result, file)
	}
	slices.Sort(result)
	return result
}

// isCompressedFile checks if a file path represents a compressed file
func (fp *fileProcessor) isCompressedFile(filePath string) bool {
	return detectCompressionType(filePath) != CompressionNone
}
