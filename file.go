package datesniff

import (
	"path/filepath"
	"strings"

	"github.com/nao1215/datesniff/domain/model"
)

// FileType represents the supported tabular file formats, independent of compression
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeLTSV represents LTSV file type
	FileTypeLTSV
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File format delimiters
const (
	// csvDelimiter is the delimiter for CSV files
	csvDelimiter = ','
	// tsvDelimiter is the delimiter for TSV files
	tsvDelimiter = '\t'
)

// String returns the format name.
func (ft FileType) String() string {
	switch ft {
	case FileTypeCSV:
		return "CSV"
	case FileTypeTSV:
		return "TSV"
	case FileTypeLTSV:
		return "LTSV"
	case FileTypeParquet:
		return "Parquet"
	case FileTypeXLSX:
		return "XLSX"
	default:
		return "unsupported"
	}
}

// extension returns the file extension for the FileType
func (ft FileType) extension() string {
	switch ft {
	case FileTypeCSV:
		return model.ExtCSV
	case FileTypeTSV:
		return model.ExtTSV
	case FileTypeLTSV:
		return model.ExtLTSV
	case FileTypeParquet:
		return model.ExtParquet
	case FileTypeXLSX:
		return model.ExtXLSX
	default:
		return ""
	}
}

// file is a path together with the format and compression its name implies
type file struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// newFile creates a new file
func newFile(path string) *file {
	fileType, compression := detectFileType(path)
	return &file{
		path:        path,
		fileType:    fileType,
		compression: compression,
	}
}

// tableName returns the table name derived from the file name
func (f *file) tableName() string {
	return model.TableFromFilePath(f.path)
}

// detectFileType detects the base format and compression from the file name.
// Extensions are matched case-insensitively.
func detectFileType(path string) (FileType, CompressionType) {
	compression := detectCompressionType(path)
	basePath := path[:len(path)-len(compression.Extension())]

	switch strings.ToLower(filepath.Ext(basePath)) {
	case model.ExtCSV:
		return FileTypeCSV, compression
	case model.ExtTSV:
		return FileTypeTSV, compression
	case model.ExtLTSV:
		return FileTypeLTSV, compression
	case model.ExtParquet:
		return FileTypeParquet, compression
	case model.ExtXLSX:
		return FileTypeXLSX, compression
	default:
		return FileTypeUnsupported, compression
	}
}

// isSupportedFile checks if the file has a supported extension
func isSupportedFile(fileName string) bool {
	fileType, _ := detectFileType(fileName)
	return fileType != FileTypeUnsupported
}

// SupportedFilePatterns returns the glob patterns of every file name a Loader accepts.
func SupportedFilePatterns() []string {
	baseExts := []string{model.ExtCSV, model.ExtTSV, model.ExtLTSV, model.ExtParquet, model.ExtXLSX}
	compressionExts := append([]string{""}, model.CompressionExtensions()...)

	var patterns []string
	for _, baseExt := range baseExts {
		for _, compressionExt := range compressionExts {
			patterns = append(patterns, "*"+baseExt+compressionExt)
		}
	}
	return patterns
}

// sqliteExtensions are the file extensions opened as SQLite databases rather than files
var sqliteExtensions = []string{".db", ".sqlite", ".sqlite3"}

// IsSQLitePath reports whether path names a SQLite database by its extension.
func IsSQLitePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range sqliteExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
