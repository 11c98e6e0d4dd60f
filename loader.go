package datesniff

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/nao1215/datesniff/domain/model"
)

// Loader collects tabular inputs and loads them into in-memory tables that
// can be passed to a Sniffer. Use NewLoader to create a new instance, then
// chain method calls to configure it.
//
// The typical usage pattern is:
//
//	loader, err := datesniff.NewLoader().AddPath("data.csv").AddFS(embeddedFS).Build(ctx)
//	if err != nil {
//		return err
//	}
//	tables, err := loader.Load(ctx)
type Loader struct {
	// paths contains regular file and directory paths
	paths []string
	// filesystems contains fs.FS instances
	filesystems []fs.FS
	// readers contains reader inputs
	readers []readerInput
	// nullValues overrides the cell texts treated as missing
	nullValues []string

	// collectedPaths contains all file paths after Build validation
	collectedPaths []string
	// fsFiles contains all FS files after Build validation
	fsFiles []fsFile
	// built is set once Build succeeded
	built bool
}

// readerInput is one stream added with AddReader
type readerInput struct {
	reader      io.Reader
	tableName   string
	fileType    FileType
	compression CompressionType
}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// AddPath adds a regular file or directory path to the loader.
// The path can be:
// - A single file with a supported extension (.csv, .tsv, .ltsv, .parquet, .xlsx, and their compressed variants)
// - A directory path (all supported files will be loaded recursively)
//
// Supported compression: .gz, .bz2, .xz, .zst
func (l *Loader) AddPath(path string) *Loader {
	l.paths = append(l.paths, path)
	return l
}

// AddPaths adds multiple regular file or directory paths to the loader.
func (l *Loader) AddPaths(paths ...string) *Loader {
	l.paths = append(l.paths, paths...)
	return l
}

// AddFS adds all supported files from an fs.FS filesystem to the loader.
// This method is particularly useful for embedded filesystems using go:embed.
// When both "x.csv" and "x.csv.gz" exist in one directory, only the
// uncompressed file is loaded.
func (l *Loader) AddFS(filesystem fs.FS) *Loader {
	l.filesystems = append(l.filesystems, filesystem)
	return l
}

// AddReader adds an uncompressed stream. tableName names the resulting table
// and fileType tells how to parse it.
func (l *Loader) AddReader(reader io.Reader, tableName string, fileType FileType) *Loader {
	return l.AddCompressedReader(reader, tableName, fileType, CompressionNone)
}

// AddCompressedReader is like AddReader for a compressed stream.
func (l *Loader) AddCompressedReader(reader io.Reader, tableName string, fileType FileType, compression CompressionType) *Loader {
	l.readers = append(l.readers, readerInput{
		reader:      reader,
		tableName:   tableName,
		fileType:    fileType,
		compression: compression,
	})
	return l
}

// WithNullValues replaces the cell texts treated as missing in text formats.
// Without it, model.DefaultNullValues apply.
func (l *Loader) WithNullValues(values ...string) *Loader {
	l.nullValues = values
	return l
}

// Build validates all inputs and expands directories and filesystems into
// the list of files to load. It must be called before Load.
func (l *Loader) Build(_ context.Context) (*Loader, error) {
	if len(l.paths) == 0 && len(l.filesystems) == 0 && len(l.readers) == 0 {
		return nil, fmt.Errorf("%w: at least one path, FS or reader must be provided", ErrNoInputs)
	}

	processor := newFileProcessor()

	collectedPaths, err := processor.collectFilesFromPaths(l.paths)
	if err != nil {
		return nil, err
	}

	var fsFiles []fsFile
	for _, filesystem := range l.filesystems {
		files, err := processor.collectFSFiles(filesystem)
		if err != nil {
			return nil, fmt.Errorf("failed to process FS input: %w", err)
		}
		fsFiles = append(fsFiles, files...)
	}

	for _, input := range l.readers {
		if err := processor.validator.validateReader(input); err != nil {
			return nil, err
		}
	}

	if err := processor.validator.validateInputsAvailable(collectedPaths, fsFiles, l.readers); err != nil {
		return nil, err
	}

	l.collectedPaths = collectedPaths
	l.fsFiles = fsFiles
	l.built = true
	return l, nil
}

// Load parses every input into tables, in the order paths, filesystems and
// readers were added. Readers are consumed, so Load reads them only once.
func (l *Loader) Load(ctx context.Context) ([]*model.Table, error) {
	if !l.built {
		return nil, fmt.Errorf("%w, did you call Build()?", ErrNoInputs)
	}

	nulls := model.NewNullSet(l.nullValues...)
	var tables []*model.Table

	for _, path := range l.collectedPaths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loaded, err := loadFile(ctx, newFile(path), nulls)
		if err != nil {
			return nil, err
		}
		tables = append(tables, loaded...)
	}

	for _, f := range l.fsFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		loaded, err := loadFSFile(ctx, f, nulls)
		if err != nil {
			return nil, err
		}
		tables = append(tables, loaded...)
	}

	for _, input := range l.readers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parser := newStreamingParser(input.fileType, input.compression, input.tableName, nulls)
		loaded, err := parser.parseFromReader(ctx, input.reader)
		if err != nil {
			return nil, NewErrorContext("load reader", "").
				WithTable(input.tableName).
				WithDetails(inputDetails(input.fileType, input.compression)).
				Error(err)
		}
		tables = append(tables, loaded...)
	}
	l.readers = nil

	return tables, nil
}

// loadFile parses one file on disk
func loadFile(ctx context.Context, f *file, nulls model.NullSet) ([]*model.Table, error) {
	reader, closer, err := f.openReader()
	if err != nil {
		return nil, NewErrorContext("load file", f.path).Error(err)
	}
	defer func() {
		_ = closer() // Ignore close error in cleanup
	}()

	parser := newStreamingParser(f.fileType, f.compression, f.tableName(), nulls)
	tables, err := parser.parseFromReader(ctx, reader)
	if err != nil {
		return nil, NewErrorContext("load file", f.path).WithDetails(inputDetails(f.fileType, f.compression)).Error(err)
	}
	return tables, nil
}

// loadFSFile parses one file inside an fs.FS
func loadFSFile(ctx context.Context, f fsFile, nulls model.NullSet) (tables []*model.Table, err error) {
	fp, err := f.filesystem.Open(f.path)
	if err != nil {
		return nil, NewErrorContext("load FS file", f.path).Error(err)
	}
	defer func() {
		err = errors.Join(err, fp.Close())
	}()

	info := newFile(f.path)
	parser := newStreamingParser(info.fileType, info.compression, info.tableName(), nulls)
	tables, err = parser.parseFromReader(ctx, fp)
	if err != nil {
		return nil, NewErrorContext("load FS file", f.path).WithDetails(inputDetails(info.fileType, info.compression)).Error(err)
	}
	return tables, nil
}

// inputDetails names the format an input was parsed as
func inputDetails(fileType FileType, compression CompressionType) string {
	if compression == CompressionNone {
		return fileType.String()
	}
	return fmt.Sprintf("%s (%s)", fileType, compression)
}

// LoadFile loads one file or directory with default settings.
func LoadFile(ctx context.Context, path string) ([]*model.Table, error) {
	loader, err := NewLoader().AddPath(path).Build(ctx)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx)
}

// LoadReader loads one uncompressed stream with default settings.
func LoadReader(ctx context.Context, reader io.Reader, tableName string, fileType FileType) ([]*model.Table, error) {
	loader, err := NewLoader().AddReader(reader, tableName, fileType).Build(ctx)
	if err != nil {
		return nil, err
	}
	return loader.Load(ctx)
}
