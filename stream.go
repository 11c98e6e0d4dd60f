package datesniff

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/datesniff/domain/model"
)

// streamingParser turns one input stream into typed tables
type streamingParser struct {
	fileType    FileType
	compression CompressionType
	tableName   string
	nulls       model.NullSet
}

// newStreamingParser creates a new streaming parser
func newStreamingParser(fileType FileType, compression CompressionType, tableName string, nulls model.NullSet) *streamingParser {
	if nulls == nil {
		nulls = model.NewNullSet()
	}
	return &streamingParser{
		fileType:    fileType,
		compression: compression,
		tableName:   tableName,
		nulls:       nulls,
	}
}

// parseFromReader parses data from reader. XLSX input yields one table per
// non-empty sheet, every other format yields exactly one table.
func (p *streamingParser) parseFromReader(ctx context.Context, reader io.Reader) ([]*model.Table, error) {
	decompressed, cleanup, err := newDecompressedReader(reader, p.compression)
	if err != nil {
		return nil, fmt.Errorf("failed to create decompressed reader: %w", err)
	}
	defer func() {
		_ = cleanup() // Ignore close error in cleanup
	}()

	var t *model.Table
	switch p.fileType {
	case FileTypeCSV:
		t, err = p.parseDelimitedStream(decompressed, csvDelimiter)
	case FileTypeTSV:
		t, err = p.parseDelimitedStream(decompressed, tsvDelimiter)
	case FileTypeLTSV:
		t, err = p.parseLTSVStream(decompressed)
	case FileTypeParquet:
		t, err = p.parseParquetStream(ctx, decompressed)
	case FileTypeXLSX:
		return p.parseXLSXStream(decompressed)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, p.tableName)
	}
	if err != nil {
		return nil, err
	}
	return []*model.Table{t}, nil
}

// parseDelimitedStream parses CSV or TSV data. Cell text is kept as written;
// only the configured null tokens count as missing.
func (p *streamingParser) parseDelimitedStream(reader io.Reader, delimiter rune) (*model.Table, error) {
	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1 // short rows become missing cells
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", p.fileType, err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrEmptyData, p.fileType, p.tableName)
	}

	if err := validateColumnNames(records[0]); err != nil {
		return nil, err
	}
	header := model.NewHeader(records[0])

	rows := make([]model.Record, 0, len(records)-1)
	for i, r := range records[1:] {
		if len(r) > len(header) {
			return nil, fmt.Errorf("%w: %s %s: record %d has %d fields, header has %d",
				ErrTooManyFields, p.fileType, p.tableName, i+1, len(r), len(header))
		}
		rows = append(rows, model.NewRecord(r))
	}
	return model.NewTable(p.tableName, model.ColumnsFromRecords(header, rows, p.nulls)...), nil
}

// parseLTSVStream parses LTSV data. Columns appear in the order their label
// is first seen; a record without a label has a missing cell there.
func (p *streamingParser) parseLTSVStream(reader io.Reader) (*model.Table, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read LTSV: %w", err)
	}

	var (
		header    model.Header
		seen      = make(map[string]bool)
		recordMap []map[string]string
	)
	for line := range strings.Lines(string(content)) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := make(map[string]string)
		for pair := range strings.SplitSeq(line, "\t") {
			key, value, ok := strings.Cut(pair, ":")
			if !ok {
				continue
			}
			key = strings.TrimSpace(key)
			fields[key] = strings.TrimSpace(value)
			if !seen[key] {
				seen[key] = true
				header = append(header, key)
			}
		}
		if len(fields) > 0 {
			recordMap = append(recordMap, fields)
		}
	}

	if len(recordMap) == 0 {
		return nil, fmt.Errorf("%w: no valid LTSV records in %s", ErrEmptyData, p.tableName)
	}

	rows := make([]model.Record, 0, len(recordMap))
	for _, fields := range recordMap {
		row := make(model.Record, len(header))
		for i, key := range header {
			row[i] = fields[key]
		}
		rows = append(rows, row)
	}
	return model.NewTable(p.tableName, model.ColumnsFromRecords(header, rows, p.nulls)...), nil
}

// parseParquetStream parses Parquet data. The column dtype comes from the
// Arrow schema rather than from the values.
func (p *streamingParser) parseParquetStream(ctx context.Context, reader io.Reader) (*model.Table, error) {
	// Read all data into memory (Parquet requires random access)
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: parquet %s", ErrEmptyData, p.tableName)
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader from bytes: %w", err)
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	tbl, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer tbl.Release()

	schema := tbl.Schema()
	names := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		names[i] = field.Name
	}
	if err := validateColumnNames(names); err != nil {
		return nil, err
	}

	columns := make([]model.Column, 0, len(names))
	for i, name := range names {
		col := tbl.Column(i)
		values := make([]model.Value, 0, tbl.NumRows())
		for _, chunk := range col.Data().Chunks() {
			for j := range chunk.Len() {
				values = append(values, valueFromArrow(chunk, j))
			}
		}
		columns = append(columns, model.NewColumn(name, dtypeFromArrow(col.DataType()), values...))
	}
	return model.NewTable(p.tableName, columns...), nil
}

// dtypeFromArrow maps an Arrow type to the storage type pandas gives it
func dtypeFromArrow(dt arrow.DataType) model.DType {
	switch dt.ID() {
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return model.DTypeInt64
	case arrow.FLOAT32, arrow.FLOAT64:
		return model.DTypeFloat64
	case arrow.BOOL:
		return model.DTypeBool
	case arrow.TIMESTAMP, arrow.DATE32, arrow.DATE64:
		return model.DTypeDatetime
	default:
		return model.DTypeObject
	}
}

// valueFromArrow extracts row i of arr. Buffers are copied so the value
// outlives the Arrow table.
func valueFromArrow(arr arrow.Array, i int) model.Value {
	if arr.IsNull(i) {
		return model.Null()
	}

	switch a := arr.(type) {
	case *array.String:
		return model.StringValue(strings.Clone(a.Value(i)))
	case *array.LargeString:
		return model.StringValue(strings.Clone(a.Value(i)))
	case *array.Binary:
		return model.NewValue(bytes.Clone(a.Value(i)))
	case *array.Boolean:
		return model.BoolValue(a.Value(i))
	case *array.Int8:
		return model.IntValue(int64(a.Value(i)))
	case *array.Int16:
		return model.IntValue(int64(a.Value(i)))
	case *array.Int32:
		return model.IntValue(int64(a.Value(i)))
	case *array.Int64:
		return model.IntValue(a.Value(i))
	case *array.Uint8:
		return model.IntValue(int64(a.Value(i)))
	case *array.Uint16:
		return model.IntValue(int64(a.Value(i)))
	case *array.Uint32:
		return model.IntValue(int64(a.Value(i)))
	case *array.Uint64:
		return model.IntValue(int64(a.Value(i))) //nolint:gosec // pandas stores uint64 beyond int64 as object; wrap-around is accepted here
	case *array.Float32:
		return model.FloatValue(float64(a.Value(i)))
	case *array.Float64:
		return model.FloatValue(a.Value(i))
	case *array.Timestamp:
		unit := a.DataType().(*arrow.TimestampType).Unit
		return model.TimeValue(a.Value(i).ToTime(unit))
	case *array.Date32:
		return model.TimeValue(a.Value(i).ToTime())
	case *array.Date64:
		return model.TimeValue(a.Value(i).ToTime())
	default:
		return model.OtherValue(arr.ValueStr(i))
	}
}

// parseXLSXStream parses every sheet of an XLSX workbook into its own table
// named <file>_<sheet>. Sheets without a header row are skipped.
func (p *streamingParser) parseXLSXStream(reader io.Reader) ([]*model.Table, error) {
	// Open XLSX directly from the reader (excelize will buffer as needed)
	xlsxFile, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX file: %w", err)
	}
	defer func() {
		_ = xlsxFile.Close() // Ignore close error
	}()

	var tables []*model.Table
	for _, sheet := range xlsxFile.GetSheetList() {
		t, err := p.parseXLSXSheet(xlsxFile, sheet)
		if errors.Is(err, ErrEmptyData) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no sheet with data in XLSX %s", ErrEmptyData, p.tableName)
	}
	return tables, nil
}

// parseXLSXSheet reads one sheet. The first non-empty row is the header.
func (p *streamingParser) parseXLSXSheet(xlsxFile *excelize.File, sheet string) (*model.Table, error) {
	rows, err := xlsxFile.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	headerRow := -1
	for i, row := range rows {
		if len(row) > 0 {
			headerRow = i
			break
		}
	}
	if headerRow < 0 {
		return nil, fmt.Errorf("%w: sheet %s", ErrEmptyData, sheet)
	}

	header := rows[headerRow]
	if err := validateColumnNames(header); err != nil {
		return nil, err
	}

	body := rows[headerRow+1:]
	columns := make([]model.Column, 0, len(header))
	for c, name := range header {
		values := make([]model.Value, 0, len(body))
		for r, row := range body {
			raw := ""
			if c < len(row) {
				raw = row[c]
			}
			v, err := p.xlsxCellValue(xlsxFile, sheet, c+1, headerRow+r+2, raw)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		columns = append(columns, model.NewColumnFromValues(name, values))
	}
	return model.NewTable(p.tableName+"_"+sheet, columns...), nil
}

// xlsxCellValue types one cell from its stored cell type. Numbers and
// booleans keep their kind; text goes through the null tokens like CSV text.
func (p *streamingParser) xlsxCellValue(xlsxFile *excelize.File, sheet string, col, row int, raw string) (model.Value, error) {
	if raw == "" {
		return model.Null(), nil
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return model.Null(), err
	}
	cellType, err := xlsxFile.GetCellType(sheet, cell)
	if err != nil {
		return model.Null(), fmt.Errorf("failed to read cell type %s!%s: %w", sheet, cell, err)
	}

	switch cellType {
	case excelize.CellTypeBool:
		return model.BoolValue(raw == "1" || strings.EqualFold(raw, "true")), nil
	case excelize.CellTypeError:
		return model.Null(), nil
	case excelize.CellTypeDate:
		if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			return model.TimeValue(t), nil
		}
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return model.IntValue(i), nil
		}
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return model.FloatValue(f), nil
		}
	}

	if p.nulls.Contains(raw) {
		return model.Null(), nil
	}
	return model.StringValue(raw), nil
}
