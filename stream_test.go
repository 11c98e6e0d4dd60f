package datesniff

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nao1215/datesniff/domain/model"
)

func parseOne(t *testing.T, fileType FileType, tableName, data string) *model.Table {
	t.Helper()

	parser := newStreamingParser(fileType, CompressionNone, tableName, nil)
	tables, err := parser.parseFromReader(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, tables, 1)
	return tables[0]
}

func requireColumn(t *testing.T, table *model.Table, name string) model.Column {
	t.Helper()

	col, ok := table.Column(name)
	require.True(t, ok, "column %s not found", name)
	return col
}

func TestStreamingParser_ParseFromReader_CSV(t *testing.T) {
	t.Parallel()

	t.Run("typed columns", func(t *testing.T) {
		t.Parallel()

		data := "id,score,active,created_at,note,empty\n" +
			"1,1.5,True,2023-01-15,NA,\n" +
			"2,2,False,2023-02-20,  ,\n" +
			"3,,true,,hello,\n"
		table := parseOne(t, FileTypeCSV, "users", data)

		assert.Equal(t, "users", table.Name())
		assert.Equal(t, model.Header{"id", "score", "active", "created_at", "note", "empty"}, table.Header())
		assert.Equal(t, 3, table.NumRows())

		assert.Equal(t, model.DTypeInt64, requireColumn(t, table, "id").DType)
		assert.Equal(t, model.DTypeFloat64, requireColumn(t, table, "score").DType)
		assert.Equal(t, model.DTypeBool, requireColumn(t, table, "active").DType)
		assert.Equal(t, model.DTypeFloat64, requireColumn(t, table, "empty").DType, "all missing column")

		created := requireColumn(t, table, "created_at")
		assert.Equal(t, model.DTypeObject, created.DType)
		assert.True(t, created.Values[2].IsNull())

		note := requireColumn(t, table, "note")
		assert.Equal(t, model.DTypeObject, note.DType)
		assert.True(t, note.Values[0].IsNull(), "NA is a null token")
		s, ok := note.Values[1].Str()
		require.True(t, ok)
		assert.Equal(t, "  ", s, "whitespace is preserved")
	})

	t.Run("empty CSV data", func(t *testing.T) {
		t.Parallel()

		parser := newStreamingParser(FileTypeCSV, CompressionNone, "empty", nil)
		_, err := parser.parseFromReader(context.Background(), strings.NewReader(""))
		require.ErrorIs(t, err, ErrEmptyData)
	})

	t.Run("duplicate header", func(t *testing.T) {
		t.Parallel()

		parser := newStreamingParser(FileTypeCSV, CompressionNone, "dup", nil)
		_, err := parser.parseFromReader(context.Background(), strings.NewReader("a,b,a\n1,2,3\n"))
		require.ErrorIs(t, err, ErrDuplicateColumnName)
	})

	t.Run("short rows are padded", func(t *testing.T) {
		t.Parallel()

		table := parseOne(t, FileTypeCSV, "ragged", "a,b\n2023-01-15,x\n2023-01-16\n")
		assert.Equal(t, 2, table.NumRows())
		assert.True(t, requireColumn(t, table, "b").Values[1].IsNull())

		verdicts, err := Evaluate(context.Background(), table)
		require.NoError(t, err)
		assert.Equal(t, Verdicts{"a": true, "b": false}, verdicts)
	})

	t.Run("long rows are rejected", func(t *testing.T) {
		t.Parallel()

		parser := newStreamingParser(FileTypeCSV, CompressionNone, "ragged", nil)
		_, err := parser.parseFromReader(context.Background(), strings.NewReader("a,b\n1,2,3\n"))
		require.ErrorIs(t, err, ErrTooManyFields)
	})

	t.Run("custom null tokens", func(t *testing.T) {
		t.Parallel()

		parser := newStreamingParser(FileTypeCSV, CompressionNone, "t", model.NewNullSet("-"))
		tables, err := parser.parseFromReader(context.Background(), strings.NewReader("v\n-\nNA\n"))
		require.NoError(t, err)

		col := requireColumn(t, tables[0], "v")
		assert.True(t, col.Values[0].IsNull())
		s, ok := col.Values[1].Str()
		require.True(t, ok)
		assert.Equal(t, "NA", s)
	})
}

func TestStreamingParser_ParseFromReader_TSV(t *testing.T) {
	t.Parallel()

	table := parseOne(t, FileTypeTSV, "events", "name\tat\nlaunch\t2023-01-15 10:30:00\nreview\t2023-02-20 09:00:00\n")

	assert.Equal(t, "events", table.Name())
	at := requireColumn(t, table, "at")
	assert.Equal(t, model.DTypeObject, at.DType)
	assert.Len(t, at.Values, 2)
}

func TestStreamingParser_ParseFromReader_LTSV(t *testing.T) {
	t.Parallel()

	data := "host:10.0.0.1\ttime:2023-01-15T10:30:00\tstatus:200\n" +
		"\n" +
		"host:10.0.0.2\tstatus:404\tsize:12\n"
	table := parseOne(t, FileTypeLTSV, "access", data)

	assert.Equal(t, model.Header{"host", "time", "status", "size"}, table.Header(), "labels keep first-seen order")
	assert.Equal(t, model.DTypeInt64, requireColumn(t, table, "status").DType)

	timeCol := requireColumn(t, table, "time")
	assert.Equal(t, model.DTypeObject, timeCol.DType)
	assert.True(t, timeCol.Values[1].IsNull(), "a missing label is a missing cell")

	t.Run("no records", func(t *testing.T) {
		t.Parallel()

		parser := newStreamingParser(FileTypeLTSV, CompressionNone, "t", nil)
		_, err := parser.parseFromReader(context.Background(), strings.NewReader("\n\nnot ltsv\n"))
		require.ErrorIs(t, err, ErrEmptyData)
	})
}

func TestStreamingParser_ParseFromReader_Compressed(t *testing.T) {
	t.Parallel()

	const data = "name,joined\nAlice,2023-01-15\nBob,2023-02-20\n"

	for _, compression := range []CompressionType{CompressionGZ, CompressionXZ, CompressionZSTD} {
		t.Run(compression.String(), func(t *testing.T) {
			t.Parallel()

			path := writeCompressed(t, t.TempDir(), "users.csv", data, compression)
			compressed, err := os.ReadFile(path) //nolint:gosec // test fixture
			require.NoError(t, err)

			parser := newStreamingParser(FileTypeCSV, compression, "users", nil)
			tables, err := parser.parseFromReader(context.Background(), bytes.NewReader(compressed))
			require.NoError(t, err)
			require.Len(t, tables, 1)
			assert.Equal(t, 2, tables[0].NumRows())
		})
	}

	for _, compression := range []CompressionType{CompressionGZ, CompressionBZ2, CompressionXZ, CompressionZSTD} {
		t.Run("corrupt "+compression.String(), func(t *testing.T) {
			t.Parallel()

			parser := newStreamingParser(FileTypeCSV, compression, "bad", nil)
			_, err := parser.parseFromReader(context.Background(), strings.NewReader("definitely not compressed"))
			require.Error(t, err)
		})
	}
}

func TestStreamingParser_UnsupportedType(t *testing.T) {
	t.Parallel()

	parser := newStreamingParser(FileTypeUnsupported, CompressionNone, "x", nil)
	_, err := parser.parseFromReader(context.Background(), strings.NewReader("a\n1\n"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestParquetStreaming(t *testing.T) {
	t.Parallel()

	path := writeParquet(t, t.TempDir(), "orders.parquet")
	data, err := os.ReadFile(path) //nolint:gosec // test fixture
	require.NoError(t, err)

	parser := newStreamingParser(FileTypeParquet, CompressionNone, "orders", nil)
	tables, err := parser.parseFromReader(context.Background(), bytes.NewReader(data))
	require.NoError(t, err)
	require.Len(t, tables, 1)

	table := tables[0]
	assert.Equal(t, "orders", table.Name())
	assert.Equal(t, model.Header{"id", "ordered_on", "note", "shipped_at"}, table.Header())

	assert.Equal(t, model.DTypeInt64, requireColumn(t, table, "id").DType)
	assert.Equal(t, model.DTypeDatetime, requireColumn(t, table, "shipped_at").DType)

	ordered := requireColumn(t, table, "ordered_on")
	assert.Equal(t, model.DTypeObject, ordered.DType)
	require.Len(t, ordered.Values, 3)
	s, ok := ordered.Values[0].Str()
	require.True(t, ok)
	assert.Equal(t, "2023-01-15", s)

	note := requireColumn(t, table, "note")
	assert.True(t, note.Values[1].IsNull())

	t.Run("empty data", func(t *testing.T) {
		t.Parallel()

		_, err := parser.parseFromReader(context.Background(), bytes.NewReader(nil))
		require.ErrorIs(t, err, ErrEmptyData)
	})
}

func TestDtypeFromArrow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dt   arrow.DataType
		want model.DType
	}{
		{arrow.BinaryTypes.String, model.DTypeObject},
		{arrow.BinaryTypes.Binary, model.DTypeObject},
		{arrow.PrimitiveTypes.Int32, model.DTypeInt64},
		{arrow.PrimitiveTypes.Uint16, model.DTypeInt64},
		{arrow.PrimitiveTypes.Float32, model.DTypeFloat64},
		{arrow.FixedWidthTypes.Boolean, model.DTypeBool},
		{arrow.FixedWidthTypes.Date32, model.DTypeDatetime},
		{&arrow.TimestampType{Unit: arrow.Millisecond}, model.DTypeDatetime},
		{arrow.ListOf(arrow.PrimitiveTypes.Int32), model.DTypeObject},
	}

	for _, tt := range tests {
		t.Run(tt.dt.String(), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, dtypeFromArrow(tt.dt))
		})
	}
}

func TestValueFromArrow(t *testing.T) {
	t.Parallel()
	pool := memory.NewGoAllocator()

	t.Run("Boolean array", func(t *testing.T) {
		t.Parallel()

		builder := array.NewBooleanBuilder(pool)
		defer builder.Release()
		builder.Append(true)
		builder.AppendNull()
		arr := builder.NewBooleanArray()
		defer arr.Release()

		assert.Equal(t, model.BoolValue(true), valueFromArrow(arr, 0))
		assert.True(t, valueFromArrow(arr, 1).IsNull())
	})

	t.Run("Integer arrays", func(t *testing.T) {
		t.Parallel()

		int8Builder := array.NewInt8Builder(pool)
		defer int8Builder.Release()
		int8Builder.Append(42)
		int8Arr := int8Builder.NewInt8Array()
		defer int8Arr.Release()
		assert.Equal(t, model.IntValue(42), valueFromArrow(int8Arr, 0))

		int64Builder := array.NewInt64Builder(pool)
		defer int64Builder.Release()
		int64Builder.Append(9223372036854775807)
		int64Arr := int64Builder.NewInt64Array()
		defer int64Arr.Release()
		assert.Equal(t, model.IntValue(9223372036854775807), valueFromArrow(int64Arr, 0))

		uint32Builder := array.NewUint32Builder(pool)
		defer uint32Builder.Release()
		uint32Builder.Append(4294967295)
		uint32Arr := uint32Builder.NewUint32Array()
		defer uint32Arr.Release()
		assert.Equal(t, model.IntValue(4294967295), valueFromArrow(uint32Arr, 0))
	})

	t.Run("Float arrays", func(t *testing.T) {
		t.Parallel()

		float64Builder := array.NewFloat64Builder(pool)
		defer float64Builder.Release()
		float64Builder.Append(2.5)
		float64Arr := float64Builder.NewFloat64Array()
		defer float64Arr.Release()
		assert.Equal(t, model.FloatValue(2.5), valueFromArrow(float64Arr, 0))
	})

	t.Run("String array", func(t *testing.T) {
		t.Parallel()

		stringBuilder := array.NewStringBuilder(pool)
		defer stringBuilder.Release()
		stringBuilder.Append("2023-01-15")
		stringBuilder.Append("")
		stringBuilder.AppendNull()
		stringArr := stringBuilder.NewStringArray()
		defer stringArr.Release()

		assert.Equal(t, model.StringValue("2023-01-15"), valueFromArrow(stringArr, 0))
		assert.Equal(t, model.StringValue(""), valueFromArrow(stringArr, 1))
		assert.True(t, valueFromArrow(stringArr, 2).IsNull())
	})

	t.Run("Binary array", func(t *testing.T) {
		t.Parallel()

		binaryBuilder := array.NewBinaryBuilder(pool, arrow.BinaryTypes.Binary)
		defer binaryBuilder.Release()
		binaryBuilder.Append([]byte("binary data"))
		binaryArr := binaryBuilder.NewBinaryArray()
		defer binaryArr.Release()

		v := valueFromArrow(binaryArr, 0)
		assert.Equal(t, model.KindBytes, v.Kind())
		_, ok := v.Str()
		assert.False(t, ok)
	})

	t.Run("Date and timestamp arrays", func(t *testing.T) {
		t.Parallel()

		date32Builder := array.NewDate32Builder(pool)
		defer date32Builder.Release()
		date32Builder.Append(arrow.Date32FromTime(time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)))
		date32Arr := date32Builder.NewDate32Array()
		defer date32Arr.Release()

		got, ok := valueFromArrow(date32Arr, 0).Time()
		require.True(t, ok)
		assert.True(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).Equal(got))

		timestampBuilder := array.NewTimestampBuilder(pool, &arrow.TimestampType{Unit: arrow.Millisecond})
		defer timestampBuilder.Release()
		timestampBuilder.Append(arrow.Timestamp(1609459200000)) // 2021-01-01 in milliseconds
		timestampArr := timestampBuilder.NewTimestampArray()
		defer timestampArr.Release()

		got, ok = valueFromArrow(timestampArr, 0).Time()
		require.True(t, ok)
		assert.True(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC).Equal(got))
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()

		listBuilder := array.NewListBuilder(pool, arrow.PrimitiveTypes.Int32)
		defer listBuilder.Release()
		valueBuilder, ok := listBuilder.ValueBuilder().(*array.Int32Builder)
		require.True(t, ok)
		listBuilder.Append(true)
		valueBuilder.Append(1)
		valueBuilder.Append(2)
		listArr := listBuilder.NewListArray()
		defer listArr.Release()

		v := valueFromArrow(listArr, 0)
		assert.Equal(t, model.KindOther, v.Kind())
		assert.NotEmpty(t, v.String())
	})
}

func TestStreamingParser_ParseFromReader_XLSX(t *testing.T) {
	t.Parallel()

	t.Run("one table per sheet", func(t *testing.T) {
		t.Parallel()

		buf := writeXLSX(t, map[string][][]any{
			"Sheet1": {
				{"id", "joined", "mixed", "flag", "score"},
				{1, "2023-01-15", 42, true, 1.5},
				{2, "2023-02-20", "2023-01-15", false, 2},
				{3, "NA", nil, true, nil},
			},
			"Notes": {
				{"text"},
				{"hello"},
			},
		})

		parser := newStreamingParser(FileTypeXLSX, CompressionNone, "book", nil)
		tables, err := parser.parseFromReader(context.Background(), buf)
		require.NoError(t, err)
		require.Len(t, tables, 2)

		sheet1 := tables[0]
		assert.Equal(t, "book_Sheet1", sheet1.Name())
		assert.Equal(t, "book_Notes", tables[1].Name())

		assert.Equal(t, model.DTypeInt64, requireColumn(t, sheet1, "id").DType)
		assert.Equal(t, model.DTypeBool, requireColumn(t, sheet1, "flag").DType)
		assert.Equal(t, model.DTypeFloat64, requireColumn(t, sheet1, "score").DType)

		joined := requireColumn(t, sheet1, "joined")
		assert.Equal(t, model.DTypeObject, joined.DType)
		assert.True(t, joined.Values[2].IsNull(), "NA text is a null token")

		mixed := requireColumn(t, sheet1, "mixed")
		assert.Equal(t, model.DTypeObject, mixed.DType)
		assert.Equal(t, model.KindInteger, mixed.Values[0].Kind())
		assert.Equal(t, model.KindString, mixed.Values[1].Kind())
		assert.True(t, mixed.Values[2].IsNull())
	})

	t.Run("empty workbook", func(t *testing.T) {
		t.Parallel()

		buf := writeXLSX(t, nil)
		parser := newStreamingParser(FileTypeXLSX, CompressionNone, "empty", nil)
		_, err := parser.parseFromReader(context.Background(), buf)
		require.ErrorIs(t, err, ErrEmptyData)
	})

	t.Run("duplicate header", func(t *testing.T) {
		t.Parallel()

		buf := writeXLSX(t, map[string][][]any{
			"Sheet1": {{"a", "a"}, {1, 2}},
		})
		parser := newStreamingParser(FileTypeXLSX, CompressionNone, "dup", nil)
		_, err := parser.parseFromReader(context.Background(), buf)
		require.ErrorIs(t, err, ErrDuplicateColumnName)
	})
}

// writeXLSX builds a workbook in memory. Sheet1 always exists; a nil cell is left empty.
func writeXLSX(t *testing.T, sheets map[string][][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer func() {
		_ = f.Close() // Ignore close error in test
	}()

	names := []string{"Sheet1"}
	for name := range sheets {
		if name != "Sheet1" {
			names = append(names, name)
		}
	}

	for _, name := range names {
		rows, ok := sheets[name]
		if !ok {
			continue
		}
		if name != "Sheet1" {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range rows {
			for c, v := range row {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, v))
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

// writeParquet writes a small orders table with int, string, nullable string
// and timestamp columns.
func writeParquet(t *testing.T, dir, name string) string {
	t.Helper()

	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "ordered_on", Type: arrow.BinaryTypes.String},
		{Name: "note", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "shipped_at", Type: &arrow.TimestampType{Unit: arrow.Millisecond}},
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"2023-01-15", "2023-02-20", "2023-03-25"}, nil)
	b.Field(2).(*array.StringBuilder).AppendValues([]string{"first", "", "third"}, []bool{true, false, true})
	b.Field(3).(*array.TimestampBuilder).AppendValues([]arrow.Timestamp{1673778600000, 1676883600000, 1679738400000}, nil)

	rec := b.NewRecord()
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	path := filepath.Join(dir, name)
	out, err := os.Create(path) //nolint:gosec // test fixture
	require.NoError(t, err)
	defer func() {
		_ = out.Close() // Ignore close error in test
	}()

	require.NoError(t, pqarrow.WriteTable(tbl, out, 1024, nil, pqarrow.DefaultWriterProps()))
	return path
}
