//nolint:errcheck // Test cleanup error handling is intentionally ignored
package datesniff

import (
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// writeCompressed writes data to dir/name plus the compression extension.
// bzip2 has no writer in the standard library, so CompressionBZ2 is not accepted.
func writeCompressed(t *testing.T, dir, name, data string, compression CompressionType) string {
	t.Helper()

	path := filepath.Join(dir, name+compression.Extension())
	f, err := os.Create(path) //nolint:gosec // test fixture
	require.NoError(t, err)
	defer f.Close()

	var w io.WriteCloser
	switch compression {
	case CompressionNone:
		_, err = f.WriteString(data)
		require.NoError(t, err)
		return path
	case CompressionGZ:
		w = gzip.NewWriter(f)
	case CompressionXZ:
		w, err = xz.NewWriter(f)
		require.NoError(t, err)
	case CompressionZSTD:
		w, err = zstd.NewWriter(f)
		require.NoError(t, err)
	default:
		t.Fatalf("no writer for %s", compression)
	}

	_, err = w.Write([]byte(data))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return path
}

func TestCompressionType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		compression CompressionType
		name        string
		extension   string
	}{
		{CompressionNone, "none", ""},
		{CompressionGZ, "gz", ".gz"},
		{CompressionBZ2, "bz2", ".bz2"},
		{CompressionXZ, "xz", ".xz"},
		{CompressionZSTD, "zstd", ".zst"},
		{CompressionType(99), "none", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.name, tt.compression.String())
			assert.Equal(t, tt.extension, tt.compression.Extension())
		})
	}
}

func TestDetectCompressionType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want CompressionType
	}{
		{"data.csv", CompressionNone},
		{"data.csv.gz", CompressionGZ},
		{"DATA.CSV.GZ", CompressionGZ},
		{"data.tsv.bz2", CompressionBZ2},
		{"data.ltsv.xz", CompressionXZ},
		{"data.parquet.zst", CompressionZSTD},
		{"archive.tar", CompressionNone},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, detectCompressionType(tt.path))
		})
	}
}

func TestNewDecompressedReader(t *testing.T) {
	t.Parallel()

	const data = "This is test data for compression testing.\nLine 2\nLine 3"

	for _, compression := range []CompressionType{CompressionNone, CompressionGZ, CompressionXZ, CompressionZSTD} {
		t.Run(compression.String(), func(t *testing.T) {
			t.Parallel()

			path := writeCompressed(t, t.TempDir(), "test.txt", data, compression)
			raw, err := os.ReadFile(path) //nolint:gosec // test fixture
			require.NoError(t, err)

			reader, cleanup, err := newDecompressedReader(bytes.NewReader(raw), compression)
			require.NoError(t, err)
			defer cleanup()

			got, err := io.ReadAll(reader)
			require.NoError(t, err)
			assert.Equal(t, data, string(got))
		})
	}

	t.Run("invalid gzip header", func(t *testing.T) {
		t.Parallel()

		_, _, err := newDecompressedReader(strings.NewReader("not gzip"), CompressionGZ)
		require.Error(t, err)
	})

	t.Run("invalid xz header", func(t *testing.T) {
		t.Parallel()

		_, _, err := newDecompressedReader(strings.NewReader("not xz"), CompressionXZ)
		require.Error(t, err)
	})

	t.Run("invalid bzip2 data fails on read", func(t *testing.T) {
		t.Parallel()

		reader, cleanup, err := newDecompressedReader(strings.NewReader("not bzip2"), CompressionBZ2)
		require.NoError(t, err)
		defer cleanup()

		_, err = io.ReadAll(reader)
		require.Error(t, err)
	})

	t.Run("unknown compression", func(t *testing.T) {
		t.Parallel()

		_, _, err := newDecompressedReader(strings.NewReader(""), CompressionType(99))
		require.Error(t, err)
	})
}

func TestFile_OpenReader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeCompressed(t, dir, "users.csv", "name\nAlice\n", CompressionZSTD)

	reader, cleanup, err := newFile(path).openReader()
	require.NoError(t, err)
	defer cleanup()

	got, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "name\nAlice\n", string(got))

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, _, err := newFile(filepath.Join(dir, "missing.csv")).openReader()
		require.Error(t, err)
	})
}
