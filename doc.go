// Package datesniff detects which text columns of a table hold dates or
// datetimes, so they can be parsed as such instead of being left as strings.
//
// A column is a date column when it has at least one non-blank value and
// every value is a string that matches a known date or datetime format.
// Columns whose storage type is not object (int64, float64, bool,
// datetime64[ns]) are never examined.
//
// # Features
//
//   - A bundled catalog of strftime date and datetime formats, extensible at runtime
//   - Per-string classification with a fallback to naive ISO 8601
//   - Column evaluation over any Frame: in-memory tables, SQLite tables or your own
//   - Loading of CSV, TSV, LTSV, Parquet, and Excel (XLSX) files
//   - Automatic handling of compressed files (gzip, bzip2, xz, zstandard)
//   - Support for multiple input sources (files, directories, io.Reader, embed.FS)
//
// # Basic Usage
//
//	tables, err := datesniff.LoadFile(ctx, "orders.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	verdicts, err := datesniff.Evaluate(ctx, tables[0])
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(verdicts.DateColumns())
//
// # Advanced Usage
//
// Use the Loader builder for several inputs, and a configured Sniffer for
// extra formats or logging:
//
//	loader, err := datesniff.NewLoader().
//	    AddPath("orders.csv").
//	    AddFS(embeddedFS).
//	    WithNullValues("-", "n/a").
//	    Build(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tables, err := loader.Load(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	catalog, err := pattern.Default().Extend([]string{"%d %m %Y"}, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	sniffer := datesniff.NewSniffer(datesniff.WithCatalog(catalog), datesniff.WithLogger(logger))
//
// # Table Naming
//
// Table names are automatically derived from file paths:
//   - "users.csv" becomes table "users"
//   - "data.tsv.gz" becomes table "data"
//   - "/path/to/logs.ltsv" becomes table "logs"
//   - "sales.xlsx" with multiple sheets becomes tables "sales_Sheet1", "sales_Sheet2", etc.
//
// # Missing Values
//
// Text formats treat the cell texts in model.DefaultNullValues as missing.
// Missing values and blank strings never count for or against a column.
// A column with nothing but missing or blank values is not a date column.
//
// # Errors
//
// Classification never fails: unparsable strings and non-string values only
// make a column's verdict false. Evaluation fails only when the Frame itself
// reports an error, wrapped in ErrFrameAccess.
package datesniff
