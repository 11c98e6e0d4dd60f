// Package pattern provides the catalog of date and datetime formats that
// datesniff tries when deciding whether a string looks like a date.
//
// Formats are written with strftime tokens (%Y, %m, %d, %H, %M, %S, %I, %p,
// %b, %B, %a, %A, %y) and compiled once into Go time layouts. The bundled
// catalog is read from date_formats.txt and datetime_formats.txt, one format
// per line, on first use.
package pattern

import (
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ncruces/go-strftime"
)

var (
	//go:embed date_formats.txt
	dateFormatsText string

	//go:embed datetime_formats.txt
	datetimeFormatsText string
)

// ErrUnsupportedFormat is returned when a format cannot be expressed as a Go time layout.
var ErrUnsupportedFormat = errors.New("pattern: unsupported format")

// Pattern is one strftime format together with its Go layout.
type Pattern struct {
	format string
	layout string
	// foldCase upper-cases input before parsing; Go only reads "AM" and "PM"
	foldCase bool
}

// Compile converts a strftime format into a Pattern.
//
// %m, %d and %I accept one or two digits when a literal separates them from
// the neighbouring fields, so "1/5/2023" matches %m/%d/%Y. Runs of adjacent
// numeric fields such as %Y%m%d keep their fixed width.
func Compile(format string) (Pattern, error) {
	layout, err := strftime.Layout(unpadDelimited(format))
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: %q: %w", ErrUnsupportedFormat, format, err)
	}
	return Pattern{format: format, layout: layout, foldCase: strings.Contains(layout, "PM")}, nil
}

// directive is one lexical element of a strftime format: a single literal
// byte or a %-directive with its optional flag.
type directive struct {
	text string
	spec byte // zero for literals
}

// numeric reports whether the directive parses a run of digits.
func (d directive) numeric() bool {
	return d.spec != 0 && strings.IndexByte("YmdHIMSyj", d.spec) >= 0
}

func splitDirectives(format string) []directive {
	var out []directive
	for i := 0; i < len(format); {
		if format[i] == '%' && i+1 < len(format) {
			j := i + 1
			if format[j] == '-' || format[j] == ':' {
				j++
			}
			if j < len(format) {
				out = append(out, directive{text: format[i : j+1], spec: format[j]})
				i = j + 1
				continue
			}
		}
		out = append(out, directive{text: format[i : i+1]})
		i++
	}
	return out
}

// unpadDelimited adds the '-' flag to plain %m, %d and %I directives whose
// neighbours are not numeric.
func unpadDelimited(format string) string {
	parts := splitDirectives(format)
	var b strings.Builder
	for i, d := range parts {
		delimited := (i == 0 || !parts[i-1].numeric()) && (i == len(parts)-1 || !parts[i+1].numeric())
		if len(d.text) == 2 && strings.IndexByte("mdI", d.spec) >= 0 && delimited {
			b.WriteString("%-")
			b.WriteByte(d.spec)
			continue
		}
		b.WriteString(d.text)
	}
	return b.String()
}

// Format returns the strftime format.
func (p Pattern) Format() string {
	return p.format
}

// Layout returns the Go time layout.
func (p Pattern) Layout() string {
	return p.layout
}

// Parse parses s. The whole string must be consumed. Month and day names
// and the AM/PM marker match in any case.
func (p Pattern) Parse(s string) (time.Time, error) {
	if p.foldCase {
		s = strings.ToUpper(s)
	}
	return time.Parse(p.layout, s)
}

// Match reports whether s parses under the pattern.
func (p Pattern) Match(s string) bool {
	_, err := p.Parse(s)
	return err == nil
}

// String returns the strftime format.
func (p Pattern) String() string {
	return p.format
}

// Catalog holds the ordered date-only and datetime patterns.
// A Catalog never changes after construction and is safe for concurrent use.
type Catalog struct {
	date     []Pattern
	datetime []Pattern
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	return MustFromText(dateFormatsText, datetimeFormatsText)
})

// Default returns the bundled catalog. It is built on first call.
func Default() *Catalog {
	return defaultCatalog()
}

// New compiles a catalog from date-only and datetime formats, keeping their order.
func New(dateFormats, datetimeFormats []string) (*Catalog, error) {
	date, err := compileAll(dateFormats)
	if err != nil {
		return nil, err
	}
	datetime, err := compileAll(datetimeFormats)
	if err != nil {
		return nil, err
	}
	return &Catalog{date: date, datetime: datetime}, nil
}

// FromText compiles a catalog from two newline separated format lists.
func FromText(dateText, datetimeText string) (*Catalog, error) {
	return New(ParseLines(dateText), ParseLines(datetimeText))
}

// MustFromText is like FromText but panics if a format cannot be compiled.
func MustFromText(dateText, datetimeText string) *Catalog {
	c, err := FromText(dateText, datetimeText)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseLines splits text into one format per line, trimming whitespace and
// dropping blank lines.
func ParseLines(text string) []string {
	var formats []string
	for line := range strings.Lines(text) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		formats = append(formats, line)
	}
	return formats
}

func compileAll(formats []string) ([]Pattern, error) {
	patterns := make([]Pattern, 0, len(formats))
	for _, f := range formats {
		p, err := Compile(f)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, nil
}

// Extend returns a new catalog with extra formats appended after the existing ones.
func (c *Catalog) Extend(dateFormats, datetimeFormats []string) (*Catalog, error) {
	extra, err := New(dateFormats, datetimeFormats)
	if err != nil {
		return nil, err
	}
	return &Catalog{
		date:     slices.Concat(c.date, extra.date),
		datetime: slices.Concat(c.datetime, extra.datetime),
	}, nil
}

// DatePatterns returns the date-only patterns in catalog order.
func (c *Catalog) DatePatterns() []Pattern {
	return slices.Clone(c.date)
}

// DatetimePatterns returns the datetime patterns in catalog order.
func (c *Catalog) DatetimePatterns() []Pattern {
	return slices.Clone(c.datetime)
}

// Len returns the total number of patterns.
func (c *Catalog) Len() int {
	return len(c.date) + len(c.datetime)
}

// MatchDatetime returns the first datetime pattern that parses s.
func (c *Catalog) MatchDatetime(s string) (Pattern, bool) {
	_, p, ok := firstMatch(c.datetime, s)
	return p, ok
}

// MatchDate returns the first date-only pattern that parses s.
func (c *Catalog) MatchDate(s string) (Pattern, bool) {
	_, p, ok := firstMatch(c.date, s)
	return p, ok
}

// ParseDatetime parses s with the first datetime pattern that accepts it.
func (c *Catalog) ParseDatetime(s string) (time.Time, Pattern, bool) {
	return firstMatch(c.datetime, s)
}

// ParseDate parses s with the first date-only pattern that accepts it.
func (c *Catalog) ParseDate(s string) (time.Time, Pattern, bool) {
	return firstMatch(c.date, s)
}

func firstMatch(patterns []Pattern, s string) (time.Time, Pattern, bool) {
	for _, p := range patterns {
		if t, err := p.Parse(s); err == nil {
			return t, p, true
		}
	}
	return time.Time{}, Pattern{}, false
}
