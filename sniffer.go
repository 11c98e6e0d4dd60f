package datesniff

import (
	"io"
	"log/slog"
	"time"

	"github.com/nao1215/datesniff/pattern"
)

// DefaultMinLength is the shortest string the classifier will try to parse.
// No realistic date representation fits in fewer bytes, and short numeric
// tokens such as "2023" or "1/2" would otherwise match loose formats.
const DefaultMinLength = 6

// Layouts tried after every catalog pattern has failed, datetime first.
// They read naive ISO 8601 only: a zone suffix such as "Z" or "+09:00" is
// not accepted.
var (
	fallbackDatetimeLayouts = []string{"2006-1-2T15:04:05", "2006-1-2t15:04:05"}
	fallbackDateLayouts     = []string{"2006-1-2"}
)

// Sniffer decides whether strings and columns look like dates.
// A Sniffer is immutable after construction and safe for concurrent use.
type Sniffer struct {
	catalog   *pattern.Catalog
	logger    *slog.Logger
	minLength int
}

// Option configures a Sniffer.
type Option func(*Sniffer)

// WithCatalog replaces the bundled pattern catalog.
func WithCatalog(catalog *pattern.Catalog) Option {
	return func(s *Sniffer) {
		if catalog != nil {
			s.catalog = catalog
		}
	}
}

// WithLogger sets the logger used for per-column debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sniffer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMinLength changes the minimum string length, DefaultMinLength by default.
func WithMinLength(n int) Option {
	return func(s *Sniffer) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// NewSniffer creates a Sniffer backed by the bundled catalog unless
// WithCatalog says otherwise.
func NewSniffer(opts ...Option) *Sniffer {
	s := &Sniffer{
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		minLength: DefaultMinLength,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = pattern.Default()
	}
	return s
}

// Catalog returns the pattern catalog in use.
func (s *Sniffer) Catalog() *pattern.Catalog {
	return s.catalog
}

// IsPotentialDatetime reports whether s, already trimmed, is a date or datetime.
// Datetime patterns are tried before date-only patterns, each in catalog
// order, then Go's standard ISO 8601 layouts. A failed parse is a "no", never an error.
func (s *Sniffer) IsPotentialDatetime(str string) bool {
	_, ok := s.ParseDatetime(str)
	return ok
}

// ParseDatetime parses str with the first format that accepts it, in the
// same order IsPotentialDatetime uses.
func (s *Sniffer) ParseDatetime(str string) (time.Time, bool) {
	if len(str) < s.minLength {
		return time.Time{}, false
	}

	if t, _, ok := s.catalog.ParseDatetime(str); ok {
		return t, true
	}
	if t, _, ok := s.catalog.ParseDate(str); ok {
		return t, true
	}

	for _, layout := range fallbackDatetimeLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, true
		}
	}
	for _, layout := range fallbackDateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
