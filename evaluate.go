package datesniff

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"strings"

	"github.com/nao1215/datesniff/domain/model"
)

// Frame is the tabular data a Sniffer reads.
//
// Columns lists the column names in order, DType reports a column's declared
// storage type, and Values yields the column's non-missing values in row
// order. Deciding what counts as missing is the Frame's business. Any error a
// Frame reports, including one yielded from Values, aborts the evaluation.
type Frame interface {
	Columns(ctx context.Context) ([]string, error)
	DType(ctx context.Context, column string) (model.DType, error)
	Values(ctx context.Context, column string) iter.Seq2[model.Value, error]
}

// Verdicts maps a column name to whether the column likely holds dates.
// Only object columns appear; columns of any other dtype are left out.
type Verdicts map[string]bool

// DateColumns returns the names with a true verdict, sorted.
func (v Verdicts) DateColumns() []string {
	var names []string
	for name, ok := range v {
		if ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// ColumnReport is the outcome of walking one column.
type ColumnReport struct {
	// Name is the column name.
	Name string `json:"name"`
	// DType is the declared storage type.
	DType model.DType `json:"dtype"`
	// NonNull counts the values examined, blank strings excluded.
	NonNull int `json:"non_null"`
	// Parsable counts the values classified as dates.
	Parsable int `json:"parsable"`
	// Disqualified is set once a non-string or non-date value is seen.
	Disqualified bool `json:"disqualified"`
	// Rejected is the value that disqualified the column, if any.
	Rejected string `json:"rejected,omitempty"`
	// Verdict is true if the column likely holds dates.
	Verdict bool `json:"verdict"`
}

// Evaluate classifies every object column of frame with the default Sniffer.
func Evaluate(ctx context.Context, frame Frame) (Verdicts, error) {
	return NewSniffer().Evaluate(ctx, frame)
}

// Evaluate classifies every object column of frame. A column is a date
// column when it has at least one non-blank value and every value is a
// string that IsPotentialDatetime accepts.
func (s *Sniffer) Evaluate(ctx context.Context, frame Frame) (Verdicts, error) {
	reports, err := s.EvaluateReport(ctx, frame)
	if err != nil {
		return nil, err
	}
	verdicts := make(Verdicts, len(reports))
	for _, r := range reports {
		verdicts[r.Name] = r.Verdict
	}
	return verdicts, nil
}

// EvaluateReport is like Evaluate but returns the per-column counters, in
// column order.
func (s *Sniffer) EvaluateReport(ctx context.Context, frame Frame) ([]ColumnReport, error) {
	columns, err := frame.Columns(ctx)
	if err != nil {
		return nil, NewErrorContext("read columns", "").Error(fmt.Errorf("%w: %w", ErrFrameAccess, err))
	}

	reports := make([]ColumnReport, 0, len(columns))
	for _, name := range columns {
		dtype, err := frame.DType(ctx, name)
		if err != nil {
			return nil, NewErrorContext("read dtype", "").WithColumn(name).Error(fmt.Errorf("%w: %w", ErrFrameAccess, err))
		}
		if !dtype.IsObject() {
			continue
		}

		report, err := s.EvaluateColumn(frame.Values(ctx, name))
		if err != nil {
			return nil, NewErrorContext("read values", "").WithColumn(name).Error(err)
		}
		report.Name = name
		report.DType = dtype

		s.logger.Debug("column evaluated",
			"column", name,
			"non_null", report.NonNull,
			"parsable", report.Parsable,
			"verdict", report.Verdict,
		)
		reports = append(reports, report)
	}
	return reports, nil
}

// EvaluateColumn walks one column's values and stops at the first value that
// is not a string or not a date. Blank strings are skipped without counting.
// Only errors yielded by values are returned, wrapped in ErrFrameAccess.
func (s *Sniffer) EvaluateColumn(values iter.Seq2[model.Value, error]) (ColumnReport, error) {
	var scan columnScan
	for v, err := range values {
		if err != nil {
			return ColumnReport{}, fmt.Errorf("%w: %w", ErrFrameAccess, err)
		}
		if !scan.visit(s, v) {
			break
		}
	}
	return scan.report(), nil
}

// columnScan is the scratch state of one column walk.
type columnScan struct {
	nonNull      int
	parsable     int
	disqualified bool
	rejected     string
}

// visit records v and reports whether the walk should go on.
func (c *columnScan) visit(s *Sniffer, v model.Value) bool {
	if v.IsNull() {
		return true
	}

	str, ok := v.Str()
	if !ok {
		c.nonNull++
		c.reject(v.String())
		return false
	}

	trimmed := strings.TrimSpace(str)
	if trimmed == "" {
		return true
	}

	c.nonNull++
	if !s.IsPotentialDatetime(trimmed) {
		c.reject(trimmed)
		return false
	}
	c.parsable++
	return true
}

func (c *columnScan) reject(value string) {
	c.disqualified = true
	c.rejected = value
}

func (c *columnScan) verdict() bool {
	return !c.disqualified && c.nonNull > 0 && c.parsable == c.nonNull
}

func (c *columnScan) report() ColumnReport {
	return ColumnReport{
		NonNull:      c.nonNull,
		Parsable:     c.parsable,
		Disqualified: c.disqualified,
		Rejected:     c.rejected,
		Verdict:      c.verdict(),
	}
}
