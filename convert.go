package datesniff

import (
	"context"
	"strings"

	"github.com/nao1215/datesniff/domain/model"
)

// Convert evaluates table and returns a copy in which every column with a
// true verdict is retyped datetime64[ns]. Its strings are parsed with
// ParseDatetime and blank strings become null. Other columns are shared
// with the input unchanged.
func (s *Sniffer) Convert(ctx context.Context, table *model.Table) (*model.Table, Verdicts, error) {
	verdicts, err := s.Evaluate(ctx, table)
	if err != nil {
		return nil, nil, err
	}

	header := table.Header()
	columns := make([]model.Column, 0, len(header))
	for _, name := range header {
		col, _ := table.Column(name)
		if verdicts[name] {
			col = s.convertColumn(col)
			s.logger.Debug("column converted", "table", table.Name(), "column", name)
		}
		columns = append(columns, col)
	}
	return model.NewTable(table.Name(), columns...), verdicts, nil
}

func (s *Sniffer) convertColumn(col model.Column) model.Column {
	values := make([]model.Value, len(col.Values))
	for i, v := range col.Values {
		str, ok := v.Str()
		if !ok {
			continue
		}
		str = strings.TrimSpace(str)
		if str == "" {
			continue
		}
		if t, ok := s.ParseDatetime(str); ok {
			values[i] = model.TimeValue(t)
		}
	}
	return model.NewColumn(col.Name, model.DTypeDatetime, values...)
}
