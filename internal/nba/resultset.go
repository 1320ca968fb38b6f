package nba

import (
	"fmt"
	"strings"
)

// response is the envelope every stats.nba.com endpoint returns.
type response struct {
	Resource   string      `json:"resource"`
	ResultSets []resultSet `json:"resultSets"`
}

// resultSet is one named table: a header row plus positional rows.
type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// set returns the result set called name, or false.
func (r response) set(name string) (resultSet, bool) {
	for _, rs := range r.ResultSets {
		if strings.EqualFold(rs.Name, name) {
			return rs, true
		}
	}
	return resultSet{}, false
}

// row gives by-header access to one positional row.
type row struct {
	index  map[string]int
	values []any
}

// rows returns the set's rows keyed by upper-cased header.
func (rs resultSet) rows() []row {
	index := make(map[string]int, len(rs.Headers))
	for i, h := range rs.Headers {
		index[strings.ToUpper(h)] = i
	}
	out := make([]row, 0, len(rs.RowSet))
	for _, values := range rs.RowSet {
		out = append(out, row{index: index, values: values})
	}
	return out
}

func (r row) raw(header string) any {
	i, ok := r.index[header]
	if !ok || i >= len(r.values) {
		return nil
	}
	return r.values[i]
}

// float returns a numeric column; nulls and missing columns are zero.
func (r row) float(header string) float64 {
	switch v := r.raw(header).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// id returns an integer id column.
func (r row) id(header string) (int64, error) {
	v, ok := r.raw(header).(float64)
	if !ok {
		return 0, fmt.Errorf("column %s is %T, want number", header, r.raw(header))
	}
	return int64(v), nil
}

// text returns a string column; numeric season ids are formatted.
func (r row) text(header string) string {
	switch v := r.raw(header).(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%g", v)
	default:
		return ""
	}
}
