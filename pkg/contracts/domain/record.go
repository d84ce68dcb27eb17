package domain

import (
	"strconv"
	"strings"
	"time"
)

// ValueKind identifies the Go type held by a Value
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
)

// Value is a single database cell, typed the way the driver returned it
type Value struct {
	Kind   ValueKind
	String string
	Int    int64
	Float  float64
	Bool   bool
	Time   time.Time
}

// NullValue returns the SQL NULL cell
func NullValue() Value { return Value{Kind: KindNull} }

// StringValue wraps a text cell
func StringValue(s string) Value { return Value{Kind: KindString, String: s} }

// IntValue wraps an integer cell
func IntValue(i int64) Value { return Value{Kind: KindInt, Int: i} }

// FloatValue wraps a floating point cell
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// BoolValue wraps a boolean (Access Yes/No) cell
func BoolValue(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// TimeValue wraps a date or timestamp cell
func TimeValue(t time.Time) Value { return Value{Kind: KindTime, Time: t} }

// IsNull reports whether the cell is SQL NULL
func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

// IsBlank reports whether the cell is NULL or holds only whitespace
func (v Value) IsBlank() bool {
	switch v.Kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.String) == ""
	}
	return false
}

// Text renders the cell the way it appears in the report.
// Booleans render as Yes/No, dates as MM/DD/YYYY.
func (v Value) Text() string {
	switch v.Kind {
	case KindString:
		return v.String
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'f', -1, 64)
	case KindBool:
		if v.Bool {
			return "Yes"
		}
		return "No"
	case KindTime:
		return v.Time.Format("01/02/2006")
	}
	return ""
}

// Record is one row of the review table. Values line up with RecordSet.Columns.
type Record struct {
	Values []Value
}

// RecordSet holds the rows returned by the date-ranged query
type RecordSet struct {
	Columns []string
	Records []Record
	From    time.Time
	To      time.Time

	index map[string]int
}

// NewRecordSet creates an empty record set over the given columns
func NewRecordSet(columns []string, from, to time.Time) *RecordSet {
	rs := &RecordSet{
		Columns: columns,
		From:    from,
		To:      to,
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, exists := rs.index[c]; !exists {
			rs.index[c] = i
		}
	}
	return rs
}

// Append adds a row. The row must have one value per column.
func (rs *RecordSet) Append(values []Value) {
	rs.Records = append(rs.Records, Record{Values: values})
}

// Len returns the number of rows
func (rs *RecordSet) Len() int {
	return len(rs.Records)
}

// ColumnIndex returns the position of a column, or -1 when absent
func (rs *RecordSet) ColumnIndex(name string) int {
	if rs.index == nil {
		rs.index = make(map[string]int, len(rs.Columns))
		for i, c := range rs.Columns {
			if _, exists := rs.index[c]; !exists {
				rs.index[c] = i
			}
		}
	}
	if idx, ok := rs.index[name]; ok {
		return idx
	}
	return -1
}

// MissingColumns returns the names in want that the record set does not carry
func (rs *RecordSet) MissingColumns(want []string) []string {
	var missing []string
	for _, name := range want {
		if rs.ColumnIndex(name) < 0 {
			missing = append(missing, name)
		}
	}
	return missing
}

// Value returns the cell at row i for the named column.
// An unknown column yields a NULL value.
func (rs *RecordSet) Value(i int, column string) Value {
	idx := rs.ColumnIndex(column)
	if idx < 0 || i < 0 || i >= len(rs.Records) || idx >= len(rs.Records[i].Values) {
		return NullValue()
	}
	return rs.Records[i].Values[idx]
}
