package kaggle

import (
	"errors"
	"strings"
)

// Record is one row of tabular output keyed by lower-cased column name.
type Record map[string]string

// Ref returns the record's owner/slug identifier.
func (r Record) Ref() string {
	return r["ref"]
}

// Table is parsed tabular output. Header preserves column order.
type Table struct {
	Header []string
	Rows   []Record
}

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	for _, h := range t.Header {
		if h == name {
			return true
		}
	}
	return false
}

type csvState int

const (
	stateUnquoted csvState = iota
	stateQuoted
	stateQuoteInQuoted
)

var errUnterminatedQuote = errors.New("unterminated quoted field")

// splitCSV splits text into rows of fields.
// Quoted fields may contain commas, newlines and doubled quotes.
func splitCSV(text string) ([][]string, error) {
	var (
		rows  [][]string
		row   []string
		field strings.Builder
		state = stateUnquoted
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch state {
		case stateUnquoted:
			switch c {
			case '"':
				if field.Len() == 0 {
					state = stateQuoted
				} else {
					field.WriteByte(c)
				}
			case ',':
				endField()
			case '\r':
				if i+1 < len(text) && text[i+1] == '\n' {
					continue
				}
				endRow()
			case '\n':
				endRow()
			default:
				field.WriteByte(c)
			}

		case stateQuoted:
			if c == '"' {
				state = stateQuoteInQuoted
			} else {
				field.WriteByte(c)
			}

		case stateQuoteInQuoted:
			switch c {
			case '"':
				// Doubled quote is a literal quote
				field.WriteByte('"')
				state = stateQuoted
			case ',':
				endField()
				state = stateUnquoted
			case '\r':
				state = stateUnquoted
				if i+1 < len(text) && text[i+1] == '\n' {
					continue
				}
				endRow()
			case '\n':
				endRow()
				state = stateUnquoted
			default:
				// Lenient: text after a closing quote is kept
				field.WriteByte(c)
				state = stateUnquoted
			}
		}
	}

	if state == stateQuoted {
		return nil, errUnterminatedQuote
	}
	if field.Len() > 0 || len(row) > 0 || state == stateQuoteInQuoted {
		endRow()
	}
	return rows, nil
}

// ParseCSV parses CLI output whose first line is a header.
// Blank lines are skipped. Empty input yields an empty table.
func ParseCSV(text string) (*Table, error) {
	rows, err := splitCSV(text)
	if err != nil {
		return nil, &DecodeError{Format: "csv", Err: err}
	}

	table := &Table{}
	for _, fields := range rows {
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if table.Header == nil {
			table.Header = make([]string, len(fields))
			for i, h := range fields {
				table.Header[i] = strings.ToLower(strings.TrimSpace(h))
			}
			continue
		}

		rec := make(Record, len(table.Header))
		for i, h := range table.Header {
			if i < len(fields) {
				rec[h] = fields[i]
			} else {
				rec[h] = ""
			}
		}
		table.Rows = append(table.Rows, rec)
	}

	return table, nil
}
