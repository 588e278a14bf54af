// QueryResult: the value the executor returns to its caller (a REPL,
// out of scope). Text rendering is grounded on original_source's
// operator<<(ostream&, QueryResult&) — header row, a "+----------+"
// separator per column, then typed values. The JSON mirror
// (MarshalJSON) is ambient tooling for callers that want machine-
// readable output instead of the column-aligned text.
package pagestore

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// QueryResult exclusively owns its column names, attributes, and rows.
type QueryResult struct {
	ColumnNames      []Identifier
	ColumnAttributes []ColumnAttribute
	Rows             []Row
	Message          string
}

// String renders the result the way the REPL does: a header row with
// names separated by single spaces, a separator line of "+----------+"
// repeated per column, then each row with INT unquoted, TEXT quoted,
// BOOL as true/false, and unknown types as "???". The message is always
// last.
func (q *QueryResult) String() string {
	var b strings.Builder
	if q.ColumnNames != nil {
		b.WriteString(strings.Join(q.ColumnNames, " "))
		b.WriteByte('\n')
		b.WriteByte('+')
		for range q.ColumnNames {
			b.WriteString("----------+")
		}
		b.WriteByte('\n')
		for _, row := range q.Rows {
			for i, name := range q.ColumnNames {
				if i > 0 {
					b.WriteByte(' ')
				}
				b.WriteString(renderValue(row[name]))
			}
			b.WriteByte('\n')
		}
	}
	b.WriteString(q.Message)
	return b.String()
}

func renderValue(v Value) string {
	switch v.Type {
	case INT:
		return strconv.FormatInt(int64(v.N), 10)
	case TEXT:
		return `"` + v.S + `"`
	case BOOL:
		if v.B {
			return "true"
		}
		return "false"
	default:
		return "???"
	}
}

// jsonValue is the wire shape for a Value in the JSON mirror: a typed
// envelope, since a bare JSON scalar can't distinguish an INT from a
// BOOL once both happen to render as a number/bool.
type jsonValue struct {
	Type string `json:"type"`
	N    int32  `json:"n,omitempty"`
	S    string `json:"s,omitempty"`
	B    bool   `json:"b,omitempty"`
}

type jsonResult struct {
	ColumnNames []Identifier          `json:"columns,omitempty"`
	Rows        []map[string]jsonValue `json:"rows,omitempty"`
	Message     string                `json:"message"`
}

// MarshalJSON renders the result as structured JSON for tooling that
// wants to consume it programmatically instead of parsing String()'s
// column-aligned text.
func (q *QueryResult) MarshalJSON() ([]byte, error) {
	out := jsonResult{ColumnNames: q.ColumnNames, Message: q.Message}
	for _, row := range q.Rows {
		jr := make(map[string]jsonValue, len(row))
		for k, v := range row {
			jr[k] = jsonValue{Type: v.Type.String(), N: v.N, S: v.S, B: v.B}
		}
		out.Rows = append(out.Rows, jr)
	}
	return json.Marshal(out)
}
