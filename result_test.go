package pagestore

import (
	"strings"
	"testing"
)

func TestQueryResultStringRendersHeaderSeparatorAndRows(t *testing.T) {
	q := &QueryResult{
		ColumnNames:      []Identifier{"id", "name"},
		ColumnAttributes: []ColumnAttribute{{DataType: INT}, {DataType: TEXT}},
		Rows: []Row{
			{"id": NewInt(1), "name": NewText("ada")},
		},
		Message: "successfully returned 1 rows",
	}
	out := q.String()
	if !strings.Contains(out, "id name") {
		t.Fatalf("String() missing header: %q", out)
	}
	if !strings.Contains(out, "+----------+----------+") {
		t.Fatalf("String() missing separator: %q", out)
	}
	if !strings.Contains(out, `1 "ada"`) {
		t.Fatalf("String() missing row rendering: %q", out)
	}
	if !strings.Contains(out, "successfully returned 1 rows") {
		t.Fatalf("String() missing message: %q", out)
	}
}

func TestQueryResultStringNoColumnsJustMessage(t *testing.T) {
	q := &QueryResult{Message: "dropped foo"}
	if q.String() != "dropped foo" {
		t.Fatalf("String() = %q, want %q", q.String(), "dropped foo")
	}
}

func TestQueryResultMarshalJSONRoundTrips(t *testing.T) {
	q := &QueryResult{
		ColumnNames: []Identifier{"active"},
		Rows:        []Row{{"active": NewBool(true)}},
		Message:     "successfully returned 1 rows",
	}
	data, err := q.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, `"message":"successfully returned 1 rows"`) {
		t.Fatalf("MarshalJSON missing message: %s", s)
	}
	if !strings.Contains(s, `"type":"BOOL"`) {
		t.Fatalf("MarshalJSON missing typed value envelope: %s", s)
	}
}

func TestRenderValueByType(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{NewInt(-5), "-5"},
		{NewText("hi"), `"hi"`},
		{NewBool(true), "true"},
		{NewBool(false), "false"},
	}
	for _, c := range cases {
		if got := renderValue(c.v); got != c.want {
			t.Fatalf("renderValue(%+v) = %q, want %q", c.v, got, c.want)
		}
	}
}
