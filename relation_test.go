package pagestore

import (
	"path/filepath"
	"testing"
)

func testSchema() Schema {
	return Schema{
		{Name: "id", Attribute: ColumnAttribute{DataType: INT}},
		{Name: "name", Attribute: ColumnAttribute{DataType: TEXT}},
		{Name: "active", Attribute: ColumnAttribute{DataType: BOOL}},
	}
}

func newTestRelation(t *testing.T) *Relation {
	t.Helper()
	name := filepath.Join(t.TempDir(), "people")
	r := NewRelation(name, testSchema(), Config{})
	if err := r.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return r
}

func TestRelationInsertAndProjectRoundTrip(t *testing.T) {
	r := newTestRelation(t)
	handle, err := r.Insert(Row{"id": NewInt(1), "name": NewText("ada"), "active": NewBool(true)})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	row, err := r.Project(handle)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if row["id"].N != 1 || row["name"].S != "ada" || row["active"].B != true {
		t.Fatalf("Project round trip mismatch: %+v", row)
	}
}

func TestRelationInsertRejectsMissingValue(t *testing.T) {
	r := newTestRelation(t)
	if _, err := r.Insert(Row{"id": NewInt(1), "name": NewText("ada")}); err == nil {
		t.Fatal("Insert with missing column succeeded, want error")
	}
}

func TestRelationSelectCoversAllInsertedRows(t *testing.T) {
	r := newTestRelation(t)
	want := 25
	for i := 0; i < want; i++ {
		if _, err := r.Insert(Row{"id": NewInt(int32(i)), "name": NewText("row"), "active": NewBool(i%2 == 0)}); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	handles, err := r.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(handles) != want {
		t.Fatalf("Select() returned %d handles, want %d", len(handles), want)
	}
}

func TestRelationZeroLengthTextRoundTrips(t *testing.T) {
	r := newTestRelation(t)
	handle, err := r.Insert(Row{"id": NewInt(1), "name": NewText(""), "active": NewBool(false)})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	row, err := r.Project(handle)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if row["name"].S != "" {
		t.Fatalf("name = %q, want empty", row["name"].S)
	}
}

func TestRelationProjectColumnsSubset(t *testing.T) {
	r := newTestRelation(t)
	handle, err := r.Insert(Row{"id": NewInt(9), "name": NewText("grace"), "active": NewBool(true)})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	row, err := r.ProjectColumns(handle, []Identifier{"name"})
	if err != nil {
		t.Fatalf("ProjectColumns: %v", err)
	}
	if _, ok := row["id"]; ok {
		t.Fatal("ProjectColumns returned unrequested column id")
	}
	if row["name"].S != "grace" {
		t.Fatalf("name = %q, want grace", row["name"].S)
	}
}

func TestRelationCreateIfNotExistsOpensExisting(t *testing.T) {
	name := filepath.Join(t.TempDir(), "people")
	first := NewRelation(name, testSchema(), Config{})
	if err := first.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	first.Insert(Row{"id": NewInt(1), "name": NewText("a"), "active": NewBool(true)})
	first.Close()

	second := NewRelation(name, testSchema(), Config{})
	if err := second.CreateIfNotExists(); err != nil {
		t.Fatalf("CreateIfNotExists: %v", err)
	}
	handles, err := second.Select()
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(handles) != 1 {
		t.Fatalf("Select() after CreateIfNotExists = %d handles, want 1 (pre-existing data)", len(handles))
	}
}
