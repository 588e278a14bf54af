package pagestore

import "testing"

func TestIndexTypeStringAndParse(t *testing.T) {
	if parseIndexType("HASH") != Hash {
		t.Fatal("parseIndexType(HASH) != Hash")
	}
	if parseIndexType("BTREE") != BTree {
		t.Fatal("parseIndexType(BTREE) != BTree")
	}
	if Hash.String() != "HASH" || BTree.String() != "BTREE" {
		t.Fatal("IndexType.String() mismatch")
	}
}

func TestCatalogGetIndexOrdersBySeq(t *testing.T) {
	e := newTestExecutor(t)
	e.Execute(&CreateStatement{
		Kind:      CreateTable,
		TableName: "foo",
		Columns: []ColumnDef{
			{Name: "a", Type: "INT"},
			{Name: "b", Type: "TEXT"},
		},
	})
	_, err := e.Execute(&CreateStatement{
		Kind:         CreateIndex,
		TableName:    "foo",
		IndexName:    "ab_idx",
		IndexColumns: []Identifier{"a", "b"},
		IndexType:    "BTREE",
	})
	if err != nil {
		t.Fatalf("CREATE INDEX: %v", err)
	}

	ix, err := e.catalog.GetIndex("foo", "ab_idx")
	if err != nil {
		t.Fatalf("GetIndex: %v", err)
	}
	if len(ix.Columns) != 2 || ix.Columns[0] != "a" || ix.Columns[1] != "b" {
		t.Fatalf("GetIndex columns = %v, want [a b]", ix.Columns)
	}
	if !ix.IsUnique {
		t.Fatal("BTREE index expected IsUnique")
	}
}

func TestIndexCreateSeedsHashBuckets(t *testing.T) {
	e := newTestExecutor(t)
	e.Execute(&CreateStatement{
		Kind:      CreateTable,
		TableName: "foo",
		Columns:   []ColumnDef{{Name: "a", Type: "INT"}},
	})
	rel, err := e.catalog.GetTable("foo")
	if err != nil {
		t.Fatalf("GetTable: %v", err)
	}
	for _, n := range []int32{1, 2, 3} {
		if _, err := rel.Insert(Row{"a": NewInt(n)}); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	_, err = e.Execute(&CreateStatement{
		Kind:         CreateIndex,
		TableName:    "foo",
		IndexName:    "a_idx",
		IndexColumns: []Identifier{"a"},
		IndexType:    "HASH",
	})
	if err != nil {
		t.Fatalf("CREATE INDEX: %v", err)
	}

	ix, err := e.catalog.GetIndex("foo", "a_idx")
	if err != nil {
		t.Fatalf("GetIndex: %v", err)
	}
	handles, err := ix.backing.Select()
	if err != nil {
		t.Fatalf("backing Select: %v", err)
	}
	if len(handles) != 3 {
		t.Fatalf("backing relation has %d rows, want 3 (one bucket row per existing table row)", len(handles))
	}
}

func TestCatalogGetIndexCaches(t *testing.T) {
	e := newTestExecutor(t)
	e.Execute(&CreateStatement{
		Kind:      CreateTable,
		TableName: "foo",
		Columns:   []ColumnDef{{Name: "a", Type: "INT"}},
	})
	e.Execute(&CreateStatement{
		Kind:         CreateIndex,
		TableName:    "foo",
		IndexName:    "a_idx",
		IndexColumns: []Identifier{"a"},
		IndexType:    "HASH",
	})

	ix1, err := e.catalog.GetIndex("foo", "a_idx")
	if err != nil {
		t.Fatalf("GetIndex: %v", err)
	}
	ix2, err := e.catalog.GetIndex("foo", "a_idx")
	if err != nil {
		t.Fatalf("GetIndex (cached): %v", err)
	}
	if ix1 != ix2 {
		t.Fatal("GetIndex returned distinct pointers for the same index")
	}
}
