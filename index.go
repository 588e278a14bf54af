// Index objects: described by rows in _indices, constructed on first
// access by Catalog.GetIndex. Index traversal (lookup by key) is out of
// scope — query planning is out of scope — so Index exists
// only to satisfy CREATE INDEX's "construct the index and call create"
// step with a concrete backing artifact.
package pagestore

import "encoding/binary"

// IndexType is the kind of index named by an _indices row.
type IndexType int

const (
	// BTree indices are recorded as unique.
	BTree IndexType = iota
	// Hash indices are recorded as non-unique.
	Hash
)

func parseIndexType(s string) IndexType {
	if s == "HASH" {
		return Hash
	}
	return BTree
}

func (t IndexType) String() string {
	if t == Hash {
		return "HASH"
	}
	return "BTREE"
}

// Index describes one named index over a table: its ordered columns,
// its type, and a minimal backing relation so Create has something
// concrete to provision.
type Index struct {
	Table    Identifier
	Name     Identifier
	Columns  []Identifier
	Type     IndexType
	IsUnique bool

	table   *Relation
	backing *Relation
	alg     int
}

// Create provisions the index's backing artifact: an empty heap
// relation for BTREE indices, or a heap relation with one INT column
// (the HASH-bucket key produced by this store's configured hash
// algorithm) for HASH indices, seeded with one bucket row per row
// already present in the indexed table. Index traversal and insert-time
// maintenance beyond this initial seeding are not implemented.
func (ix *Index) Create() error {
	if err := ix.backing.Create(); err != nil {
		return err
	}
	if ix.Type != Hash {
		return nil
	}

	handles, err := ix.table.Select()
	if err != nil {
		return err
	}
	for _, h := range handles {
		row, err := ix.table.Project(h)
		if err != nil {
			return err
		}
		bucket := ix.bucket(row)
		if _, err := ix.backing.Insert(Row{"bucket": NewInt(int32(bucket))}); err != nil {
			return err
		}
	}
	return nil
}

// bucket computes the HASH-index bucket for the concatenation of a
// row's indexed column bytes, using the store's configured algorithm.
// Called from Create to seed one bucket row per existing table row.
func (ix *Index) bucket(row Row) uint64 {
	var buf []byte
	for _, col := range ix.Columns {
		v := row[col]
		switch v.Type {
		case INT:
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], uint32(v.N))
			buf = append(buf, b[:]...)
		case TEXT:
			buf = append(buf, []byte(v.S)...)
		}
	}
	return hashUint64(buf, ix.alg)
}

// backingName is the name of an index's backing heap relation.
func backingName(table, index Identifier) string {
	return table + "__" + index
}

// GetIndex returns (constructing on first access) the index object
// described by the _indices rows matching (table, name), in
// seq_in_index order.
func (c *Catalog) GetIndex(table, name Identifier) (*Index, error) {
	key := indexKey{table: table, index: name}
	if ix, ok := c.indices[key]; ok {
		return ix, nil
	}

	handles, err := c.Indices.SelectWhereEq2("table_name", NewText(table), "index_name", NewText(name))
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, ErrNotFound
	}

	type seqCol struct {
		seq  int32
		name Identifier
	}
	var cols []seqCol
	var indexType string
	var isUnique bool
	for _, h := range handles {
		row, err := c.Indices.Project(h)
		if err != nil {
			return nil, err
		}
		cols = append(cols, seqCol{seq: row["seq_in_index"].N, name: row["column_name"].S})
		indexType = row["index_type"].S
		isUnique = row["is_unique"].B
	}
	// seq_in_index order.
	for i := 1; i < len(cols); i++ {
		for j := i; j > 0 && cols[j-1].seq > cols[j].seq; j-- {
			cols[j-1], cols[j] = cols[j], cols[j-1]
		}
	}
	columns := make([]Identifier, len(cols))
	for i, sc := range cols {
		columns[i] = sc.name
	}

	tableRel, err := c.GetTable(table)
	if err != nil {
		return nil, err
	}

	ix := &Index{
		Table:    table,
		Name:     name,
		Columns:  columns,
		Type:     parseIndexType(indexType),
		IsUnique: isUnique,
		table:    tableRel,
		alg:      c.config.checksumAlg(),
	}
	if ix.Type == Hash {
		ix.backing = NewRelation(backingName(table, name), Schema{
			{Name: "bucket", Attribute: ColumnAttribute{DataType: INT}},
		}, c.config)
	} else {
		ix.backing = NewRelation(backingName(table, name), Schema{}, c.config)
	}

	c.indices[key] = ix
	return ix, nil
}
