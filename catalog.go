// Catalog: the three self-describing meta-relations (_tables, _columns,
// _indices) that bootstrap themselves and let the executor look up or
// construct user relations and indices by name.
//
// Grounded on original_source's Tables/Columns self-bootstrap and
// SQLExec.cpp's SQLExec::tables/SQLExec::indices globals — reframed, per
// as fields on an explicit Catalog value
// constructed by the caller instead of process-wide singletons, so each
// test can build its own.
package pagestore

// Meta-relation names. Referenced directly (not looked up through
// themselves) to bootstrap the catalog.
const (
	TablesName  = "_tables"
	ColumnsName = "_columns"
	IndicesName = "_indices"
)

func tablesSchema() Schema {
	return Schema{{Name: "table_name", Attribute: ColumnAttribute{DataType: TEXT}}}
}

func columnsSchema() Schema {
	return Schema{
		{Name: "table_name", Attribute: ColumnAttribute{DataType: TEXT}},
		{Name: "column_name", Attribute: ColumnAttribute{DataType: TEXT}},
		{Name: "data_type", Attribute: ColumnAttribute{DataType: TEXT}},
	}
}

func indicesSchema() Schema {
	return Schema{
		{Name: "table_name", Attribute: ColumnAttribute{DataType: TEXT}},
		{Name: "index_name", Attribute: ColumnAttribute{DataType: TEXT}},
		{Name: "seq_in_index", Attribute: ColumnAttribute{DataType: INT}},
		{Name: "column_name", Attribute: ColumnAttribute{DataType: TEXT}},
		{Name: "index_type", Attribute: ColumnAttribute{DataType: TEXT}},
		{Name: "is_unique", Attribute: ColumnAttribute{DataType: BOOL}},
	}
}

// Catalog is the process's (or test's) schema catalog: the three
// bootstrap relations plus a cache of user relations and indices
// constructed by name.
type Catalog struct {
	config Config

	Tables  *Relation
	Columns *Relation
	Indices *Relation

	relations map[Identifier]*Relation
	indices   map[indexKey]*Index
}

type indexKey struct {
	table Identifier
	index Identifier
}

// NewCatalog constructs a catalog. _tables, _columns, and _indices are
// created on disk the first time they're needed (CreateIfNotExists),
// not eagerly here; each is constructed lazily on first DDL.
func NewCatalog(config Config) *Catalog {
	c := &Catalog{
		config:    config,
		relations: make(map[Identifier]*Relation),
		indices:   make(map[indexKey]*Index),
	}
	c.Tables = NewRelation(TablesName, tablesSchema(), config)
	c.Columns = NewRelation(ColumnsName, columnsSchema(), config)
	c.Indices = NewRelation(IndicesName, indicesSchema(), config)
	c.relations[TablesName] = c.Tables
	c.relations[ColumnsName] = c.Columns
	c.relations[IndicesName] = c.Indices
	return c
}

// Bootstrap ensures the three meta-relations exist on disk and, while
// _tables is still empty, seeds it with rows for _tables and _columns
// (and _columns with their column rows). Idempotent.
func (c *Catalog) Bootstrap() error {
	for _, r := range []*Relation{c.Tables, c.Columns, c.Indices} {
		if err := r.CreateIfNotExists(); err != nil {
			return err
		}
	}
	existing, err := c.Tables.Select()
	if err != nil || len(existing) > 0 {
		return err
	}
	for _, meta := range []*Relation{c.Tables, c.Columns} {
		if _, err := c.Tables.Insert(Row{"table_name": NewText(meta.Name())}); err != nil {
			return err
		}
		for _, col := range meta.Schema() {
			if _, err := c.Columns.Insert(Row{
				"table_name":  NewText(meta.Name()),
				"column_name": NewText(col.Name),
				"data_type":   NewText(col.Attribute.DataType.String()),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// GetTable returns (constructing and caching on first access) the heap
// relation for name. For _tables/_columns/_indices it returns the
// catalog's own bootstrap relations without consulting _columns
// (self-bootstrap).
func (c *Catalog) GetTable(name Identifier) (*Relation, error) {
	if r, ok := c.relations[name]; ok {
		return r, nil
	}

	handles, err := c.Columns.SelectWhereEq("table_name", NewText(name))
	if err != nil {
		return nil, err
	}
	if len(handles) == 0 {
		return nil, ErrNotFound
	}

	var schema Schema
	for _, h := range handles {
		row, err := c.Columns.Project(h)
		if err != nil {
			return nil, err
		}
		dt, err := parseDataType(row["data_type"].S)
		if err != nil {
			return nil, err
		}
		schema = append(schema, Column{Name: row["column_name"].S, Attribute: ColumnAttribute{DataType: dt}})
	}

	r := NewRelation(name, schema, c.config)
	c.relations[name] = r
	return r, nil
}

// SelectWhereEq is the catalog's only supported predicate: equality on
// a single column, used by the executor for primary-key lookups over
// the meta-relations. It is not part of the general heap relation API
// (Relation.SelectWhere remains ErrNotImplemented); it exists only on
// catalog-shaped relations whose rows are few enough to scan in full.
func (r *Relation) SelectWhereEq(column Identifier, value Value) ([]Handle, error) {
	handles, err := r.Select()
	if err != nil {
		return nil, err
	}
	var matched []Handle
	for _, h := range handles {
		row, err := r.Project(h)
		if err != nil {
			return nil, err
		}
		if valuesEqual(row[column], value) {
			matched = append(matched, h)
		}
	}
	return matched, nil
}

// SelectWhereEq2 matches two equality predicates at once, used for the
// (table_name, index_name) primary key of _indices.
func (r *Relation) SelectWhereEq2(col1 Identifier, v1 Value, col2 Identifier, v2 Value) ([]Handle, error) {
	handles, err := r.Select()
	if err != nil {
		return nil, err
	}
	var matched []Handle
	for _, h := range handles {
		row, err := r.Project(h)
		if err != nil {
			return nil, err
		}
		if valuesEqual(row[col1], v1) && valuesEqual(row[col2], v2) {
			matched = append(matched, h)
		}
	}
	return matched, nil
}

func valuesEqual(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case INT:
		return a.N == b.N
	case TEXT:
		return a.S == b.S
	case BOOL:
		return a.B == b.B
	default:
		return false
	}
}

func parseDataType(s string) (DataType, error) {
	switch s {
	case "INT":
		return INT, nil
	case "TEXT":
		return TEXT, nil
	default:
		return 0, ErrInvalidColumnType
	}
}
