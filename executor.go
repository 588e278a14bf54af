// Executor: dispatches parsed DDL statements against a Catalog.
// Grounded on original_source's SQLExec::execute / create_table /
// create_index / drop_table / drop_index / show_tables / show_columns /
// show_index, with its compensation (best-effort rollback) pattern
// reframed from nested try/catch into defer-based scope guards.
package pagestore

import "fmt"

// Executor runs parsed statements against a catalog.
type Executor struct {
	catalog *Catalog
}

// NewExecutor wraps catalog in an Executor.
func NewExecutor(catalog *Catalog) *Executor {
	return &Executor{catalog: catalog}
}

// Execute dispatches stmt to the matching handler. stmt must be one of
// *CreateStatement, *DropStatement, *ShowStatement.
func (e *Executor) Execute(stmt interface{}) (*QueryResult, error) {
	if err := e.catalog.Bootstrap(); err != nil {
		return nil, wrapExec("bootstrap", err)
	}
	switch s := stmt.(type) {
	case *CreateStatement:
		switch s.Kind {
		case CreateTable:
			return e.createTable(s)
		case CreateIndex:
			return e.createIndex(s)
		}
	case *DropStatement:
		switch s.Kind {
		case DropTable:
			return e.dropTable(s)
		case DropIndex:
			return e.dropIndex(s)
		}
	case *ShowStatement:
		switch s.Kind {
		case ShowTables:
			return e.showTables()
		case ShowColumns:
			return e.showColumns(s)
		case ShowIndex:
			return e.showIndex(s)
		}
	}
	return nil, wrapExec("execute", ErrNotImplemented)
}

// createTable inserts a _tables row, one _columns row per column, and
// creates the backing heap file. Any failure triggers a scope-guard
// that deletes whatever rows were already inserted, so a failed CREATE
// TABLE leaves no partial catalog state (unlike original_source's
// HeapTable::create, which could leave orphaned _columns rows behind —
// see DESIGN.md).
func (e *Executor) createTable(s *CreateStatement) (*QueryResult, error) {
	seen := make(map[Identifier]bool, len(s.Columns))
	var schema Schema
	for _, col := range s.Columns {
		if seen[col.Name] {
			return nil, fmt.Errorf("%w %s.%s", ErrDuplicateColumn, s.TableName, col.Name)
		}
		seen[col.Name] = true
		dt, err := parseDataType(col.Type)
		if err != nil {
			return nil, wrapExec("create table", err)
		}
		schema = append(schema, Column{Name: col.Name, Attribute: ColumnAttribute{DataType: dt}})
	}

	existing, err := e.catalog.Tables.SelectWhereEq("table_name", NewText(s.TableName))
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if s.IfNotExists {
			return &QueryResult{Message: fmt.Sprintf("%s already exists", s.TableName)}, nil
		}
		return nil, fmt.Errorf("%s %w", s.TableName, ErrAlreadyExists)
	}

	var inserted []struct {
		rel    *Relation
		handle Handle
	}
	ok := false
	defer func() {
		if ok {
			return
		}
		for i := len(inserted) - 1; i >= 0; i-- {
			inserted[i].rel.removeHandle(inserted[i].handle)
		}
	}()

	tableHandle, err := e.catalog.Tables.Insert(Row{"table_name": NewText(s.TableName)})
	if err != nil {
		return nil, wrapExec("create table", err)
	}
	inserted = append(inserted, struct {
		rel    *Relation
		handle Handle
	}{e.catalog.Tables, tableHandle})

	for _, col := range schema {
		h, err := e.catalog.Columns.Insert(Row{
			"table_name":  NewText(s.TableName),
			"column_name": NewText(col.Name),
			"data_type":   NewText(col.Attribute.DataType.String()),
		})
		if err != nil {
			return nil, wrapExec("create table", err)
		}
		inserted = append(inserted, struct {
			rel    *Relation
			handle Handle
		}{e.catalog.Columns, h})
	}

	rel := NewRelation(s.TableName, schema, e.catalog.config)
	if err := rel.Create(); err != nil {
		return nil, wrapExec("create table", err)
	}
	e.catalog.relations[s.TableName] = rel

	ok = true
	return &QueryResult{Message: fmt.Sprintf("created %s", s.TableName)}, nil
}

// createIndex verifies the named table and columns exist, inserts one
// _indices row per column, and provisions the index's backing
// artifact. Failures compensate the same way createTable does.
func (e *Executor) createIndex(s *CreateStatement) (*QueryResult, error) {
	rel, err := e.catalog.GetTable(s.TableName)
	if err != nil {
		return nil, wrapExec("create index", ErrUnknownColumn)
	}
	for _, col := range s.IndexColumns {
		if !rel.Schema().Has(col) {
			return nil, wrapExec("create index", fmt.Errorf("%s: %w", col, ErrUnknownColumn))
		}
	}

	indexType := s.IndexType
	if indexType == "" {
		indexType = "BTREE"
	}
	isUnique := indexType == "BTREE"

	var inserted []Handle
	ok := false
	defer func() {
		if ok {
			return
		}
		for i := len(inserted) - 1; i >= 0; i-- {
			e.catalog.Indices.removeHandle(inserted[i])
		}
	}()

	for i, col := range s.IndexColumns {
		h, err := e.catalog.Indices.Insert(Row{
			"table_name":    NewText(s.TableName),
			"index_name":    NewText(s.IndexName),
			"seq_in_index":  NewInt(int32(i + 1)),
			"column_name":   NewText(col),
			"index_type":    NewText(indexType),
			"is_unique":     NewBool(isUnique),
		})
		if err != nil {
			return nil, wrapExec("create index", err)
		}
		inserted = append(inserted, h)
	}

	ix, err := e.catalog.GetIndex(s.TableName, s.IndexName)
	if err != nil {
		return nil, wrapExec("create index", err)
	}
	if err := ix.Create(); err != nil {
		return nil, wrapExec("create index", err)
	}

	ok = true
	return &QueryResult{Message: fmt.Sprintf("created index %s", s.IndexName)}, nil
}

// dropTable refuses to drop a schema table, then deletes the table's
// _columns rows, drops its backing file, and deletes its _tables row.
func (e *Executor) dropTable(s *DropStatement) (*QueryResult, error) {
	if s.Name == TablesName || s.Name == ColumnsName || s.Name == IndicesName {
		return nil, wrapExec("drop table", fmt.Errorf("cannot drop a schema table"))
	}

	rel, err := e.catalog.GetTable(s.Name)
	if err != nil {
		return nil, wrapExec("drop table", err)
	}

	colHandles, err := e.catalog.Columns.SelectWhereEq("table_name", NewText(s.Name))
	if err != nil {
		return nil, err
	}
	for _, h := range colHandles {
		if err := e.catalog.Columns.removeHandle(h); err != nil {
			return nil, err
		}
	}

	if err := rel.Drop(); err != nil {
		return nil, wrapExec("drop table", err)
	}
	delete(e.catalog.relations, s.Name)

	tableHandles, err := e.catalog.Tables.SelectWhereEq("table_name", NewText(s.Name))
	if err != nil {
		return nil, err
	}
	for _, h := range tableHandles {
		if err := e.catalog.Tables.removeHandle(h); err != nil {
			return nil, err
		}
	}

	return &QueryResult{Message: fmt.Sprintf("dropped %s", s.Name)}, nil
}

// dropIndex is unimplemented, matching original_source's DROP INDEX
// (named in SQLExec::drop but never given a body) — kept unimplemented
// deliberately rather than silently replicated as a no-op.
func (e *Executor) dropIndex(s *DropStatement) (*QueryResult, error) {
	return nil, wrapExec("drop index", ErrNotImplemented)
}

// showTables lists every user table (every _tables row except the three
// schema tables), explicitly counting only non-meta rows rather than
// replicating original_source's handles.size()-2 undercount bug.
func (e *Executor) showTables() (*QueryResult, error) {
	handles, err := e.catalog.Tables.Select()
	if err != nil {
		return nil, err
	}
	result := &QueryResult{
		ColumnNames:      []Identifier{"table_name"},
		ColumnAttributes: []ColumnAttribute{{DataType: TEXT}},
	}
	count := 0
	for _, h := range handles {
		row, err := e.catalog.Tables.Project(h)
		if err != nil {
			return nil, err
		}
		name := row["table_name"].S
		if name == TablesName || name == ColumnsName || name == IndicesName {
			continue
		}
		result.Rows = append(result.Rows, row)
		count++
	}
	result.Message = fmt.Sprintf("successfully returned %d rows", count)
	return result, nil
}

// showColumns lists the _columns rows for the named table.
func (e *Executor) showColumns(s *ShowStatement) (*QueryResult, error) {
	handles, err := e.catalog.Columns.SelectWhereEq("table_name", NewText(s.TableName))
	if err != nil {
		return nil, err
	}
	result := &QueryResult{
		ColumnNames:      []Identifier{"table_name", "column_name", "data_type"},
		ColumnAttributes: []ColumnAttribute{{DataType: TEXT}, {DataType: TEXT}, {DataType: TEXT}},
	}
	for _, h := range handles {
		row, err := e.catalog.Columns.Project(h)
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
	}
	result.Message = fmt.Sprintf("successfully returned %d rows", len(result.Rows))
	return result, nil
}

// showIndex lists the _indices rows for the named table, in
// (index_name, seq_in_index) order.
func (e *Executor) showIndex(s *ShowStatement) (*QueryResult, error) {
	handles, err := e.catalog.Indices.SelectWhereEq("table_name", NewText(s.TableName))
	if err != nil {
		return nil, err
	}
	type rowWithHandle struct {
		row Row
		h   Handle
	}
	var rows []rowWithHandle
	for _, h := range handles {
		row, err := e.catalog.Indices.Project(h)
		if err != nil {
			return nil, err
		}
		rows = append(rows, rowWithHandle{row, h})
	}
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0; j-- {
			a, b := rows[j-1].row, rows[j].row
			if a["index_name"].S > b["index_name"].S ||
				(a["index_name"].S == b["index_name"].S && a["seq_in_index"].N > b["seq_in_index"].N) {
				rows[j-1], rows[j] = rows[j], rows[j-1]
				continue
			}
			break
		}
	}

	result := &QueryResult{
		ColumnNames: []Identifier{"table_name", "index_name", "seq_in_index", "column_name", "index_type", "is_unique"},
		ColumnAttributes: []ColumnAttribute{
			{DataType: TEXT}, {DataType: TEXT}, {DataType: INT}, {DataType: TEXT}, {DataType: TEXT}, {DataType: BOOL},
		},
	}
	for _, rh := range rows {
		result.Rows = append(result.Rows, rh.row)
	}
	result.Message = fmt.Sprintf("successfully returned %d rows", len(result.Rows))
	return result, nil
}
