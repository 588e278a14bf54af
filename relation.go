// Heap relation: the row-level API over a heap file — marshal,
// unmarshal, insert, select, project. Grounded on original_source's
// HeapTable, with one deliberate fix: Create propagates the
// backing file's error instead of swallowing it, so a failed create
// doesn't leave the executor believing a table exists when its file
// doesn't.
package pagestore

import "encoding/binary"

// Relation is a heap-file-backed table: a name, a schema, and the
// marshal/unmarshal contract that schema implies.
type Relation struct {
	name   string
	schema Schema
	file   *HeapFile
	config Config
}

// NewRelation constructs a relation for name over the given schema. The
// backing heap file is not opened until Create/CreateIfNotExists/Open
// is called.
func NewRelation(name string, schema Schema, config Config) *Relation {
	return &Relation{name: name, schema: schema, file: NewHeapFile(name, config), config: config}
}

// Name returns the relation's name.
func (r *Relation) Name() string { return r.name }

// Schema returns the relation's column schema, in canonical order.
func (r *Relation) Schema() Schema { return r.schema }

// Create creates the backing heap file.
func (r *Relation) Create() error {
	return r.file.Create()
}

// CreateIfNotExists attempts to open the backing file first; on any
// failure it creates it instead.
func (r *Relation) CreateIfNotExists() error {
	if err := r.file.Open(); err != nil {
		return r.file.Create()
	}
	return nil
}

// Drop drops the backing heap file.
func (r *Relation) Drop() error {
	return r.file.Drop()
}

// Open opens the backing heap file.
func (r *Relation) Open() error {
	return r.file.Open()
}

// Close closes the backing heap file.
func (r *Relation) Close() error {
	return r.file.Close()
}

// Validate checks that row supplies a value for every schema column.
// Extra keys in row are ignored. There is no null/default handling.
func (r *Relation) Validate(row Row) (Row, error) {
	validated := make(Row, len(r.schema))
	for _, col := range r.schema {
		v, ok := row[col.Name]
		if !ok {
			return nil, wrapExec("validate", ErrMissingValue)
		}
		validated[col.Name] = v
	}
	return validated, nil
}

// Insert opens the relation, validates row against the schema, and
// appends it, returning the handle of the new row.
func (r *Relation) Insert(row Row) (Handle, error) {
	if err := r.Open(); err != nil {
		return Handle{}, err
	}
	validated, err := r.Validate(row)
	if err != nil {
		return Handle{}, err
	}
	return r.append(validated)
}

// append marshals row and appends it to the last block, allocating a
// new block on overflow.
func (r *Relation) append(row Row) (Handle, error) {
	data, err := r.marshal(row)
	if err != nil {
		return Handle{}, err
	}

	page, err := r.file.Get(r.file.LastBlockId())
	if err != nil {
		return Handle{}, err
	}
	recordId, err := page.Add(data)
	if err == ErrNoRoom {
		page, err = r.file.GetNew()
		if err != nil {
			return Handle{}, err
		}
		recordId, err = page.Add(data)
		if err != nil {
			return Handle{}, err
		}
	} else if err != nil {
		return Handle{}, err
	}

	if err := r.file.Put(page); err != nil {
		return Handle{}, err
	}
	return Handle{Block: r.file.LastBlockId(), Record: recordId}, nil
}

// Select performs a full scan across every block, returning one handle
// per live record, in ascending (block, record) order.
func (r *Relation) Select() ([]Handle, error) {
	if err := r.Open(); err != nil {
		return nil, err
	}
	var handles []Handle
	for _, blockId := range r.file.BlockIds() {
		page, err := r.file.Get(blockId)
		if err != nil {
			return nil, err
		}
		for _, recordId := range page.Ids() {
			handles = append(handles, Handle{Block: blockId, Record: recordId})
		}
	}
	return handles, nil
}

// SelectWhere is unimplemented: selection with a predicate is out of
// scope at this layer.
func (r *Relation) SelectWhere(where Row) ([]Handle, error) {
	return nil, ErrNotImplemented
}

// Project reads and unmarshals the row at handle.
func (r *Relation) Project(handle Handle) (Row, error) {
	page, err := r.file.Get(handle.Block)
	if err != nil {
		return nil, err
	}
	data := page.Get(handle.Record)
	if data == nil {
		return nil, ErrNotFound
	}
	return r.unmarshal(data)
}

// ProjectColumns projects handle's row down to the named subset.
// Columns absent from the underlying row are simply not populated.
func (r *Relation) ProjectColumns(handle Handle, columns []Identifier) (Row, error) {
	row, err := r.Project(handle)
	if err != nil {
		return nil, err
	}
	if columns == nil {
		return row, nil
	}
	out := make(Row, len(columns))
	for _, c := range columns {
		if v, ok := row[c]; ok {
			out[c] = v
		}
	}
	return out, nil
}

// Update is unimplemented: row mutation through SQL is out of scope.
func (r *Relation) Update(handle Handle, newValues Row) error {
	return ErrNotImplemented
}

// Delete is unimplemented: row deletion through SQL is out of scope.
func (r *Relation) Delete(handle Handle) error {
	return ErrNotImplemented
}

// removeHandle tombstones handle's record in place. Unlike Delete, this
// is not reached from parsed SQL; it backs the executor's catalog-row
// bookkeeping (DDL compensation, DROP TABLE's _columns/_tables cleanup),
// which needs real row removal even though SQL-level DELETE is out of
// scope.
func (r *Relation) removeHandle(handle Handle) error {
	page, err := r.file.Get(handle.Block)
	if err != nil {
		return err
	}
	page.Del(handle.Record)
	return r.file.Put(page)
}

// marshal encodes row in schema order into the bit-exact layout spec
// §4.D defines: INT as little-endian int32, TEXT as a little-endian
// uint16 length prefix followed by its UTF-8 bytes, BOOL as one byte.
func (r *Relation) marshal(row Row) ([]byte, error) {
	buf := make([]byte, BlockSize)
	offset := 0
	for _, col := range r.schema {
		v := row[col.Name]
		switch col.Attribute.DataType {
		case INT:
			binary.LittleEndian.PutUint32(buf[offset:offset+4], uint32(v.N))
			offset += 4
		case TEXT:
			s := []byte(v.S)
			if len(s) > 0xFFFF {
				return nil, ErrUnsupportedType
			}
			binary.LittleEndian.PutUint16(buf[offset:offset+2], uint16(len(s)))
			offset += 2
			copy(buf[offset:offset+len(s)], s)
			offset += len(s)
		case BOOL:
			if v.B {
				buf[offset] = 1
			} else {
				buf[offset] = 0
			}
			offset++
		default:
			return nil, ErrUnsupportedType
		}
	}
	out := make([]byte, offset)
	copy(out, buf[:offset])
	return out, nil
}

// unmarshal is the inverse of marshal, walking the same canonical
// column order.
func (r *Relation) unmarshal(data []byte) (Row, error) {
	row := make(Row, len(r.schema))
	offset := 0
	for _, col := range r.schema {
		switch col.Attribute.DataType {
		case INT:
			n := int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
			offset += 4
			row[col.Name] = NewInt(n)
		case TEXT:
			size := int(binary.LittleEndian.Uint16(data[offset : offset+2]))
			offset += 2
			row[col.Name] = NewText(string(data[offset : offset+size]))
			offset += size
		case BOOL:
			row[col.Name] = NewBool(data[offset] != 0)
			offset++
		default:
			return nil, ErrUnsupportedType
		}
	}
	return row, nil
}
