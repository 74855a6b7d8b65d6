package catalog

import (
	"encoding/binary"
	"io"

	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/types"
)

// catalogMagic opens and closes every persisted catalog file, per §6.3.
var catalogMagic = [8]byte{'K', 'U', 'Z', 'U', 'C', 'A', 'T', 0}

// StorageVersion is bumped whenever the on-disk layout changes
// incompatibly; deserialize rejects anything else with VersionMismatch.
const StorageVersion uint32 = 1

// Serialize writes the full snapshot in the length-driven binary layout
// from §6.3: magic, version, table count, each TableSchema, magic.
func (s *Snapshot) Serialize(w io.Writer) error {
	bw := &byteWriter{w: w}
	bw.write(catalogMagic[:])
	bw.writeU32(StorageVersion)

	ids := make([]types.TableId, 0, len(s.tables))
	for id := range s.tables {
		ids = append(ids, id)
	}
	sortTableIDs(ids)

	bw.writeU32(uint32(len(ids)))
	for _, id := range ids {
		serializeTableSchema(bw, s.tables[id])
	}
	bw.write(catalogMagic[:])
	return bw.err
}

// Deserialize is the inverse of Serialize: length-driven, not
// delimiter-driven. A magic mismatch at either end surfaces CorruptCatalog;
// an unexpected storage_version surfaces VersionMismatch.
func Deserialize(r io.Reader) (*Snapshot, error) {
	br := &byteReader{r: r}

	var startMagic [8]byte
	br.read(startMagic[:])
	if br.err != nil {
		return nil, oriorerr.Wrap(oriorerr.IO, "", br.err)
	}
	if startMagic != catalogMagic {
		return nil, oriorerr.WithCode(oriorerr.CorruptCatalog, "BadMagic", "catalog file does not start with the expected magic")
	}

	version := br.readU32()
	if version != StorageVersion {
		return nil, oriorerr.WithCode(oriorerr.VersionMismatch, "", "unsupported catalog storage version")
	}

	numTables := br.readU32()
	snap := emptySnapshot()
	maxID := types.TableId(0)
	for i := uint32(0); i < numTables; i++ {
		t, err := deserializeTableSchema(br)
		if err != nil {
			return nil, err
		}
		snap.tables[t.TableID()] = t
		snap.byName[t.Name()] = t.TableID()
		if t.TableID() >= maxID {
			maxID = t.TableID() + 1
		}
	}
	snap.nextTableID = maxID

	var endMagic [8]byte
	br.read(endMagic[:])
	if br.err != nil {
		return nil, oriorerr.Wrap(oriorerr.IO, "", br.err)
	}
	if endMagic != catalogMagic {
		return nil, oriorerr.WithCode(oriorerr.CorruptCatalog, "BadMagic", "catalog file does not end with the expected magic")
	}
	if br.err != nil {
		return nil, oriorerr.Wrap(oriorerr.IO, "", br.err)
	}

	snap.Checksum = snap.computeChecksum()
	return snap, nil
}

func serializeTableSchema(w ioWriter, t TableSchema) {
	bw := asByteWriter(w)
	bw.writeU64(uint64(t.TableID()))
	bw.writeU8(uint8(t.TableType()))
	bw.writeString(t.Name())

	props := t.Properties()
	bw.writeU32(uint32(len(props)))
	for _, p := range props {
		bw.writeString(p.Name)
		serializeLogicalType(bw, p.DType)
		bw.writeU32(uint32(p.Id))
	}
	bw.writeU32(uint32(t.NextPropertyID()))

	switch t.TableType() {
	case types.TableTypeNode:
		n := t.GetNode()
		bw.writeU32(uint32(n.PrimaryKeyPID()))
		writeTableIDSet(bw, n.FwdRelTables())
		writeTableIDSet(bw, n.BwdRelTables())
	case types.TableTypeRel:
		r := t.GetRel()
		bw.writeU8(uint8(r.Multiplicity()))
		bw.writeU64(uint64(r.SrcTable()))
		bw.writeU64(uint64(r.DstTable()))
		serializeLogicalType(bw, r.SrcPKType())
		serializeLogicalType(bw, r.DstPKType())
	case types.TableTypeRelGroup:
		g := t.GetRelGroup()
		writeTableIDList(bw, g.RelTableIDs())
	case types.TableTypeRdf:
		g := t.GetRdf()
		children := g.ChildTableIDs()
		writeTableIDList(bw, children[:])
	}
}

func deserializeTableSchema(br *byteReader) (TableSchema, error) {
	id := types.TableId(br.readU64())
	kind := types.TableType(br.readU8())
	name := br.readString()

	numProps := br.readU32()
	props := make([]types.Property, numProps)
	for i := range props {
		props[i].Name = br.readString()
		props[i].DType = deserializeLogicalType(br)
		props[i].Id = types.PropertyId(br.readU32())
		props[i].Table = id
	}
	nextPropertyID := types.PropertyId(br.readU32())

	if br.err != nil {
		return nil, oriorerr.Wrap(oriorerr.IO, "", br.err)
	}

	switch kind {
	case types.TableTypeNode:
		pkPID := types.PropertyId(br.readU32())
		fwd := readTableIDSet(br)
		bwd := readTableIDSet(br)
		n := NewNodeTableSchema(name, id, props, pkPID)
		n.nextPropertyID = nextPropertyID
		for _, t := range fwd {
			n.addFwdRelTable(t)
		}
		for _, t := range bwd {
			n.addBwdRelTable(t)
		}
		return n, br.err
	case types.TableTypeRel:
		mult := types.RelMultiplicity(br.readU8())
		src := types.TableId(br.readU64())
		dst := types.TableId(br.readU64())
		srcPKType := deserializeLogicalType(br)
		dstPKType := deserializeLogicalType(br)
		r := &RelTableSchema{
			base: base{
				tableType:      types.TableTypeRel,
				name:           name,
				tableID:        id,
				properties:     props,
				nextPropertyID: nextPropertyID,
			},
			multiplicity: mult,
			srcTable:     src,
			dstTable:     dst,
			srcPKType:    srcPKType,
			dstPKType:    dstPKType,
		}
		return r, br.err
	case types.TableTypeRelGroup:
		childIDs := readTableIDList(br)
		g := NewRelTableGroupSchema(name, id, childIDs)
		g.nextPropertyID = nextPropertyID
		return g, br.err
	case types.TableTypeRdf:
		childIDs := readTableIDList(br)
		if len(childIDs) != 4 {
			return nil, oriorerr.WithCode(oriorerr.CorruptCatalog, "BadRdfChildren", "RDF graph must have exactly 4 children")
		}
		g := NewRdfGraphSchema(name, id, childIDs[0], childIDs[1], childIDs[2], childIDs[3])
		g.nextPropertyID = nextPropertyID
		return g, br.err
	default:
		return nil, oriorerr.WithCode(oriorerr.CorruptCatalog, "BadTableKind", "unknown table kind byte")
	}
}

func serializeLogicalType(bw *byteWriter, t types.LogicalType) {
	bw.writeU8(uint8(t.Kind))
	switch t.Kind {
	case types.KindList:
		if t.Elem != nil {
			bw.writeU8(1)
			serializeLogicalType(bw, *t.Elem)
		} else {
			bw.writeU8(0)
		}
	case types.KindStruct, types.KindUnion, types.KindRdfVariant:
		bw.writeU32(uint32(len(t.Fields)))
		for _, f := range t.Fields {
			bw.writeString(f.Name)
			serializeLogicalType(bw, f.Type)
		}
	case types.KindMap:
		serializeLogicalType(bw, *t.Key)
		serializeLogicalType(bw, *t.Value)
	}
}

func deserializeLogicalType(br *byteReader) types.LogicalType {
	kind := types.TypeKind(br.readU8())
	switch kind {
	case types.KindList:
		hasElem := br.readU8()
		if hasElem == 1 {
			elem := deserializeLogicalType(br)
			return types.List(elem)
		}
		return types.LogicalType{Kind: types.KindList}
	case types.KindStruct, types.KindUnion, types.KindRdfVariant:
		n := br.readU32()
		fields := make([]types.StructField, n)
		for i := range fields {
			fields[i].Name = br.readString()
			fields[i].Type = deserializeLogicalType(br)
		}
		return types.LogicalType{Kind: kind, Fields: fields}
	case types.KindMap:
		k := deserializeLogicalType(br)
		v := deserializeLogicalType(br)
		return types.Map(k, v)
	default:
		return types.LogicalType{Kind: kind}
	}
}

func writeTableIDSet(bw *byteWriter, ids []types.TableId) {
	sortTableIDs(ids)
	writeTableIDList(bw, ids)
}

func writeTableIDList(bw *byteWriter, ids []types.TableId) {
	bw.writeU32(uint32(len(ids)))
	for _, id := range ids {
		bw.writeU64(uint64(id))
	}
}

func readTableIDSet(br *byteReader) []types.TableId { return readTableIDList(br) }

func readTableIDList(br *byteReader) []types.TableId {
	n := br.readU32()
	out := make([]types.TableId, n)
	for i := range out {
		out[i] = types.TableId(br.readU64())
	}
	return out
}

// --- small binary helpers, length-prefixed strings, no delimiters ---

type ioWriter interface {
	Write(p []byte) (int, error)
}

func asByteWriter(w ioWriter) *byteWriter {
	if bw, ok := w.(*byteWriter); ok {
		return bw
	}
	return &byteWriter{w: w}
}

type byteWriter struct {
	w   io.Writer
	err error
}

func (bw *byteWriter) write(p []byte) {
	if bw.err != nil {
		return
	}
	_, bw.err = bw.w.Write(p)
}

func (bw *byteWriter) writeU8(v uint8)   { bw.write([]byte{v}) }
func (bw *byteWriter) writeU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	bw.write(b[:])
}
func (bw *byteWriter) writeU64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	bw.write(b[:])
}
func (bw *byteWriter) writeString(s string) {
	bw.writeU32(uint32(len(s)))
	bw.write([]byte(s))
}

// Write satisfies io.Writer so byteWriter can itself be passed where an
// ioWriter is expected (asByteWriter short-circuits on the concrete type).
func (bw *byteWriter) Write(p []byte) (int, error) {
	bw.write(p)
	return len(p), bw.err
}

type byteReader struct {
	r   io.Reader
	err error
}

func (br *byteReader) read(p []byte) {
	if br.err != nil {
		return
	}
	_, br.err = io.ReadFull(br.r, p)
}

func (br *byteReader) readU8() uint8 {
	var b [1]byte
	br.read(b[:])
	return b[0]
}
func (br *byteReader) readU32() uint32 {
	var b [4]byte
	br.read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}
func (br *byteReader) readU64() uint64 {
	var b [8]byte
	br.read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}
func (br *byteReader) readString() string {
	n := br.readU32()
	b := make([]byte, n)
	br.read(b)
	return string(b)
}
