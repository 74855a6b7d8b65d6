package types

import "fmt"

// TypeKind is the discriminant of the LogicalType sum type.
type TypeKind int

const (
	KindBool TypeKind = iota
	KindInt64
	KindInt32
	KindInt16
	KindDouble
	KindFloat
	KindString
	KindDate
	KindTimestamp
	KindInterval
	KindBlob
	KindInternalId
	KindSerial
	KindList
	KindStruct
	KindUnion
	KindMap
	KindArrowColumn
	KindRdfVariant
)

func (k TypeKind) String() string {
	names := [...]string{
		"BOOL", "INT64", "INT32", "INT16", "DOUBLE", "FLOAT", "STRING", "DATE",
		"TIMESTAMP", "INTERVAL", "BLOB", "INTERNAL_ID", "SERIAL", "LIST",
		"STRUCT", "UNION", "MAP", "ARROW_COLUMN", "RDF_VARIANT",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "UNKNOWN"
	}
	return names[k]
}

// StructField names one member of a Struct or Union LogicalType.
type StructField struct {
	Name string
	Type LogicalType
}

// LogicalType is a tagged union over the fixed set of column types the
// catalog and copy pipeline understand. The Kind field discriminates which
// of Elem / Fields / Key+Value is populated; recursive variants are held
// behind pointers so LogicalType itself stays a small, copyable value.
type LogicalType struct {
	Kind TypeKind

	// Elem is populated for KindList: the element type.
	Elem *LogicalType

	// Fields is populated for KindStruct and KindUnion.
	Fields []StructField

	// Key, Value are populated for KindMap.
	Key   *LogicalType
	Value *LogicalType
}

func Bool() LogicalType        { return LogicalType{Kind: KindBool} }
func Int64() LogicalType       { return LogicalType{Kind: KindInt64} }
func Int32() LogicalType       { return LogicalType{Kind: KindInt32} }
func Int16() LogicalType       { return LogicalType{Kind: KindInt16} }
func Double() LogicalType      { return LogicalType{Kind: KindDouble} }
func Float() LogicalType       { return LogicalType{Kind: KindFloat} }
func String() LogicalType      { return LogicalType{Kind: KindString} }
func Date() LogicalType        { return LogicalType{Kind: KindDate} }
func Timestamp() LogicalType   { return LogicalType{Kind: KindTimestamp} }
func Interval() LogicalType    { return LogicalType{Kind: KindInterval} }
func Blob() LogicalType        { return LogicalType{Kind: KindBlob} }
func InternalId() LogicalType  { return LogicalType{Kind: KindInternalId} }
func Serial() LogicalType      { return LogicalType{Kind: KindSerial} }
func ArrowColumn() LogicalType { return LogicalType{Kind: KindArrowColumn} }

// RdfVariant is the predefined {_type: Int16, _value: Blob} struct used for
// literal-node values. LogicalType has no UInt8 kind, so the _type tag is
// held as Int16.
func RdfVariant() LogicalType {
	return LogicalType{
		Kind: KindRdfVariant,
		Fields: []StructField{
			{Name: "_type", Type: Int16()},
			{Name: "_value", Type: Blob()},
		},
	}
}

func List(elem LogicalType) LogicalType {
	e := elem
	return LogicalType{Kind: KindList, Elem: &e}
}

func Struct(fields []StructField) LogicalType {
	return LogicalType{Kind: KindStruct, Fields: fields}
}

func Union(fields []StructField) LogicalType {
	return LogicalType{Kind: KindUnion, Fields: fields}
}

func Map(key, value LogicalType) LogicalType {
	k, v := key, value
	return LogicalType{Kind: KindMap, Key: &k, Value: &v}
}

// GetElem returns the List element type, or nil if this is not a List.
func (t LogicalType) GetElem() *LogicalType { return t.Elem }

// GetFields returns the Struct/Union member list, or nil otherwise.
func (t LogicalType) GetFields() []StructField { return t.Fields }

// GetKey returns the Map key type, or nil if this is not a Map.
func (t LogicalType) GetKey() *LogicalType { return t.Key }

// GetValue returns the Map value type, or nil if this is not a Map.
func (t LogicalType) GetValue() *LogicalType { return t.Value }

// Equal reports structural equality, recursing into List/Struct/Union/Map.
func (t LogicalType) Equal(o LogicalType) bool {
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KindList:
		if t.Elem == nil || o.Elem == nil {
			return t.Elem == o.Elem
		}
		return t.Elem.Equal(*o.Elem)
	case KindStruct, KindUnion, KindRdfVariant:
		if len(t.Fields) != len(o.Fields) {
			return false
		}
		for i := range t.Fields {
			if t.Fields[i].Name != o.Fields[i].Name || !t.Fields[i].Type.Equal(o.Fields[i].Type) {
				return false
			}
		}
		return true
	case KindMap:
		if (t.Key == nil) != (o.Key == nil) || (t.Value == nil) != (o.Value == nil) {
			return false
		}
		if t.Key != nil && !t.Key.Equal(*o.Key) {
			return false
		}
		if t.Value != nil && !t.Value.Equal(*o.Value) {
			return false
		}
		return true
	default:
		return true
	}
}

func (t LogicalType) String() string {
	switch t.Kind {
	case KindList:
		if t.Elem != nil {
			return fmt.Sprintf("LIST(%s)", t.Elem.String())
		}
		return "LIST(?)"
	case KindStruct:
		return fmt.Sprintf("STRUCT%s", fieldsString(t.Fields))
	case KindUnion:
		return fmt.Sprintf("UNION%s", fieldsString(t.Fields))
	case KindMap:
		if t.Key != nil && t.Value != nil {
			return fmt.Sprintf("MAP(%s, %s)", t.Key.String(), t.Value.String())
		}
		return "MAP(?, ?)"
	default:
		return t.Kind.String()
	}
}

func fieldsString(fields []StructField) string {
	s := "("
	for i, f := range fields {
		if i > 0 {
			s += ", "
		}
		s += f.Name + ": " + f.Type.String()
	}
	return s + ")"
}

// IsValidPrimaryKeyType reports whether t may be used as a Node table's PK,
// per the catalog invariant that it be Int64, String, or Serial.
func IsValidPrimaryKeyType(t LogicalType) bool {
	switch t.Kind {
	case KindInt64, KindString, KindSerial:
		return true
	default:
		return false
	}
}

// IsForbiddenOnRelTable reports whether t may never appear as a Rel table
// property (Serial, Union, Struct, Map are all forbidden there).
func IsForbiddenOnRelTable(t LogicalType) bool {
	switch t.Kind {
	case KindSerial, KindUnion, KindStruct, KindMap:
		return true
	default:
		return false
	}
}
