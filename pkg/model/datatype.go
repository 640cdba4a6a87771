package model

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
	"unicode/utf8"
)

// ValueKind is the Go representation chosen for a data type's values.
//
//	ValueString           string
//	ValueBool             bool
//	ValueByte             int8
//	ValueChar             rune
//	ValueDouble           float64
//	ValueFloat            float32
//	ValueInt              int32
//	ValueLong             int64
//	ValueShort            int16
//	ValueDate             time.Time
//	ValueFeatureMapEntry  Entry (only inside a FeatureMap)
//	ValueCustom           any value; converted with the data type's strategy
type ValueKind int

const (
	ValueCustom ValueKind = iota
	ValueString
	ValueBool
	ValueByte
	ValueChar
	ValueDouble
	ValueFloat
	ValueInt
	ValueLong
	ValueShort
	ValueDate
	ValueFeatureMapEntry
)

var valueKindNames = [...]string{
	ValueCustom:          "custom",
	ValueString:          "string",
	ValueBool:            "bool",
	ValueByte:            "byte",
	ValueChar:            "char",
	ValueDouble:          "double",
	ValueFloat:           "float",
	ValueInt:             "int",
	ValueLong:            "long",
	ValueShort:           "short",
	ValueDate:            "date",
	ValueFeatureMapEntry: "featuremap",
}

func (k ValueKind) String() string {
	if k >= 0 && int(k) < len(valueKindNames) {
		return valueKindNames[k]
	}
	return "ValueKind(" + strconv.Itoa(int(k)) + ")"
}

// ParseValueKind returns the kind named s.
func ParseValueKind(s string) (ValueKind, bool) {
	for k, name := range valueKindNames {
		if name == s {
			return ValueKind(k), true
		}
	}
	return ValueCustom, false
}

// DataClassifier is a classifier that types attribute values: a [*DataType]
// or an [*Enum].
type DataClassifier interface {
	Classifier

	// ConvertToString renders v in its external string form. ok is false for
	// a nil value.
	ConvertToString(v any) (s string, ok bool)

	// CreateFromString parses the external string form.
	CreateFromString(s string) (any, error)

	// DefaultValue is the value of an unset attribute of this type.
	DefaultValue() any
}

// DataType is a classifier for scalar attribute values.
type DataType struct {
	name string
	pkg  *Package
	kind ValueKind

	toString   func(any) string
	fromString func(string) (any, error)
}

func (*DataType) classifier() {}

// Name returns the data type name.
func (d *DataType) Name() string { return d.name }

// Package returns the declaring package.
func (d *DataType) Package() *Package { return d.pkg }

// Kind returns the value kind.
func (d *DataType) Kind() ValueKind { return d.kind }

// WithConversion replaces the string conversion strategy. Either function may
// be nil to keep the default for that direction.
func (d *DataType) WithConversion(toString func(any) string, fromString func(string) (any, error)) *DataType {
	if toString != nil {
		d.toString = toString
	}
	if fromString != nil {
		d.fromString = fromString
	}
	return d
}

// ConvertToString implements [DataClassifier].
func (d *DataType) ConvertToString(v any) (string, bool) {
	if v == nil {
		return "", false
	}
	if d.toString != nil {
		return d.toString(v), true
	}
	switch x := v.(type) {
	case string:
		return x, true
	case bool:
		return strconv.FormatBool(x), true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), true
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano), true
	case int32:
		if d.kind == ValueChar {
			return string(x), true
		}
		return strconv.FormatInt(int64(x), 10), true
	case int8, int16, int64, int:
		return fmt.Sprint(x), true
	case fmt.Stringer:
		return x.String(), true
	}
	return fmt.Sprint(v), true
}

// CreateFromString implements [DataClassifier].
func (d *DataType) CreateFromString(s string) (any, error) {
	if d.fromString != nil {
		return d.fromString(s)
	}
	switch d.kind {
	case ValueString, ValueCustom:
		return s, nil
	case ValueBool:
		return strconv.ParseBool(s)
	case ValueByte:
		n, err := strconv.ParseInt(s, 10, 8)
		return int8(n), err
	case ValueChar:
		r, _ := utf8.DecodeRuneInString(s)
		if r == utf8.RuneError {
			return rune(0), fmt.Errorf("invalid char %q", s)
		}
		return r, nil
	case ValueDouble:
		return strconv.ParseFloat(s, 64)
	case ValueFloat:
		f, err := strconv.ParseFloat(s, 32)
		return float32(f), err
	case ValueInt:
		n, err := strconv.ParseInt(s, 10, 32)
		return int32(n), err
	case ValueLong:
		return strconv.ParseInt(s, 10, 64)
	case ValueShort:
		n, err := strconv.ParseInt(s, 10, 16)
		return int16(n), err
	case ValueDate:
		return time.Parse(time.RFC3339Nano, s)
	}
	return nil, fmt.Errorf("data type %s: no string form for kind %s", d.name, d.kind)
}

// DefaultValue implements [DataClassifier]. Primitive kinds default to their
// zero value; strings, dates and custom values default to nil.
func (d *DataType) DefaultValue() any {
	switch d.kind {
	case ValueBool:
		return false
	case ValueByte:
		return int8(0)
	case ValueChar:
		return rune(0)
	case ValueDouble:
		return float64(0)
	case ValueFloat:
		return float32(0)
	case ValueInt:
		return int32(0)
	case ValueLong:
		return int64(0)
	case ValueShort:
		return int16(0)
	}
	return nil
}

// =============================================================================
// Enumerations
// =============================================================================

// EnumLiteral is one value of an [Enum]. Objects store *EnumLiteral values.
type EnumLiteral struct {
	Name    string // Identifier
	Value   int    // Ordinal written by the binary enumerator style
	Literal string // External string form
	enum    *Enum
}

// Enum returns the declaring enumeration.
func (l *EnumLiteral) Enum() *Enum { return l.enum }

// String returns the external string form.
func (l *EnumLiteral) String() string { return l.Literal }

// Enum is an enumeration classifier.
type Enum struct {
	name     string
	pkg      *Package
	literals []*EnumLiteral
}

func (*Enum) classifier() {}

// Name returns the enum name.
func (e *Enum) Name() string { return e.name }

// Package returns the declaring package.
func (e *Enum) Package() *Package { return e.pkg }

// AddLiteral appends a literal and returns the stored copy.
func (e *Enum) AddLiteral(l EnumLiteral) *EnumLiteral {
	lit := &EnumLiteral{Name: l.Name, Value: l.Value, Literal: l.Literal, enum: e}
	if lit.Literal == "" {
		lit.Literal = lit.Name
	}
	e.literals = append(e.literals, lit)
	return lit
}

// Literals returns the literals in declaration order.
func (e *Enum) Literals() []*EnumLiteral { return e.literals }

// ByValue returns the literal with the given ordinal value, or nil.
func (e *Enum) ByValue(v int) *EnumLiteral {
	for _, l := range e.literals {
		if l.Value == v {
			return l
		}
	}
	return nil
}

// ByLiteral returns the literal with the given external form, or nil.
func (e *Enum) ByLiteral(s string) *EnumLiteral {
	for _, l := range e.literals {
		if l.Literal == s {
			return l
		}
	}
	return nil
}

// ByName returns the literal with the given name, or nil.
func (e *Enum) ByName(name string) *EnumLiteral {
	for _, l := range e.literals {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// ConvertToString implements [DataClassifier].
func (e *Enum) ConvertToString(v any) (string, bool) {
	switch l := v.(type) {
	case *EnumLiteral:
		if l == nil {
			return "", false
		}
		return l.Literal, true
	case nil:
		return "", false
	}
	return fmt.Sprint(v), true
}

// CreateFromString implements [DataClassifier]. It accepts the literal form
// and, failing that, the literal name.
func (e *Enum) CreateFromString(s string) (any, error) {
	if l := e.ByLiteral(s); l != nil {
		return l, nil
	}
	if l := e.ByName(s); l != nil {
		return l, nil
	}
	return nil, fmt.Errorf("enum %s: unknown literal %q", e.name, s)
}

// DefaultValue implements [DataClassifier]: the first literal.
func (e *Enum) DefaultValue() any {
	if len(e.literals) == 0 {
		return nil
	}
	return e.literals[0]
}

// =============================================================================
// Builtin data types
// =============================================================================

// BuiltinsNsURI is the namespace URI of the [Builtins] package.
const BuiltinsNsURI = "urn:graphwire:builtins"

// Builtins holds one data type per primitive value kind. Metamodels refer to
// these by name; they never appear in documents.
var Builtins = newBuiltins()

// Builtin data types.
var (
	String          = Builtins.Classifier("String").(*DataType)
	Boolean         = Builtins.Classifier("Boolean").(*DataType)
	Byte            = Builtins.Classifier("Byte").(*DataType)
	Char            = Builtins.Classifier("Char").(*DataType)
	Double          = Builtins.Classifier("Double").(*DataType)
	Float           = Builtins.Classifier("Float").(*DataType)
	Int             = Builtins.Classifier("Int").(*DataType)
	Long            = Builtins.Classifier("Long").(*DataType)
	Short           = Builtins.Classifier("Short").(*DataType)
	Date            = Builtins.Classifier("Date").(*DataType)
	FeatureMapEntry = Builtins.Classifier("FeatureMapEntry").(*DataType)
)

func newBuiltins() *Package {
	p := NewPackage("builtins", BuiltinsNsURI)
	p.NewDataType("String", ValueString)
	p.NewDataType("Boolean", ValueBool)
	p.NewDataType("Byte", ValueByte)
	p.NewDataType("Char", ValueChar)
	p.NewDataType("Double", ValueDouble)
	p.NewDataType("Float", ValueFloat)
	p.NewDataType("Int", ValueInt)
	p.NewDataType("Long", ValueLong)
	p.NewDataType("Short", ValueShort)
	p.NewDataType("Date", ValueDate)
	p.NewDataType("FeatureMapEntry", ValueFeatureMapEntry)
	return p
}

// =============================================================================
// Value equality
// =============================================================================

// ValuesEqual reports whether two feature values are equal: objects by
// identity, dates by instant, comparable values with ==, anything else
// structurally.
func ValuesEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Object:
		y, ok := b.(*Object)
		return ok && x == y
	case time.Time:
		y, ok := b.(time.Time)
		return ok && x.Equal(y)
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}
