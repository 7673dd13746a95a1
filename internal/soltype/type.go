package soltype

import (
	"fmt"
	"strings"
)

// Kind identifies the shape of a Type node.
type Kind int

const (
	KindAddress Kind = iota
	KindBool
	KindUint
	KindInt
	KindBytes
	KindString
	KindArray
	KindTuple
)

func (k Kind) String() string {
	switch k {
	case KindAddress:
		return "address"
	case KindBool:
		return "bool"
	case KindUint:
		return "uint"
	case KindInt:
		return "int"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindTuple:
		return "tuple"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is one node of a recursive ABI type tree.
//
// Bits is set for KindUint and KindInt. Size is the fixed length of a
// KindBytes or KindArray node and zero when the node is dynamic. Elem is the
// element type of a KindArray node and Fields the members of a KindTuple node.
type Type struct {
	Kind   Kind
	Bits   int
	Size   int
	Elem   *Type
	Fields []Field
}

// Field is a named tuple member or function parameter.
type Field struct {
	Name string
	Type Type
}

func Address() Type { return Type{Kind: KindAddress} }
func Bool() Type    { return Type{Kind: KindBool} }
func String() Type  { return Type{Kind: KindString} }
func Bytes() Type   { return Type{Kind: KindBytes} }

func Uint(bits int) Type { return Type{Kind: KindUint, Bits: bits} }
func Int(bits int) Type  { return Type{Kind: KindInt, Bits: bits} }

// FixedBytes returns the bytesN type.
func FixedBytes(n int) Type { return Type{Kind: KindBytes, Size: n} }

// Slice returns the dynamic array type elem[].
func Slice(elem Type) Type {
	return Type{Kind: KindArray, Elem: &elem}
}

// Array returns the fixed array type elem[n].
func Array(elem Type, n int) Type {
	return Type{Kind: KindArray, Elem: &elem, Size: n}
}

// Tuple returns a tuple type with the given members.
func Tuple(fields ...Field) Type {
	return Type{Kind: KindTuple, Fields: fields}
}

// Check reports whether t and all of its children satisfy the type
// constraints: integer widths are multiples of 8 in [8,256], fixed bytes
// lengths are in [1,32] and arrays carry an element type.
func (t Type) Check() error {
	switch t.Kind {
	case KindAddress, KindBool, KindString:
		return nil
	case KindUint, KindInt:
		if t.Bits < 8 || t.Bits > 256 || t.Bits%8 != 0 {
			return fmt.Errorf("soltype: invalid %s width %d", t.Kind, t.Bits)
		}
		return nil
	case KindBytes:
		if t.Size < 0 || t.Size > 32 {
			return fmt.Errorf("soltype: invalid fixed bytes length %d", t.Size)
		}
		return nil
	case KindArray:
		if t.Elem == nil {
			return fmt.Errorf("soltype: array without element type")
		}
		if t.Size < 0 {
			return fmt.Errorf("soltype: negative array length %d", t.Size)
		}
		return t.Elem.Check()
	case KindTuple:
		for i, f := range t.Fields {
			if err := f.Type.Check(); err != nil {
				return fmt.Errorf("soltype: tuple member %d: %w", i, err)
			}
		}
		return nil
	default:
		return fmt.Errorf("soltype: unknown kind %d", int(t.Kind))
	}
}

// String renders the canonical type string used in function signatures,
// e.g. "uint256", "bytes32", "address[]" or "(address,uint256)[2]".
func (t Type) String() string {
	switch t.Kind {
	case KindUint:
		return fmt.Sprintf("uint%d", t.Bits)
	case KindInt:
		return fmt.Sprintf("int%d", t.Bits)
	case KindBytes:
		if t.Size > 0 {
			return fmt.Sprintf("bytes%d", t.Size)
		}
		return "bytes"
	case KindArray:
		if t.Elem == nil {
			return "?[]"
		}
		if t.Size > 0 {
			return fmt.Sprintf("%s[%d]", t.Elem.String(), t.Size)
		}
		return t.Elem.String() + "[]"
	case KindTuple:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = f.Type.String()
		}
		return "(" + strings.Join(parts, ",") + ")"
	default:
		return t.Kind.String()
	}
}

// Equal reports whether two types have the same shape. Member names are
// ignored.
func (t Type) Equal(o Type) bool {
	return t.String() == o.String()
}

// IsTextField reports whether a value of this type is entered as a single
// line of text. Bools are toggled and tuples are split into member fields.
func (t Type) IsTextField() bool {
	return t.Kind != KindBool && t.Kind != KindTuple
}

// ContainsTuple reports whether t is a tuple or a (possibly nested) array
// of tuples.
func (t Type) ContainsTuple() bool {
	switch t.Kind {
	case KindTuple:
		return true
	case KindArray:
		return t.Elem != nil && t.Elem.ContainsTuple()
	default:
		return false
	}
}
