package soltype

import (
	"bytes"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Value is a typed argument or return value. The set of implementations is
// closed: every Value is one of the types declared in this file.
type Value interface {
	// Type returns the type the value was validated against.
	Type() Type
	// String returns the canonical text form, which Validate accepts back.
	String() string
	isValue()
}

type AddressValue struct {
	V common.Address
}

type BoolValue struct {
	V bool
}

// UintValue holds an unsigned integer of the given width.
type UintValue struct {
	Bits int
	V    *big.Int
}

// IntValue holds a signed integer of the given width.
type IntValue struct {
	Bits int
	V    *big.Int
}

// BytesValue holds dynamic bytes (Size 0) or bytesN.
type BytesValue struct {
	Size int
	V    []byte
}

type StringValue struct {
	V string
}

// ArrayValue holds the elements of a dynamic (Size 0) or fixed array.
type ArrayValue struct {
	Elem  Type
	Size  int
	Items []Value
}

// TupleValue holds one value per tuple member, in member order.
type TupleValue struct {
	Fields []Field
	Items  []Value
}

func (AddressValue) isValue() {}
func (BoolValue) isValue()    {}
func (UintValue) isValue()    {}
func (IntValue) isValue()     {}
func (BytesValue) isValue()   {}
func (StringValue) isValue()  {}
func (ArrayValue) isValue()   {}
func (TupleValue) isValue()   {}

func (v AddressValue) Type() Type { return Address() }
func (v BoolValue) Type() Type    { return Bool() }
func (v UintValue) Type() Type    { return Uint(v.Bits) }
func (v IntValue) Type() Type     { return Int(v.Bits) }
func (v BytesValue) Type() Type   { return Type{Kind: KindBytes, Size: v.Size} }
func (v StringValue) Type() Type  { return String() }

func (v ArrayValue) Type() Type {
	elem := v.Elem
	return Type{Kind: KindArray, Elem: &elem, Size: v.Size}
}

func (v TupleValue) Type() Type { return Tuple(v.Fields...) }

func (v AddressValue) String() string { return v.V.Hex() }
func (v BoolValue) String() string    { return strconv.FormatBool(v.V) }
func (v UintValue) String() string    { return bigString(v.V) }
func (v IntValue) String() string     { return bigString(v.V) }
func (v BytesValue) String() string   { return hexutil.Encode(v.V) }
func (v StringValue) String() string  { return v.V }

func (v ArrayValue) String() string {
	parts := make([]string, len(v.Items))
	for i, item := range v.Items {
		parts[i] = item.String()
		if _, ok := item.(StringValue); ok {
			parts[i] = strconv.Quote(parts[i])
		}
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (v TupleValue) String() string {
	parts := make([]string, len(v.Items))
	for i, item := range v.Items {
		parts[i] = item.String()
		if _, ok := item.(StringValue); ok {
			parts[i] = strconv.Quote(parts[i])
		}
	}
	return "(" + strings.Join(parts, ",") + ")"
}

func bigString(b *big.Int) string {
	if b == nil {
		return "0"
	}
	return b.String()
}

// Zero returns the zero value of t.
func Zero(t Type) Value {
	switch t.Kind {
	case KindAddress:
		return AddressValue{}
	case KindBool:
		return BoolValue{}
	case KindUint:
		return UintValue{Bits: t.Bits, V: new(big.Int)}
	case KindInt:
		return IntValue{Bits: t.Bits, V: new(big.Int)}
	case KindBytes:
		return BytesValue{Size: t.Size, V: make([]byte, t.Size)}
	case KindString:
		return StringValue{}
	case KindArray:
		items := make([]Value, t.Size)
		for i := range items {
			items[i] = Zero(*t.Elem)
		}
		return ArrayValue{Elem: *t.Elem, Size: t.Size, Items: items}
	case KindTuple:
		items := make([]Value, len(t.Fields))
		for i, f := range t.Fields {
			items[i] = Zero(f.Type)
		}
		return TupleValue{Fields: t.Fields, Items: items}
	}
	return nil
}

// Equal reports whether a and b hold the same typed payload.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !a.Type().Equal(b.Type()) {
		return false
	}
	switch av := a.(type) {
	case AddressValue:
		return av.V == b.(AddressValue).V
	case BoolValue:
		return av.V == b.(BoolValue).V
	case UintValue:
		return bigEqual(av.V, b.(UintValue).V)
	case IntValue:
		return bigEqual(av.V, b.(IntValue).V)
	case BytesValue:
		return bytes.Equal(av.V, b.(BytesValue).V)
	case StringValue:
		return av.V == b.(StringValue).V
	case ArrayValue:
		return equalItems(av.Items, b.(ArrayValue).Items)
	case TupleValue:
		return equalItems(av.Items, b.(TupleValue).Items)
	}
	return false
}

func equalItems(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func bigEqual(a, b *big.Int) bool {
	if a == nil {
		a = new(big.Int)
	}
	if b == nil {
		b = new(big.Int)
	}
	return a.Cmp(b) == 0
}
