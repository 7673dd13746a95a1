package soltype

import (
	"fmt"
	"math/big"
	"reflect"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// FromABI converts a go-ethereum ABI type into a Type.
func FromABI(at abi.Type) (Type, error) {
	switch at.T {
	case abi.AddressTy:
		return Address(), nil
	case abi.BoolTy:
		return Bool(), nil
	case abi.UintTy:
		return Uint(at.Size), nil
	case abi.IntTy:
		return Int(at.Size), nil
	case abi.StringTy:
		return String(), nil
	case abi.BytesTy:
		return Bytes(), nil
	case abi.FixedBytesTy:
		return FixedBytes(at.Size), nil
	case abi.SliceTy, abi.ArrayTy:
		elem, err := FromABI(*at.Elem)
		if err != nil {
			return Type{}, err
		}
		if at.T == abi.SliceTy {
			return Slice(elem), nil
		}
		return Array(elem, at.Size), nil
	case abi.TupleTy:
		fields := make([]Field, len(at.TupleElems))
		for i, elem := range at.TupleElems {
			ft, err := FromABI(*elem)
			if err != nil {
				return Type{}, err
			}
			name := ""
			if i < len(at.TupleRawNames) {
				name = at.TupleRawNames[i]
			}
			fields[i] = Field{Name: name, Type: ft}
		}
		return Tuple(fields...), nil
	}
	return Type{}, fmt.Errorf("soltype: unsupported abi type %s", at.String())
}

// FieldsFromArguments converts ABI arguments into parameter fields.
func FieldsFromArguments(args abi.Arguments) ([]Field, error) {
	fields := make([]Field, len(args))
	for i, arg := range args {
		t, err := FromABI(arg.Type)
		if err != nil {
			return nil, fmt.Errorf("soltype: argument %q: %w", arg.Name, err)
		}
		fields[i] = Field{Name: arg.Name, Type: t}
	}
	return fields, nil
}

// ABI converts t into a go-ethereum ABI type. Unnamed tuple members are
// named after their position.
func (t Type) ABI() (abi.Type, error) {
	typ, components := t.marshaling()
	return abi.NewType(typ, "", components)
}

func (t Type) marshaling() (string, []abi.ArgumentMarshaling) {
	switch t.Kind {
	case KindTuple:
		comps := make([]abi.ArgumentMarshaling, len(t.Fields))
		for i, f := range t.Fields {
			typ, sub := f.Type.marshaling()
			comps[i] = abi.ArgumentMarshaling{Name: memberName(i, f.Name), Type: typ, Components: sub}
		}
		return "tuple", comps
	case KindArray:
		typ, comps := t.Elem.marshaling()
		if t.Size > 0 {
			return fmt.Sprintf("%s[%d]", typ, t.Size), comps
		}
		return typ + "[]", comps
	default:
		return t.String(), nil
	}
}

func memberName(i int, name string) string {
	if name == "" || abi.ToCamelCase(name) == "" {
		return fmt.Sprintf("field%d", i)
	}
	return name
}

// Arguments builds ABI arguments for the given parameters.
func Arguments(params []Field) (abi.Arguments, error) {
	args := make(abi.Arguments, len(params))
	for i, p := range params {
		at, err := p.Type.ABI()
		if err != nil {
			return nil, fmt.Errorf("soltype: parameter %d: %w", i, err)
		}
		args[i] = abi.Argument{Name: p.Name, Type: at}
	}
	return args, nil
}

// Encode ABI-encodes values against params.
func Encode(params []Field, values []Value) ([]byte, error) {
	if len(params) != len(values) {
		return nil, fmt.Errorf("soltype: %d values for %d parameters", len(values), len(params))
	}
	args, err := Arguments(params)
	if err != nil {
		return nil, err
	}
	natives := make([]any, len(values))
	for i, v := range values {
		if !v.Type().Equal(params[i].Type) {
			return nil, fmt.Errorf("soltype: parameter %d: value of type %s, want %s", i, v.Type(), params[i].Type)
		}
		rv, err := toNative(args[i].Type, v)
		if err != nil {
			return nil, fmt.Errorf("soltype: parameter %d: %w", i, err)
		}
		natives[i] = rv.Interface()
	}
	return args.Pack(natives...)
}

// Selector returns the 4-byte function selector for a signature.
func Selector(name string, params []Field) []byte {
	return crypto.Keccak256([]byte(Signature(name, params)))[:4]
}

// EncodeCall returns the calldata for calling name with values.
func EncodeCall(name string, params []Field, values []Value) ([]byte, error) {
	packed, err := Encode(params, values)
	if err != nil {
		return nil, err
	}
	return append(Selector(name, params), packed...), nil
}

// Decode unpacks ABI-encoded data into values of the given types.
func Decode(params []Field, data []byte) ([]Value, error) {
	if len(params) == 0 {
		return nil, nil
	}
	args, err := Arguments(params)
	if err != nil {
		return nil, err
	}
	natives, err := args.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("soltype: decode: %w", err)
	}
	values := make([]Value, len(natives))
	for i, n := range natives {
		v, err := FromNative(params[i].Type, n)
		if err != nil {
			return nil, fmt.Errorf("soltype: result %d: %w", i, err)
		}
		values[i] = v
	}
	return values, nil
}

func toNative(at abi.Type, v Value) (reflect.Value, error) {
	rt := at.GetType()
	switch v := v.(type) {
	case AddressValue:
		return reflect.ValueOf(v.V), nil
	case BoolValue:
		return reflect.ValueOf(v.V), nil
	case UintValue:
		if rt.Kind() == reflect.Ptr {
			return reflect.ValueOf(new(big.Int).Set(v.V)), nil
		}
		out := reflect.New(rt).Elem()
		out.SetUint(v.V.Uint64())
		return out, nil
	case IntValue:
		if rt.Kind() == reflect.Ptr {
			return reflect.ValueOf(new(big.Int).Set(v.V)), nil
		}
		out := reflect.New(rt).Elem()
		out.SetInt(v.V.Int64())
		return out, nil
	case BytesValue:
		if at.T == abi.FixedBytesTy {
			out := reflect.New(rt).Elem()
			reflect.Copy(out, reflect.ValueOf(v.V))
			return out, nil
		}
		return reflect.ValueOf(v.V), nil
	case StringValue:
		return reflect.ValueOf(v.V), nil
	case ArrayValue:
		var out reflect.Value
		if at.T == abi.SliceTy {
			out = reflect.MakeSlice(rt, len(v.Items), len(v.Items))
		} else {
			out = reflect.New(rt).Elem()
		}
		for i, item := range v.Items {
			ev, err := toNative(*at.Elem, item)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Index(i).Set(ev)
		}
		return out, nil
	case TupleValue:
		out := reflect.New(rt).Elem()
		for i, item := range v.Items {
			ev, err := toNative(*at.TupleElems[i], item)
			if err != nil {
				return reflect.Value{}, err
			}
			out.Field(i).Set(ev)
		}
		return out, nil
	}
	return reflect.Value{}, fmt.Errorf("unsupported value %T", v)
}

// FromNative converts a value produced by go-ethereum's ABI decoder into a
// Value of type t.
func FromNative(t Type, native any) (Value, error) {
	return fromReflect(t, reflect.ValueOf(native))
}

func fromReflect(t Type, rv reflect.Value) (Value, error) {
	for rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	switch t.Kind {
	case KindAddress:
		addr, ok := rv.Interface().(common.Address)
		if !ok {
			return nil, fmt.Errorf("expected address, got %s", rv.Type())
		}
		return AddressValue{V: addr}, nil
	case KindBool:
		if rv.Kind() != reflect.Bool {
			return nil, fmt.Errorf("expected bool, got %s", rv.Type())
		}
		return BoolValue{V: rv.Bool()}, nil
	case KindUint, KindInt:
		n, err := reflectBig(rv)
		if err != nil {
			return nil, err
		}
		if t.Kind == KindUint {
			return UintValue{Bits: t.Bits, V: n}, nil
		}
		return IntValue{Bits: t.Bits, V: n}, nil
	case KindBytes:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("expected bytes, got %s", rv.Type())
		}
		b := make([]byte, rv.Len())
		for i := range b {
			b[i] = byte(rv.Index(i).Uint())
		}
		return BytesValue{Size: t.Size, V: b}, nil
	case KindString:
		if rv.Kind() != reflect.String {
			return nil, fmt.Errorf("expected string, got %s", rv.Type())
		}
		return StringValue{V: rv.String()}, nil
	case KindArray:
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("expected array, got %s", rv.Type())
		}
		items := make([]Value, rv.Len())
		for i := range items {
			item, err := fromReflect(*t.Elem, rv.Index(i))
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return ArrayValue{Elem: *t.Elem, Size: t.Size, Items: items}, nil
	case KindTuple:
		if rv.Kind() != reflect.Struct || rv.NumField() != len(t.Fields) {
			return nil, fmt.Errorf("expected tuple of %d members, got %s", len(t.Fields), rv.Type())
		}
		items := make([]Value, len(t.Fields))
		for i, f := range t.Fields {
			item, err := fromReflect(f.Type, rv.Field(i))
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return TupleValue{Fields: t.Fields, Items: items}, nil
	}
	return nil, fmt.Errorf("unsupported type %s", t)
}

func reflectBig(rv reflect.Value) (*big.Int, error) {
	switch rv.Kind() {
	case reflect.Ptr:
		if b, ok := rv.Interface().(*big.Int); ok && b != nil {
			return new(big.Int).Set(b), nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return new(big.Int).SetUint64(rv.Uint()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return big.NewInt(rv.Int()), nil
	}
	return nil, fmt.Errorf("expected integer, got %s", rv.Type())
}
