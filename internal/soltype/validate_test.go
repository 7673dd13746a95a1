package soltype

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Uint(t *testing.T) {
	t.Run("uint8 max is accepted", func(t *testing.T) {
		v, err := Validate(Uint(8), "255")
		require.NoError(t, err)
		assert.True(t, Equal(UintValue{Bits: 8, V: big.NewInt(255)}, v))
	})

	t.Run("uint8 overflow is out of range", func(t *testing.T) {
		_, err := Validate(Uint(8), "256")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrOutOfRange))
		assert.Equal(t, OutOfRange, KindOf(err))
	})

	t.Run("negative is rejected", func(t *testing.T) {
		_, err := Validate(Uint(8), "-1")
		require.Error(t, err)
		assert.Equal(t, OutOfRange, KindOf(err))
	})

	t.Run("hex is not a number", func(t *testing.T) {
		_, err := Validate(Uint(256), "0x10")
		assert.Equal(t, NotANumber, KindOf(err))
	})

	t.Run("empty is not a number", func(t *testing.T) {
		_, err := Validate(Uint(256), "")
		assert.True(t, errors.Is(err, ErrNotANumber))
	})

	t.Run("uint256 max", func(t *testing.T) {
		limit := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
		_, err := Validate(Uint(256), limit.String())
		require.NoError(t, err)

		_, err = Validate(Uint(256), new(big.Int).Add(limit, big.NewInt(1)).String())
		assert.Equal(t, OutOfRange, KindOf(err))
	})

	t.Run("surrounding whitespace is ignored", func(t *testing.T) {
		v, err := Validate(Uint(16), "  42 ")
		require.NoError(t, err)
		assert.Equal(t, "42", v.String())
	})
}

func TestValidate_Int(t *testing.T) {
	tests := []struct {
		text string
		ok   bool
	}{
		{"-128", true},
		{"127", true},
		{"0", true},
		{"128", false},
		{"-129", false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			_, err := Validate(Int(8), tt.text)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, OutOfRange, KindOf(err))
			}
		})
	}
}

func TestValidate_Address(t *testing.T) {
	t.Run("accepts lower and mixed case", func(t *testing.T) {
		lower := "0x" + strings.Repeat("a", 40)
		v, err := Validate(Address(), lower)
		require.NoError(t, err)
		assert.Equal(t, common.HexToAddress(lower), v.(AddressValue).V)

		_, err = Validate(Address(), "0xAbCdEf0123456789abcdef0123456789ABCDEF01")
		assert.NoError(t, err)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, text := range []string{
			"",
			strings.Repeat("a", 40),
			"0x" + strings.Repeat("a", 39),
			"0x" + strings.Repeat("a", 41),
			"0x" + strings.Repeat("g", 40),
		} {
			_, err := Validate(Address(), text)
			assert.Equal(t, MalformedAddress, KindOf(err), "text %q", text)
		}
	})
}

func TestValidate_Bytes(t *testing.T) {
	t.Run("dynamic bytes", func(t *testing.T) {
		v, err := Validate(Bytes(), "0xdeadbeef")
		require.NoError(t, err)
		assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, v.(BytesValue).V)
	})

	t.Run("empty dynamic bytes", func(t *testing.T) {
		v, err := Validate(Bytes(), "0x")
		require.NoError(t, err)
		assert.Empty(t, v.(BytesValue).V)
	})

	t.Run("fixed length must match", func(t *testing.T) {
		_, err := Validate(FixedBytes(4), "0xdeadbeef")
		require.NoError(t, err)

		_, err = Validate(FixedBytes(4), "0xdead")
		assert.Equal(t, MalformedBytes, KindOf(err))
	})

	t.Run("odd length and missing prefix", func(t *testing.T) {
		_, err := Validate(Bytes(), "0xabc")
		assert.Equal(t, MalformedBytes, KindOf(err))

		_, err = Validate(Bytes(), "abcd")
		assert.Equal(t, MalformedBytes, KindOf(err))
	})
}

func TestValidate_StringAndBool(t *testing.T) {
	t.Run("string is verbatim", func(t *testing.T) {
		v, err := Validate(String(), "  hello, world ")
		require.NoError(t, err)
		assert.Equal(t, "  hello, world ", v.(StringValue).V)
	})

	t.Run("bool words", func(t *testing.T) {
		for text, want := range map[string]bool{"true": true, "YES": true, "1": true, "false": false, "0": false, " No ": false} {
			v, err := Validate(Bool(), text)
			require.NoError(t, err)
			assert.Equal(t, want, v.(BoolValue).V, "text %q", text)
		}
	})

	t.Run("unknown bool text is rejected", func(t *testing.T) {
		for _, text := range []string{"junk", "ture", "", "2"} {
			_, err := Validate(Bool(), text)
			assert.Equal(t, MalformedBool, KindOf(err), "text %q", text)
			assert.True(t, errors.Is(err, ErrMalformedBool))
		}
	})

	t.Run("bad bool inside a list carries its index", func(t *testing.T) {
		_, err := Validate(Slice(Bool()), "true,ture,maybe")
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, MalformedBool, ve.Kind)
		assert.Equal(t, []int{1}, ve.Path)
	})

	t.Run("bad bool inside a tuple", func(t *testing.T) {
		tuple := Tuple(Field{Name: "ok", Type: Bool()}, Field{Name: "n", Type: Uint(8)})
		_, err := Validate(tuple, "(maybe, 1)")
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, []int{0}, ve.Path)
	})
}

func TestValidate_Array(t *testing.T) {
	t.Run("dynamic uint256 list", func(t *testing.T) {
		v, err := Validate(Slice(Uint(256)), "1,2,3")
		require.NoError(t, err)

		want := ArrayValue{Elem: Uint(256), Items: []Value{
			UintValue{Bits: 256, V: big.NewInt(1)},
			UintValue{Bits: 256, V: big.NewInt(2)},
			UintValue{Bits: 256, V: big.NewInt(3)},
		}}
		assert.True(t, Equal(want, v))
	})

	t.Run("fixed arity mismatch", func(t *testing.T) {
		_, err := Validate(Array(Uint(256), 3), "1,2")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrArityMismatch))
	})

	t.Run("newlines and brackets", func(t *testing.T) {
		v, err := Validate(Array(Uint(8), 3), "[1,\n2\n3]")
		require.NoError(t, err)
		assert.Len(t, v.(ArrayValue).Items, 3)
	})

	t.Run("blank segments", func(t *testing.T) {
		tests := []struct {
			name string
			typ  Type
			text string
			want int
			kind ErrorKind
			path []int
		}{
			{name: "interior blank uint", typ: Slice(Uint(8)), text: "1,,2", kind: NotANumber, path: []int{1}},
			{name: "interior blank bool", typ: Slice(Bool()), text: "true, ,false", kind: MalformedBool, path: []int{1}},
			{name: "interior blank string is kept", typ: Slice(String()), text: "a,,b", want: 3},
			{name: "trailing comma", typ: Slice(Uint(8)), text: "1,2,", want: 2},
			{name: "comma then newline", typ: Slice(Uint(8)), text: "1,\n2", want: 2},
			{name: "blank line", typ: Slice(Uint(8)), text: "1\n\n2", want: 2},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				v, err := Validate(tt.typ, tt.text)
				if tt.kind != 0 {
					var ve *ValidationError
					require.True(t, errors.As(err, &ve), "got %v", err)
					assert.Equal(t, tt.kind, ve.Kind)
					assert.Equal(t, tt.path, ve.Path)
					return
				}
				require.NoError(t, err)
				assert.Len(t, v.(ArrayValue).Items, tt.want)
			})
		}

		v, err := Validate(Slice(String()), "a,,b")
		require.NoError(t, err)
		assert.Equal(t, StringValue{V: ""}, v.(ArrayValue).Items[1])
	})

	t.Run("blank input is an empty list", func(t *testing.T) {
		v, err := Validate(Slice(Address()), "   ")
		require.NoError(t, err)
		assert.Empty(t, v.(ArrayValue).Items)
	})

	t.Run("first element error carries its index", func(t *testing.T) {
		_, err := Validate(Slice(Uint(8)), "1, x, 300")
		require.Error(t, err)

		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, NotANumber, ve.Kind)
		assert.Equal(t, []int{1}, ve.Path)
		assert.True(t, strings.HasPrefix(err.Error(), "element 1: not a number"))
	})

	t.Run("nested arrays", func(t *testing.T) {
		v, err := Validate(Slice(Slice(Uint(8))), "[1,2],[3]")
		require.NoError(t, err)
		outer := v.(ArrayValue)
		require.Len(t, outer.Items, 2)
		assert.Len(t, outer.Items[0].(ArrayValue).Items, 2)
		assert.Len(t, outer.Items[1].(ArrayValue).Items, 1)
	})

	t.Run("nested error path", func(t *testing.T) {
		_, err := Validate(Slice(Slice(Uint(8))), "[1,2],[3,999]")
		var ve *ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, []int{1, 1}, ve.Path)
		assert.Equal(t, OutOfRange, ve.Kind)
	})

	t.Run("quoted strings may contain commas", func(t *testing.T) {
		v, err := Validate(Slice(String()), `"a,b", c`)
		require.NoError(t, err)
		items := v.(ArrayValue).Items
		require.Len(t, items, 2)
		assert.Equal(t, "a,b", items[0].(StringValue).V)
		assert.Equal(t, "c", items[1].(StringValue).V)
	})

	t.Run("array of tuples", func(t *testing.T) {
		typ := Slice(Tuple(Field{Name: "to", Type: Address()}, Field{Name: "amount", Type: Uint(256)}))
		text := "(0x" + strings.Repeat("a", 40) + ", 5), (0x" + strings.Repeat("b", 40) + ", 6)"
		v, err := Validate(typ, text)
		require.NoError(t, err)
		assert.Len(t, v.(ArrayValue).Items, 2)
	})
}

func TestValidate_Tuple(t *testing.T) {
	typ := Tuple(Field{Name: "to", Type: Address()}, Field{Name: "amount", Type: Uint(8)})

	t.Run("parenthesized members", func(t *testing.T) {
		v, err := Validate(typ, "(0x"+strings.Repeat("1", 40)+", 7)")
		require.NoError(t, err)
		assert.Len(t, v.(TupleValue).Items, 2)
	})

	t.Run("member count mismatch", func(t *testing.T) {
		_, err := Validate(typ, "(0x"+strings.Repeat("1", 40)+")")
		assert.Equal(t, ArityMismatch, KindOf(err))
	})

	t.Run("missing parentheses", func(t *testing.T) {
		_, err := Validate(typ, "0x"+strings.Repeat("1", 40)+", 7")
		assert.Equal(t, ArityMismatch, KindOf(err))
	})
}

func TestValidate_Deterministic(t *testing.T) {
	inputs := []struct {
		typ  Type
		text string
	}{
		{Uint(8), "255"},
		{Uint(8), "256"},
		{Int(256), "-5"},
		{Address(), "0x" + strings.Repeat("c", 40)},
		{Bytes(), "0x0102"},
		{Slice(Uint(8)), "1,2,x"},
	}
	for _, in := range inputs {
		v1, err1 := Validate(in.typ, in.text)
		v2, err2 := Validate(in.typ, in.text)
		assert.True(t, Equal(v1, v2), "%s %q", in.typ, in.text)
		if err1 == nil {
			assert.NoError(t, err2)
		} else {
			assert.Equal(t, err1.Error(), err2.Error())
		}
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	values := []Value{
		AddressValue{V: common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")},
		BoolValue{V: true},
		BoolValue{V: false},
		UintValue{Bits: 8, V: big.NewInt(0)},
		UintValue{Bits: 256, V: new(big.Int).Lsh(big.NewInt(1), 200)},
		IntValue{Bits: 32, V: big.NewInt(-2147483648)},
		IntValue{Bits: 256, V: big.NewInt(12345)},
		BytesValue{V: []byte{0, 1, 2, 0xff}},
		BytesValue{Size: 2, V: []byte{0xab, 0xcd}},
		StringValue{V: "hello, world"},
		StringValue{V: ""},
	}
	for _, want := range values {
		t.Run(want.Type().String()+"/"+want.String(), func(t *testing.T) {
			got, err := Validate(want.Type(), want.String())
			require.NoError(t, err)
			assert.True(t, Equal(want, got), "got %s", got)
		})
	}

	t.Run("composite canonical text re-validates", func(t *testing.T) {
		typ := Slice(Tuple(Field{Name: "name", Type: String()}, Field{Name: "n", Type: Int(16)}))
		v, err := Validate(typ, `("a,b", -3), ("c", 4)`)
		require.NoError(t, err)

		again, err := Validate(typ, v.String())
		require.NoError(t, err)
		assert.True(t, Equal(v, again))
	})
}
