package soltype

import (
	"encoding/hex"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Validate parses text as a value of type t. It has no side effects and the
// result depends only on its arguments.
//
// Numbers are base 10. Addresses and bytes require a 0x prefix. Arrays are
// comma or newline separated, optionally wrapped in brackets, and tuples are
// wrapped in parentheses. Strings are taken verbatim at the top level and may
// be double-quoted inside arrays and tuples.
func Validate(t Type, text string) (Value, error) {
	switch t.Kind {
	case KindAddress:
		return validateAddress(text)
	case KindBool:
		return validateBool(text)
	case KindUint:
		return validateUint(t.Bits, text)
	case KindInt:
		return validateInt(t.Bits, text)
	case KindBytes:
		return validateBytes(t.Size, text)
	case KindString:
		return StringValue{V: text}, nil
	case KindArray:
		return validateArray(t, text)
	case KindTuple:
		return validateTuple(t, text)
	}
	return nil, invalid(NotANumber, "unsupported type %s", t)
}

func validateAddress(text string) (Value, error) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, invalid(MalformedAddress, "missing 0x prefix")
	}
	digits := s[2:]
	if len(digits) != 2*common.AddressLength {
		return nil, invalid(MalformedAddress, "expected %d hex digits, got %d", 2*common.AddressLength, len(digits))
	}
	if !isHex(digits) {
		return nil, invalid(MalformedAddress, "non-hex character")
	}
	return AddressValue{V: common.HexToAddress(s)}, nil
}

// validateBool accepts true/1/yes and false/0/no, ignoring case.
func validateBool(text string) (Value, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "true", "1", "yes":
		return BoolValue{V: true}, nil
	case "false", "0", "no":
		return BoolValue{V: false}, nil
	}
	return nil, invalid(MalformedBool, "%q is not true/false, 1/0 or yes/no", strings.TrimSpace(text))
}

func parseDecimal(text string) (*big.Int, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, invalid(NotANumber, "empty")
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, invalid(NotANumber, "%q is not a base-10 integer", s)
	}
	return n, nil
}

func validateUint(bits int, text string) (Value, error) {
	n, err := parseDecimal(text)
	if err != nil {
		return nil, err
	}
	if n.Sign() < 0 {
		return nil, invalid(OutOfRange, "uint%d cannot be negative", bits)
	}
	if n.BitLen() > bits {
		return nil, invalid(OutOfRange, "exceeds uint%d maximum", bits)
	}
	return UintValue{Bits: bits, V: n}, nil
}

func validateInt(bits int, text string) (Value, error) {
	n, err := parseDecimal(text)
	if err != nil {
		return nil, err
	}
	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	lo := new(big.Int).Neg(limit)
	hi := new(big.Int).Sub(limit, big.NewInt(1))
	if n.Cmp(lo) < 0 || n.Cmp(hi) > 0 {
		return nil, invalid(OutOfRange, "outside int%d range [%s, %s]", bits, lo, hi)
	}
	return IntValue{Bits: bits, V: n}, nil
}

func validateBytes(size int, text string) (Value, error) {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return nil, invalid(MalformedBytes, "missing 0x prefix")
	}
	digits := s[2:]
	if len(digits)%2 != 0 {
		return nil, invalid(MalformedBytes, "odd number of hex digits")
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, invalid(MalformedBytes, "non-hex character")
	}
	if size > 0 && len(b) != size {
		return nil, invalid(MalformedBytes, "expected %d bytes, got %d", size, len(b))
	}
	return BytesValue{Size: size, V: b}, nil
}

func validateArray(t Type, text string) (Value, error) {
	segments := splitList(unwrap(strings.TrimSpace(text), '[', ']'))
	if t.Size > 0 && len(segments) != t.Size {
		return nil, invalid(ArityMismatch, "expected %d elements, got %d", t.Size, len(segments))
	}
	items := make([]Value, len(segments))
	for i, seg := range segments {
		v, err := validateElement(*t.Elem, seg)
		if err != nil {
			return nil, atIndex(err, i)
		}
		items[i] = v
	}
	return ArrayValue{Elem: *t.Elem, Size: t.Size, Items: items}, nil
}

func validateTuple(t Type, text string) (Value, error) {
	s := strings.TrimSpace(text)
	if len(t.Fields) > 0 && (!strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")")) {
		return nil, invalid(ArityMismatch, "tuple must be wrapped in parentheses")
	}
	segments := splitList(unwrap(s, '(', ')'))
	if len(segments) != len(t.Fields) {
		return nil, invalid(ArityMismatch, "expected %d members, got %d", len(t.Fields), len(segments))
	}
	items := make([]Value, len(segments))
	for i, seg := range segments {
		v, err := validateElement(t.Fields[i].Type, seg)
		if err != nil {
			return nil, atIndex(err, i)
		}
		items[i] = v
	}
	return TupleValue{Fields: t.Fields, Items: items}, nil
}

// validateElement validates one segment of an array or tuple literal, where
// strings may be quoted.
func validateElement(t Type, seg string) (Value, error) {
	if t.Kind == KindString {
		s := strings.TrimSpace(seg)
		if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
			if unq, err := strconv.Unquote(s); err == nil {
				return StringValue{V: unq}, nil
			}
		}
		return StringValue{V: s}, nil
	}
	return Validate(t, seg)
}

// unwrap strips one pair of enclosing delimiters when they enclose the whole
// text.
func unwrap(s string, lhs, rhs byte) string {
	if len(s) < 2 || s[0] != lhs || s[len(s)-1] != rhs {
		return s
	}
	depth := 0
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote:
			if c == '\\' {
				i++
			} else if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
			if depth == 0 && i != len(s)-1 {
				return s
			}
		}
	}
	return s[1 : len(s)-1]
}

// splitList splits s on commas and newlines that are not nested inside
// brackets, parentheses or double quotes. A blank segment next to a newline
// is dropped, so "1,\n2" holds two elements, as is a blank last segment
// ("1,2,") and the single segment of an empty list. A blank between two
// commas is kept and fails validation as an element.
func splitList(s string) []string {
	var (
		out     []string
		depth   int
		inQuote bool
		start   int
		lineSep bool
	)
	emit := func(seg string, rightNewline bool) {
		if strings.TrimSpace(seg) == "" && (lineSep || rightNewline) {
			return
		}
		out = append(out, seg)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inQuote:
			if c == '\\' {
				i++
			} else if c == '"' {
				inQuote = false
			}
		case c == '"':
			inQuote = true
		case c == '[' || c == '(':
			depth++
		case c == ']' || c == ')':
			depth--
		case (c == ',' || c == '\n') && depth == 0:
			emit(s[start:i], c == '\n')
			lineSep = c == '\n'
			start = i + 1
		}
	}
	if last := s[start:]; strings.TrimSpace(last) != "" {
		out = append(out, last)
	}
	return out
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F') {
			return false
		}
	}
	return true
}
