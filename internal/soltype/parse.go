package soltype

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse parses an ABI type string such as "uint256", "bytes32[]",
// "(address to,uint256 amount)" or "tuple(address,uint256)[2]". Bare "uint"
// and "int" mean 256 bits.
func Parse(s string) (Type, error) {
	p := &typeParser{src: strings.TrimSpace(s)}
	t, err := p.parseType()
	if err != nil {
		return Type{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return Type{}, p.errorf("unexpected %q", p.src[p.pos:])
	}
	if err := t.Check(); err != nil {
		return Type{}, err
	}
	return t, nil
}

// MustParse is Parse for type strings known to be valid.
func MustParse(s string) Type {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseSignature splits a function signature like
// "transfer(address to,uint256 amount)" into its name and parameters.
func ParseSignature(sig string) (string, []Field, error) {
	sig = strings.TrimSpace(sig)
	open := strings.IndexByte(sig, '(')
	if open <= 0 || !strings.HasSuffix(sig, ")") {
		return "", nil, fmt.Errorf("soltype: malformed signature %q", sig)
	}
	name := strings.TrimSpace(sig[:open])
	p := &typeParser{src: sig[open:]}
	p.pos++
	fields, err := p.parseMembers()
	if err != nil {
		return "", nil, err
	}
	if p.pos != len(p.src) {
		return "", nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	for i, f := range fields {
		if err := f.Type.Check(); err != nil {
			return "", nil, fmt.Errorf("soltype: parameter %d: %w", i, err)
		}
	}
	return name, fields, nil
}

// Signature renders the canonical signature used for the function selector.
func Signature(name string, params []Field) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Type.String()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}

type typeParser struct {
	src string
	pos int
}

func (p *typeParser) errorf(format string, args ...any) error {
	return fmt.Errorf("soltype: parse %q at %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *typeParser) parseType() (Type, error) {
	p.skipSpace()
	var (
		t   Type
		err error
	)
	if strings.HasPrefix(p.src[p.pos:], "tuple(") {
		p.pos += len("tuple")
	}
	if p.peek() == '(' {
		p.pos++
		var fields []Field
		fields, err = p.parseMembers()
		if err != nil {
			return Type{}, err
		}
		t = Tuple(fields...)
	} else {
		t, err = p.parseElementary()
		if err != nil {
			return Type{}, err
		}
	}
	for p.peek() == '[' {
		end := strings.IndexByte(p.src[p.pos:], ']')
		if end < 0 {
			return Type{}, p.errorf("unterminated array suffix")
		}
		digits := p.src[p.pos+1 : p.pos+end]
		p.pos += end + 1
		if digits == "" {
			t = Slice(t)
			continue
		}
		n, err := strconv.Atoi(digits)
		if err != nil || n <= 0 {
			return Type{}, p.errorf("invalid array length %q", digits)
		}
		t = Array(t, n)
	}
	return t, nil
}

// parseMembers parses "T1 name1,T2 name2)" after the opening parenthesis.
func (p *typeParser) parseMembers() ([]Field, error) {
	var fields []Field
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return fields, nil
	}
	for {
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		name := p.ident()
		if name == "indexed" || name == "memory" || name == "calldata" || name == "storage" {
			p.skipSpace()
			name = p.ident()
		}
		fields = append(fields, Field{Name: name, Type: t})
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return fields, nil
		default:
			return nil, p.errorf("expected ',' or ')'")
		}
	}
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c == '$' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || p.pos > start && '0' <= c && c <= '9' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *typeParser) parseElementary() (Type, error) {
	name := p.ident()
	switch {
	case name == "":
		return Type{}, p.errorf("expected type name")
	case name == "address":
		if strings.HasPrefix(p.src[p.pos:], " payable") {
			p.pos += len(" payable")
		}
		return Address(), nil
	case name == "bool":
		return Bool(), nil
	case name == "string":
		return String(), nil
	case name == "bytes":
		return Bytes(), nil
	case strings.HasPrefix(name, "bytes"):
		n, err := strconv.Atoi(name[len("bytes"):])
		if err != nil || n < 1 || n > 32 {
			return Type{}, p.errorf("invalid fixed bytes type %q", name)
		}
		return FixedBytes(n), nil
	case strings.HasPrefix(name, "uint"):
		bits, err := intWidth(name[len("uint"):])
		if err != nil {
			return Type{}, p.errorf("invalid type %q", name)
		}
		return Uint(bits), nil
	case strings.HasPrefix(name, "int"):
		bits, err := intWidth(name[len("int"):])
		if err != nil {
			return Type{}, p.errorf("invalid type %q", name)
		}
		return Int(bits), nil
	}
	return Type{}, p.errorf("unsupported type %q", name)
}

func intWidth(s string) (int, error) {
	if s == "" {
		return 256, nil
	}
	bits, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if bits < 8 || bits > 256 || bits%8 != 0 {
		return 0, fmt.Errorf("width %d", bits)
	}
	return bits, nil
}
