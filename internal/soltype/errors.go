package soltype

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrorKind classifies a ValidationError.
type ErrorKind int

const (
	MalformedAddress ErrorKind = iota + 1
	NotANumber
	OutOfRange
	MalformedBytes
	ArityMismatch
	MalformedBool
)

var (
	ErrMalformedAddress = errors.New("malformed address")
	ErrNotANumber       = errors.New("not a number")
	ErrOutOfRange       = errors.New("value out of range")
	ErrMalformedBytes   = errors.New("malformed bytes")
	ErrArityMismatch    = errors.New("wrong number of elements")
	ErrMalformedBool    = errors.New("malformed bool")
)

func (k ErrorKind) sentinel() error {
	switch k {
	case MalformedAddress:
		return ErrMalformedAddress
	case NotANumber:
		return ErrNotANumber
	case OutOfRange:
		return ErrOutOfRange
	case MalformedBytes:
		return ErrMalformedBytes
	case ArityMismatch:
		return ErrArityMismatch
	case MalformedBool:
		return ErrMalformedBool
	}
	return nil
}

func (k ErrorKind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("error kind %d", int(k))
}

// ValidationError describes why a piece of text is not a valid value of a
// type. Path holds the element indexes leading to the offending element of
// an array or tuple, outermost first.
type ValidationError struct {
	Kind   ErrorKind
	Path   []int
	Detail string
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	if len(e.Path) > 0 {
		b.WriteString("element ")
		for i, idx := range e.Path {
			if i > 0 {
				b.WriteByte('.')
			}
			fmt.Fprintf(&b, "%d", idx)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.String())
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return e.Kind.sentinel()
}

func invalid(kind ErrorKind, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// atIndex prefixes the error path with idx.
func atIndex(err error, idx int) error {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	path := make([]int, 0, len(ve.Path)+1)
	path = append(path, idx)
	path = append(path, ve.Path...)
	return &ValidationError{Kind: ve.Kind, Path: path, Detail: ve.Detail}
}

// KindOf returns the ErrorKind of err, or zero when err is not a
// ValidationError.
func KindOf(err error) ErrorKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return 0
}
