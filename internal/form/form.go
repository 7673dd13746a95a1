package form

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/yolodolo42/evmcli/internal/soltype"
)

// State is the lifecycle state of a Form.
type State int

const (
	Editing State = iota
	// Invalid is entered when a submit finds a field that does not
	// validate. Focus moves to the lowest such field and the next edit or
	// focus change returns the form to Editing.
	Invalid
	// Ready is terminal: the form produced its values.
	Ready
	// Cancelled is terminal: the form was discarded.
	Cancelled
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Invalid:
		return "invalid"
	case Ready:
		return "ready"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ErrClosed is returned when submitting a form that is already Ready or
// Cancelled.
var ErrClosed = errors.New("form is closed")

// AmountLabel labels the trailing native value field of a payable form.
const AmountLabel = "value"

// Request describes an invocation that needs arguments.
type Request struct {
	Title   string
	Method  string
	Params  []soltype.Field
	Payable bool
}

// Submission is what a Ready form yields.
type Submission struct {
	Request Request
	Args    []soltype.Value
	// Amount is the native value as a non-negative decimal string, empty
	// when the request is not payable or no value was entered.
	Amount string
}

// Field is one editable input of a form.
type Field struct {
	Label  string
	Type   soltype.Type
	Raw    string
	Value  soltype.Value
	Err    error
	Amount bool
	// Touched is set once the field was edited or a submit was attempted.
	Touched bool
}

// IsToggle reports whether the field is a bool switched with a key rather
// than typed.
func (f *Field) IsToggle() bool {
	return !f.Amount && f.Type.Kind == soltype.KindBool
}

func (f *Field) Valid() bool { return f.Err == nil }

func (f *Field) revalidate() {
	if f.IsToggle() {
		if _, ok := f.Value.(soltype.BoolValue); !ok {
			f.Value = soltype.BoolValue{}
		}
		f.Err = nil
		return
	}
	if f.Amount {
		f.Err = validateAmount(f.Raw)
		return
	}
	f.Value, f.Err = soltype.Validate(f.Type, f.Raw)
}

// InvalidError reports the lowest field that failed validation at submit.
type InvalidError struct {
	Index int
	Label string
	Err   error
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("%s: %v", e.Label, e.Err)
}

func (e *InvalidError) Unwrap() error { return e.Err }

// node mirrors one parameter's type tree. Leaves point into Form.fields.
type node struct {
	leaf     int
	typ      soltype.Type
	children []node
}

// Form collects typed arguments for a Request.
type Form struct {
	req          Request
	fields       []*Field
	roots        []node
	focus        int
	state        State
	firstInvalid int
}

// New builds a form for req. Tuples are flattened depth-first into one
// field per member labelled parent.member, and fixed-length arrays of
// tuples into parent[i].member fields. Payable requests get a trailing
// value field.
func New(req Request) *Form {
	f := &Form{req: req, firstInvalid: -1}
	for i, p := range req.Params {
		label := p.Name
		if label == "" {
			label = "arg" + strconv.Itoa(i)
		}
		f.roots = append(f.roots, f.flatten(label, p.Type))
	}
	if req.Payable {
		amount := &Field{Label: AmountLabel, Amount: true}
		amount.revalidate()
		f.fields = append(f.fields, amount)
	}
	return f
}

func (f *Form) flatten(label string, t soltype.Type) node {
	switch {
	case t.Kind == soltype.KindTuple:
		n := node{leaf: -1, typ: t}
		for i, m := range t.Fields {
			name := m.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			n.children = append(n.children, f.flatten(label+"."+name, m.Type))
		}
		return n
	case t.Kind == soltype.KindArray && t.Size > 0 && t.Elem.ContainsTuple():
		n := node{leaf: -1, typ: t}
		for i := 0; i < t.Size; i++ {
			n.children = append(n.children, f.flatten(fmt.Sprintf("%s[%d]", label, i), *t.Elem))
		}
		return n
	default:
		field := &Field{Label: label, Type: t}
		field.revalidate()
		f.fields = append(f.fields, field)
		return node{leaf: len(f.fields) - 1, typ: t}
	}
}

func (f *Form) Request() Request  { return f.req }
func (f *Form) Title() string     { return f.req.Title }
func (f *Form) Fields() []*Field  { return f.fields }
func (f *Form) Len() int          { return len(f.fields) }
func (f *Form) Focus() int        { return f.focus }
func (f *Form) State() State      { return f.state }
func (f *Form) FirstInvalid() int { return f.firstInvalid }

// Closed reports whether the form reached a terminal state.
func (f *Form) Closed() bool {
	return f.state == Ready || f.state == Cancelled
}

// Focused returns the field holding focus, or nil for a form without
// fields.
func (f *Form) Focused() *Field {
	if f.focus < 0 || f.focus >= len(f.fields) {
		return nil
	}
	return f.fields[f.focus]
}

func (f *Form) touch() {
	if f.state == Invalid {
		f.state = Editing
	}
}

// Next moves focus to the following field, wrapping to the first.
func (f *Form) Next() {
	if f.Closed() || len(f.fields) == 0 {
		return
	}
	f.touch()
	f.focus = (f.focus + 1) % len(f.fields)
}

// Prev moves focus to the preceding field, wrapping to the last.
func (f *Form) Prev() {
	if f.Closed() || len(f.fields) == 0 {
		return
	}
	f.touch()
	f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields)
}

// SetFocus moves focus to field i.
func (f *Form) SetFocus(i int) {
	if f.Closed() || i < 0 || i >= len(f.fields) {
		return
	}
	f.touch()
	f.focus = i
}

// SetText replaces the raw text of field i and revalidates it. Toggle
// fields ignore text.
func (f *Form) SetText(i int, text string) {
	if f.Closed() || i < 0 || i >= len(f.fields) {
		return
	}
	field := f.fields[i]
	if field.IsToggle() {
		return
	}
	f.touch()
	field.Raw = text
	field.Touched = true
	field.revalidate()
}

// Toggle flips a bool field.
func (f *Form) Toggle(i int) {
	if f.Closed() || i < 0 || i >= len(f.fields) {
		return
	}
	field := f.fields[i]
	if !field.IsToggle() {
		return
	}
	f.touch()
	current, _ := field.Value.(soltype.BoolValue)
	field.Value = soltype.BoolValue{V: !current.V}
	field.Raw = strconv.FormatBool(!current.V)
	field.Touched = true
	field.Err = nil
}

// Submit validates every field. When one is invalid the form enters
// Invalid, focus moves to the lowest invalid field and no values are
// returned. Otherwise the form becomes Ready and yields the arguments in
// parameter order.
func (f *Form) Submit() (*Submission, error) {
	if f.Closed() {
		return nil, ErrClosed
	}
	f.firstInvalid = -1
	for i, field := range f.fields {
		field.Touched = true
		if field.Err != nil && f.firstInvalid < 0 {
			f.firstInvalid = i
		}
	}
	if f.firstInvalid >= 0 {
		f.state = Invalid
		f.focus = f.firstInvalid
		field := f.fields[f.firstInvalid]
		return nil, &InvalidError{Index: f.firstInvalid, Label: field.Label, Err: field.Err}
	}

	args := make([]soltype.Value, len(f.roots))
	for i, root := range f.roots {
		args[i] = f.assemble(root)
	}
	sub := &Submission{Request: f.req, Args: args}
	if f.req.Payable {
		sub.Amount = strings.TrimSpace(f.fields[len(f.fields)-1].Raw)
	}
	f.state = Ready
	return sub, nil
}

// Cancel discards the form. A Ready form stays Ready.
func (f *Form) Cancel() {
	if f.state == Ready {
		return
	}
	f.state = Cancelled
}

func (f *Form) assemble(n node) soltype.Value {
	if n.leaf >= 0 {
		return f.fields[n.leaf].Value
	}
	items := make([]soltype.Value, len(n.children))
	for i, child := range n.children {
		items[i] = f.assemble(child)
	}
	if n.typ.Kind == soltype.KindTuple {
		return soltype.TupleValue{Fields: n.typ.Fields, Items: items}
	}
	return soltype.ArrayValue{Elem: *n.typ.Elem, Size: n.typ.Size, Items: items}
}

// validateAmount accepts an empty string or a non-negative decimal such as
// "1" or "0.25".
func validateAmount(text string) error {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}
	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && (!hasDot || frac == "") {
		return &soltype.ValidationError{Kind: soltype.NotANumber, Detail: "amount is not a decimal"}
	}
	for _, part := range []string{whole, frac} {
		for _, c := range part {
			if c < '0' || c > '9' {
				return &soltype.ValidationError{Kind: soltype.NotANumber, Detail: "amount must be a non-negative decimal"}
			}
		}
	}
	return nil
}
