// Package menu drives the card action overlays: the action list, the
// tracer choice and the tracer option editor.
package menu

import (
	"github.com/yolodolo42/evmcli/internal/cards"
	"github.com/yolodolo42/evmcli/internal/trace"
)

// Mode is the overlay shown on top of the card list.
type Mode int

const (
	Browsing Mode = iota
	MenuOpen
	TracerSelect
	TracerConfig
)

func (m Mode) String() string {
	switch m {
	case Browsing:
		return "Browsing"
	case MenuOpen:
		return "MenuOpen"
	case TracerSelect:
		return "TracerSelect"
	case TracerConfig:
		return "TracerConfig"
	}
	return "Unknown"
}

type frame struct {
	mode    Mode
	cardID  uint64
	cursor  int
	actions []cards.Action
	config  trace.Config
}

// Choice is a confirmed action. Trace is set for DebugTrace.
type Choice struct {
	CardID uint64
	Action cards.Action
	Trace  *trace.Config
}

// Stack is the overlay stack. The zero value is Browsing.
type Stack struct {
	frames []frame
}

func (s *Stack) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

// Mode returns the overlay on top.
func (s *Stack) Mode() Mode {
	if f := s.top(); f != nil {
		return f.mode
	}
	return Browsing
}

// CardID returns the card the overlays act on, or 0 while browsing.
func (s *Stack) CardID() uint64 {
	if len(s.frames) == 0 {
		return 0
	}
	return s.frames[0].cardID
}

// Cursor returns the highlighted row of the top overlay.
func (s *Stack) Cursor() int {
	if f := s.top(); f != nil {
		return f.cursor
	}
	return 0
}

// Open shows the action menu for c. Cards without actions open nothing.
func (s *Stack) Open(c *cards.Card) bool {
	if c == nil || !c.Interactive() {
		return false
	}
	s.frames = []frame{{mode: MenuOpen, cardID: c.ID, actions: cards.ActionsFor(c.Kind)}}
	return true
}

// Actions returns the action list while the menu is open.
func (s *Stack) Actions() []cards.Action {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[0].actions
}

// Tracer returns the tracer being configured.
func (s *Stack) Tracer() (trace.Config, bool) {
	f := s.top()
	if f == nil || f.mode != TracerConfig {
		return trace.Config{}, false
	}
	return f.config, true
}

// Rows returns the labels of the top overlay's rows.
func (s *Stack) Rows() []string {
	f := s.top()
	if f == nil {
		return nil
	}
	var rows []string
	switch f.mode {
	case MenuOpen:
		for _, a := range f.actions {
			rows = append(rows, a.String())
		}
	case TracerSelect:
		for _, k := range trace.Kinds() {
			rows = append(rows, k.String())
		}
	case TracerConfig:
		for _, o := range f.config.Options {
			mark := "[ ]"
			if o.Value {
				mark = "[x]"
			}
			rows = append(rows, mark+" "+o.Name)
		}
	}
	return rows
}

// Up moves the cursor up one row.
func (s *Stack) Up() {
	if f := s.top(); f != nil && f.cursor > 0 {
		f.cursor--
	}
}

// Down moves the cursor down one row.
func (s *Stack) Down() {
	if f := s.top(); f != nil && f.cursor < len(s.Rows())-1 {
		f.cursor++
	}
}

// Toggle flips the highlighted tracer option.
func (s *Stack) Toggle() {
	if f := s.top(); f != nil && f.mode == TracerConfig {
		f.config.Toggle(f.cursor)
	}
}

// Confirm acts on the highlighted row. It returns a Choice once an action is
// complete and the stack is back to Browsing. DebugTrace first walks through
// the tracer choice and its options.
func (s *Stack) Confirm() (Choice, bool) {
	f := s.top()
	if f == nil {
		return Choice{}, false
	}
	id := s.CardID()
	switch f.mode {
	case MenuOpen:
		if f.cursor >= len(f.actions) {
			return Choice{}, false
		}
		action := f.actions[f.cursor]
		if action == cards.DebugTrace {
			s.frames = append(s.frames, frame{mode: TracerSelect, cardID: id})
			return Choice{}, false
		}
		s.Reset()
		return Choice{CardID: id, Action: action}, true
	case TracerSelect:
		kinds := trace.Kinds()
		if f.cursor >= len(kinds) {
			return Choice{}, false
		}
		s.frames = append(s.frames, frame{mode: TracerConfig, cardID: id, config: trace.DefaultConfig(kinds[f.cursor])})
		return Choice{}, false
	case TracerConfig:
		cfg := f.config
		s.Reset()
		return Choice{CardID: id, Action: cards.DebugTrace, Trace: &cfg}, true
	}
	return Choice{}, false
}

// Back closes the top overlay.
func (s *Stack) Back() {
	if len(s.frames) > 0 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// Reset closes every overlay.
func (s *Stack) Reset() {
	s.frames = nil
}
