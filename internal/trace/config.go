// Package trace replays transactions and calls through the node's debug
// tracers.
package trace

import (
	"encoding/json"
	"fmt"
)

// Kind selects a tracer.
type Kind int

const (
	CallTracer Kind = iota
	PrestateTracer
	OplogTracer
	FlatCallTracer
)

// Kinds lists the tracers in menu order.
func Kinds() []Kind {
	return []Kind{CallTracer, PrestateTracer, OplogTracer, FlatCallTracer}
}

// String is the menu label.
func (k Kind) String() string {
	switch k {
	case CallTracer:
		return "Call Tracer"
	case PrestateTracer:
		return "Prestate Tracer"
	case OplogTracer:
		return "Oplog Tracer"
	case FlatCallTracer:
		return "Flat Call Tracer"
	}
	return fmt.Sprintf("tracer(%d)", int(k))
}

// Name is the tracer name sent to the node. The opcode logger is the node's
// default tracer and has no name.
func (k Kind) Name() string {
	switch k {
	case CallTracer:
		return "callTracer"
	case PrestateTracer:
		return "prestateTracer"
	case FlatCallTracer:
		return "flatCallTracer"
	}
	return ""
}

// Option is a named boolean tracer setting.
type Option struct {
	Name  string
	Value bool
}

// Config is a tracer and its options. The option set is fixed per kind.
type Config struct {
	Kind    Kind
	Options []Option
}

// DefaultConfig returns the tracer's options with their defaults.
func DefaultConfig(k Kind) Config {
	c := Config{Kind: k}
	switch k {
	case CallTracer:
		c.Options = []Option{{"onlyTopCall", false}, {"withLog", true}}
	case PrestateTracer:
		c.Options = []Option{{"diffMode", true}}
	case FlatCallTracer:
		c.Options = []Option{{"includePrecompiles", false}}
	}
	return c
}

// Toggle flips option i.
func (c *Config) Toggle(i int) {
	if i < 0 || i >= len(c.Options) {
		return
	}
	c.Options[i].Value = !c.Options[i].Value
}

// Set assigns the named option. Unknown names are reported.
func (c *Config) Set(name string, v bool) error {
	for i := range c.Options {
		if c.Options[i].Name == name {
			c.Options[i].Value = v
			return nil
		}
	}
	return fmt.Errorf("%s has no option %q", c.Kind, name)
}

// Get returns the named option.
func (c Config) Get(name string) (bool, bool) {
	for _, o := range c.Options {
		if o.Name == name {
			return o.Value, true
		}
	}
	return false, false
}

// Params is the trace config object passed as the last parameter of
// debug_traceTransaction and debug_traceCall.
type Params struct {
	Tracer       string          `json:"tracer,omitempty"`
	TracerConfig map[string]bool `json:"tracerConfig,omitempty"`
}

// Params builds the RPC trace config. The opcode logger takes no tracer
// name and no tracer config.
func (c Config) Params() Params {
	p := Params{Tracer: c.Kind.Name()}
	if len(c.Options) > 0 {
		p.TracerConfig = make(map[string]bool, len(c.Options))
		for _, o := range c.Options {
			p.TracerConfig[o.Name] = o.Value
		}
	}
	return p
}

// JSON renders the trace config as sent to the node.
func (c Config) JSON() string {
	b, _ := json.Marshal(c.Params())
	return string(b)
}

func (c Config) clone() Config {
	out := Config{Kind: c.Kind}
	out.Options = append([]Option(nil), c.Options...)
	return out
}
