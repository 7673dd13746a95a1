package cards

import (
	"fmt"
	"strings"

	"github.com/muesli/reflow/truncate"
	"github.com/yolodolo42/evmcli/internal/soltype"
	"github.com/yolodolo42/evmcli/internal/ui"
)

// EmptyList is rendered by List for a store without cards.
const EmptyList = "No cards to display"

// Line renders the one-line summary of a card.
func (c *Card) Line() string {
	switch c.Kind {
	case KindTransaction:
		return c.Tx.line()
	case KindCall:
		return c.Call.line()
	case KindLog:
		return c.Log.line()
	}
	return ""
}

func (t *Transaction) line() string {
	parts := []string{
		"TX: " + prefix(t.Hash.Hex(), 10),
		t.statusLabel(),
		t.Method,
	}
	if t.GasUsed != nil {
		parts = append(parts, fmt.Sprintf("Gas: %d", *t.GasUsed))
	}
	return strings.Join(parts, " | ")
}

func (t *Transaction) statusLabel() string {
	switch t.Status {
	case Success:
		return ui.SymbolCheck + " Success"
	case Failed:
		return ui.SymbolCross + " Failed"
	}
	if t.Stalled {
		return ui.SymbolPending + " Pending (stalled)"
	}
	return ui.SymbolPending + " Pending"
}

func (c *Call) line() string {
	return fmt.Sprintf("CALL: %s→%s | %s | Result: %s",
		prefix(c.From.Hex(), 8), prefix(c.To.Hex(), 8), c.Signature(), c.Outcome())
}

// Outcome renders the call result, or the revert reason when it failed.
func (c *Call) Outcome() string {
	if c.Err != nil {
		return "error: " + c.Err.Error()
	}
	return soltype.FormatResults(c.Result)
}

func (l *Log) line() string {
	switch l.Severity {
	case SeverityError:
		return ui.SymbolCross + " " + l.Message
	case SeverityWarn:
		return ui.SymbolWarn + " " + l.Message
	}
	return ui.SymbolCheck + " " + l.Message
}

// List renders every card of s, one per line, marking the selected card.
// Lines longer than width are truncated; width <= 0 disables truncation.
func List(s *Store, width int) string {
	if s.Len() == 0 {
		return EmptyList
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[ Card %d of %d ]\n", s.SelectedIndex()+1, s.Len())
	for i, c := range s.Cards() {
		marker := "  "
		if i == s.SelectedIndex() {
			marker = "> "
		}
		line := marker + c.Line()
		if width > 0 {
			line = truncate.StringWithTail(line, uint(width), "…")
		}
		b.WriteString(line)
		if i < s.Len()-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Detail renders the multi-line description of a card shown in the detail
// pane.
func (c *Card) Detail() string {
	var b strings.Builder
	switch c.Kind {
	case KindTransaction:
		t := c.Tx
		fmt.Fprintf(&b, "Transaction %s\n", t.Hash.Hex())
		fmt.Fprintf(&b, "Status:   %s\n", t.statusLabel())
		fmt.Fprintf(&b, "Call:     %s\n", soltype.FormatCall(t.Method, t.Params, t.Args))
		fmt.Fprintf(&b, "From:     %s\n", t.From.Hex())
		fmt.Fprintf(&b, "To:       %s\n", t.To.Hex())
		if t.Value != nil && t.Value.Sign() > 0 {
			fmt.Fprintf(&b, "Value:    %s wei\n", t.Value)
		}
		if t.BlockNumber != nil {
			fmt.Fprintf(&b, "Block:    %d\n", *t.BlockNumber)
		}
		if t.GasUsed != nil {
			fmt.Fprintf(&b, "Gas used: %d\n", *t.GasUsed)
			fmt.Fprintf(&b, "Logs:     %d\n", len(t.Logs))
		}
	case KindCall:
		call := c.Call
		fmt.Fprintf(&b, "Call %s\n", soltype.FormatCall(call.Method, call.Params, call.Args))
		fmt.Fprintf(&b, "From:   %s\n", call.From.Hex())
		fmt.Fprintf(&b, "To:     %s\n", call.To.Hex())
		fmt.Fprintf(&b, "Result: %s\n", call.Outcome())
	case KindLog:
		b.WriteString(c.Log.line())
	}
	fmt.Fprintf(&b, "\n%s", c.CreatedAt.Format("15:04:05"))
	return b.String()
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
