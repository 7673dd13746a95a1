package viewer

import (
	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
)

// CopiedMsg reports the outcome of a clipboard write.
type CopiedMsg struct {
	What string
	Err  error
}

var (
	clipboardWriteAll = clipboard.WriteAll
	writeAll          = clipboardWriteAll
)

// Copy writes text to the system clipboard. what names the copied thing
// for the confirmation card, e.g. "transaction hash".
func Copy(what, text string) tea.Cmd {
	return func() tea.Msg {
		if err := writeAll(text); err != nil {
			return CopiedMsg{What: what, Err: errors.Wrap(err, "clipboard")}
		}
		return CopiedMsg{What: what}
	}
}
