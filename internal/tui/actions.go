package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yolodolo42/evmcli/internal/cards"
	"github.com/yolodolo42/evmcli/internal/menu"
	"github.com/yolodolo42/evmcli/internal/viewer"
)

// perform runs a confirmed card action. Every action is read-only: traces
// replay the original hash or arguments and never resubmit.
func (m *Model) perform(ch menu.Choice) tea.Cmd {
	c := m.store.Get(ch.CardID)
	if c == nil {
		return nil
	}
	m.log.Debug().Uint64("card", c.ID).Str("action", ch.Action.String()).Msg("card action")

	switch ch.Action {
	case cards.CopyHash:
		return viewer.Copy("transaction hash", c.Tx.Hash.Hex())

	case cards.ViewReceipt:
		if c.Tx.Status == cards.Pending {
			if m.deps.Tracker == nil {
				m.store.Insert(cards.Warn(c.Tx.Hash.Hex() + " is still pending"))
				return nil
			}
			return m.checkReceipt(c.Tx.Hash)
		}
		m.detail = newReceiptDetail(c, m.deps.Contracts, m.width, m.height)

	case cards.DebugTrace:
		if ch.Trace == nil {
			return nil
		}
		return m.traceTransaction(c.Tx.Hash, *ch.Trace)

	case cards.ViewLogs:
		if c.Tx.Status == cards.Pending {
			m.store.Insert(cards.Info(c.Tx.Hash.Hex() + " is pending, logs appear once it is mined"))
			return nil
		}
		m.detail = newLogsDetail(c, m.deps.Contracts, m.width, m.height)

	case cards.CopyResult:
		return viewer.Copy("result", c.Call.Outcome())

	case cards.ViewAsJSON:
		data, err := c.Call.JSON()
		if err != nil {
			m.store.Insert(cards.Error(err.Error()))
			return nil
		}
		if m.deps.Viewer == nil {
			m.detail = newJSONDetail(c.Call.Signature(), data, m.width, m.height)
			return nil
		}
		return m.deps.Viewer.Open(c.Call.Signature(), ".json", string(data))

	case cards.DebugCall:
		return m.traceCall(c.Call)

	default:
		m.store.Insert(cards.Error(fmt.Sprintf("unknown action %s", ch.Action)))
	}
	return nil
}
