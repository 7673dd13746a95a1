package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/yolodolo42/evmcli/internal/cards"
	"github.com/yolodolo42/evmcli/internal/chain"
	"github.com/yolodolo42/evmcli/internal/menu"
	"github.com/yolodolo42/evmcli/internal/ui"
)

// View renders the UI
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render("evmcli"))
	b.WriteString("\n\n")

	switch {
	case m.form != nil:
		b.WriteString(ui.OverlayStyle.Render(m.form.View(m.overlayWidth())))
		b.WriteString("\n")
		b.WriteString(m.help.View(m.form.keys))
	case m.picker != nil:
		b.WriteString(ui.OverlayStyle.Render(m.picker.View()))
	case m.detail != nil:
		title := ui.TitleStyle.Render(m.detail.title)
		b.WriteString(ui.OverlayStyle.Render(title + "\n" + m.detail.viewport.View()))
		b.WriteString("\n")
		b.WriteString(ui.HelpStyle.Render("↑/↓ scroll • o open in viewer • esc back"))
	default:
		b.WriteString(m.cardsView())
		if m.menu.Mode() != menu.Browsing {
			b.WriteString("\n\n")
			b.WriteString(ui.OverlayStyle.Render(m.menuView()))
		}
		b.WriteString("\n\n")
		b.WriteString(m.help.View(m.keys))
	}

	b.WriteString("\n")
	b.WriteString(m.statusBar())
	return b.String()
}

func (m Model) overlayWidth() int {
	if m.width <= 0 {
		return 76
	}
	return max(m.width-4, 20)
}

func (m Model) cardsView() string {
	list := cards.List(m.store, m.width)
	if m.store.Len() == 0 {
		return ui.SelectorDim.Render(list)
	}
	lines := strings.Split(list, "\n")
	for i, line := range lines[1:] {
		c := m.store.Cards()[i]
		lines[i+1] = cardStyle(c).Render(line)
	}
	lines[0] = ui.HelpStyle.Render(lines[0])
	return strings.Join(lines, "\n")
}

func cardStyle(c *cards.Card) lipgloss.Style {
	switch c.Kind {
	case cards.KindTransaction:
		switch c.Tx.Status {
		case cards.Success:
			return ui.SuccessStyle
		case cards.Failed:
			return ui.ErrorStyle
		}
		return ui.PendingStyle
	case cards.KindCall:
		if c.Call.Err != nil {
			return ui.ErrorStyle
		}
	case cards.KindLog:
		switch c.Log.Severity {
		case cards.SeverityError:
			return ui.ErrorStyle
		case cards.SeverityWarn:
			return ui.WarnStyle
		}
	}
	return ui.SelectorItemStyle
}

func (m Model) menuView() string {
	var title string
	switch m.menu.Mode() {
	case menu.MenuOpen:
		title = "Actions"
	case menu.TracerSelect:
		title = "Select tracer"
	case menu.TracerConfig:
		cfg, _ := m.menu.Tracer()
		title = cfg.Kind.String() + " options (space toggles, enter runs)"
	}
	rows := m.menu.Rows()
	if len(rows) == 0 {
		return ui.HelpStyle.Render(title) + "\n\n" + ui.SelectorDim.Render("no options, enter runs")
	}
	return ui.RenderList(title, rows, m.menu.Cursor())
}

func (m Model) statusBar() string {
	var parts []string
	switch {
	case m.connErr != nil && !chain.IsTransport(m.connErr):
		parts = append(parts, ui.ErrorStyle.Render(ui.SymbolBullet+" Error"))
	case m.conn == connConnected:
		parts = append(parts, ui.SuccessStyle.Render(ui.SymbolBullet+" Connected"))
	case m.conn == connDisconnected:
		parts = append(parts, ui.ErrorStyle.Render(ui.SymbolBullet+" Disconnected"))
	default:
		parts = append(parts, ui.SelectorDim.Render(ui.SymbolBullet+" Connecting"))
	}
	parts = append(parts, m.deps.Network.Name)

	if m.deps.Account != (common.Address{}) {
		acct := m.deps.Account.Hex()
		parts = append(parts, acct[:6]+"…"+acct[len(acct)-4:])
		if m.balance != nil {
			parts = append(parts, chain.FormatBalance(m.balance, 18)+" "+m.deps.Network.NativeCurrency)
		}
	}

	pending := len(m.store.Pending())
	if pending > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", pending))
	}
	if pending > 0 || m.inflight > 0 || m.nextSeq != m.flushSeq {
		parts = append(parts, m.spinner.View())
	}
	return ui.StatusBarStyle.Render(strings.Join(parts, " │ "))
}
