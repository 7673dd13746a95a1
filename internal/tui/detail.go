package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/yolodolo42/evmcli/internal/cards"
	"github.com/yolodolo42/evmcli/internal/contract"
	"github.com/yolodolo42/evmcli/internal/trace"
	"github.com/yolodolo42/evmcli/internal/viewer"
)

// detailView is the scrollable pane for receipts, logs and traces. raw is
// what "open in viewer" hands to the external viewer.
type detailView struct {
	title    string
	ext      string
	raw      string
	viewport viewport.Model
}

func newDetail(title, body, raw, ext string, width, height int) *detailView {
	d := &detailView{title: title, raw: raw, ext: ext, viewport: viewport.New(0, 0)}
	d.resize(width, height)
	d.viewport.SetContent(body)
	return d
}

func (d *detailView) resize(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	d.viewport.Width = max(width-4, 10)
	d.viewport.Height = max(height-6, 3)
}

func contentWidth(width int) int {
	if width <= 0 {
		return 76
	}
	return max(width-4, 10)
}

func newCardDetail(c *cards.Card, width, height int) *detailView {
	body := c.Detail()
	return newDetail(fmt.Sprintf("Card %d", c.ID), body, body, ".txt", width, height)
}

func newReceiptDetail(c *cards.Card, reg *contract.Registry, width, height int) *detailView {
	data, err := c.Tx.ReceiptJSON()
	if err != nil {
		return newCardDetail(c, width, height)
	}
	var b strings.Builder
	b.WriteString(c.Detail())
	b.WriteString("\n\n")
	b.WriteString(strings.Join(reg.DescribeLogs(c.Tx.Logs), "\n"))
	b.WriteString("\n\n")
	b.WriteString(viewer.HighlightJSON(string(data), contentWidth(width)))
	return newDetail("Receipt "+c.Tx.Hash.Hex(), b.String(), string(data), ".json", width, height)
}

func newLogsDetail(c *cards.Card, reg *contract.Registry, width, height int) *detailView {
	text := strings.Join(reg.DescribeLogs(c.Tx.Logs), "\n")
	return newDetail("Logs "+c.Tx.Hash.Hex(), text, text, ".txt", width, height)
}

func newTraceDetail(res *trace.Result, width, height int) *detailView {
	pretty := res.Pretty()
	body := res.Summary() + "\n\n" + viewer.HighlightJSON(pretty, contentWidth(width))
	title := fmt.Sprintf("%s of %s", res.Config.Kind, res.Target)
	return newDetail(title, body, pretty, ".json", width, height)
}

func newJSONDetail(title string, data []byte, width, height int) *detailView {
	return newDetail(title, viewer.HighlightJSON(string(data), contentWidth(width)), string(data), ".json", width, height)
}
