package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSelector(t *testing.T) {
	items := []SelectorItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	t.Run("select", func(t *testing.T) {
		s := NewSelector("Methods", items)
		s.Update(keyMsg("down"))
		s.Update(keyMsg("down"))
		s.Update(keyMsg("down"))
		assert.Equal(t, 2, s.Cursor())
		s.Update(keyMsg("up"))
		s.Update(keyMsg("enter"))
		assert.False(t, s.Active())
		i, ok := s.Selected()
		assert.True(t, ok)
		assert.Equal(t, 1, i)
		assert.Empty(t, s.View())
	})

	t.Run("cancel", func(t *testing.T) {
		s := NewSelector("Methods", items)
		s.Update(keyMsg("esc"))
		_, ok := s.Selected()
		assert.False(t, ok)
	})

	t.Run("scrolls", func(t *testing.T) {
		s := NewSelector("Methods", items)
		s.SetHeight(1)
		s.Update(keyMsg("j"))
		view := s.View()
		assert.Contains(t, view, "b")
		assert.NotContains(t, view, "a ")
	})
}

func TestRenderList(t *testing.T) {
	out := RenderList("Actions", []string{"Copy Hash", "View Receipt"}, 1)
	assert.Contains(t, out, "Actions")
	assert.Contains(t, out, SymbolArrow)
	assert.Contains(t, out, "View Receipt")
}
