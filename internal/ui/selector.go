package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// SelectorItem represents an item in the selector
type SelectorItem struct {
	ID          string
	Label       string
	Description string
}

// Selector is an interactive list selector. It scrolls when there are more
// items than fit its height.
type Selector struct {
	title    string
	items    []SelectorItem
	cursor   int
	selected int
	active   bool
	height   int
}

// NewSelector creates a new selector
func NewSelector(title string, items []SelectorItem) Selector {
	return Selector{
		title:    title,
		items:    items,
		selected: -1,
		active:   true,
		height:   15,
	}
}

// SetHeight sets how many items are visible at once
func (s *Selector) SetHeight(h int) {
	if h < 1 {
		h = 1
	}
	s.height = h
}

// Active returns whether the selector is still taking input
func (s *Selector) Active() bool {
	return s.active
}

// Cursor returns the highlighted index
func (s *Selector) Cursor() int {
	return s.cursor
}

// Selected returns the chosen index, or false if cancelled or still active
func (s *Selector) Selected() (int, bool) {
	if s.active || s.selected < 0 {
		return -1, false
	}
	return s.selected, true
}

// Update handles selector input
func (s *Selector) Update(msg tea.Msg) (*Selector, tea.Cmd) {
	if !s.active {
		return s, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if s.cursor > 0 {
				s.cursor--
			}
		case "down", "j":
			if s.cursor < len(s.items)-1 {
				s.cursor++
			}
		case "enter":
			if len(s.items) > 0 {
				s.selected = s.cursor
			}
			s.active = false
		case "esc", "q":
			s.selected = -1
			s.active = false
		}
	}

	return s, nil
}

// View renders the selector
func (s *Selector) View() string {
	if !s.active {
		return ""
	}

	start := 0
	if s.cursor >= s.height {
		start = s.cursor - s.height + 1
	}
	end := min(start+s.height, len(s.items))

	rows := make([]string, 0, end-start)
	for _, item := range s.items[start:end] {
		display := item.Label
		if display == "" {
			display = item.ID
		}
		row := fmt.Sprintf("%-50s", display)
		if item.Description != "" {
			row += " " + SelectorDim.Render("["+item.Description+"]")
		}
		rows = append(rows, row)
	}

	return RenderList(s.title+" (↑/↓ navigate, enter select, esc cancel)", rows, s.cursor-start)
}

// RenderList draws rows under a title with an arrow on the cursor row.
func RenderList(title string, rows []string, cursor int) string {
	var b strings.Builder

	b.WriteString(HelpStyle.Render(title))
	b.WriteString("\n\n")

	for i, row := range rows {
		if i == cursor {
			b.WriteString(SelectorCursor.Render(SymbolArrow) + " ")
			b.WriteString(SelectorActive.Render(row))
		} else {
			b.WriteString("  ")
			b.WriteString(SelectorItemStyle.Render(row))
		}
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}
