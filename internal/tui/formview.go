package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/yolodolo42/evmcli/internal/contract"
	"github.com/yolodolo42/evmcli/internal/form"
	"github.com/yolodolo42/evmcli/internal/soltype"
	"github.com/yolodolo42/evmcli/internal/ui"
)

// formView is the overlay that edits a form.Form. Each text field has its
// own prompt; bool fields are toggled.
type formView struct {
	method  contract.Method
	form    *form.Form
	prompts []ui.Prompt
	keys    FormKeyMap
}

func newFormView(m contract.Method) *formView {
	f := form.New(m.Request())
	fv := &formView{method: m, form: f, keys: DefaultFormKeyMap()}
	for _, field := range f.Fields() {
		placeholder := "decimal amount"
		if !field.Amount {
			placeholder = field.Type.String()
		}
		fv.prompts = append(fv.prompts, ui.NewPrompt(placeholder))
	}
	fv.syncFocus()
	return fv
}

func (fv *formView) syncFocus() tea.Cmd {
	var cmd tea.Cmd
	for i := range fv.prompts {
		if i == fv.form.Focus() {
			cmd = fv.prompts[i].Focus()
		} else {
			fv.prompts[i].Blur()
		}
	}
	return cmd
}

// Update handles one key. It returns the submission once the form is
// Ready.
func (fv *formView) Update(msg tea.KeyMsg) (*form.Submission, tea.Cmd) {
	f := fv.form
	switch {
	case key.Matches(msg, fv.keys.Cancel):
		f.Cancel()
		return nil, nil
	case key.Matches(msg, fv.keys.Next):
		f.Next()
		return nil, fv.syncFocus()
	case key.Matches(msg, fv.keys.Prev):
		f.Prev()
		return nil, fv.syncFocus()
	case key.Matches(msg, fv.keys.Submit):
		sub, err := f.Submit()
		if err != nil {
			return nil, fv.syncFocus()
		}
		return sub, nil
	}

	field := f.Focused()
	if field == nil {
		return nil, nil
	}
	if field.IsToggle() {
		if key.Matches(msg, fv.keys.Toggle) {
			f.Toggle(f.Focus())
		}
		return nil, nil
	}

	i := f.Focus()
	_, cmd := fv.prompts[i].Update(msg)
	if fv.prompts[i].Value() != field.Raw {
		f.SetText(i, fv.prompts[i].Value())
	}
	return nil, cmd
}

func (fv *formView) View(width int) string {
	f := fv.form
	var b strings.Builder
	b.WriteString(ui.TitleStyle.Render(f.Title()))
	b.WriteString("\n")
	if fv.method.Tag != "" {
		b.WriteString(ui.SelectorDim.Render(string(fv.method.Tag)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if f.Len() == 0 {
		b.WriteString(ui.SelectorDim.Render("no arguments"))
		b.WriteString("\n")
	}
	for i, field := range f.Fields() {
		label := field.Label
		if !field.Amount {
			label = fmt.Sprintf("%s (%s)", field.Label, field.Type)
		}
		if i == f.Focus() {
			b.WriteString(ui.SelectorActive.Render(label))
		} else {
			b.WriteString(ui.SelectorItemStyle.Render(label))
		}
		b.WriteString("\n")

		if field.IsToggle() {
			box := ui.SymbolToggleOff
			if v, ok := field.Value.(soltype.BoolValue); ok && v.V {
				box = ui.SymbolToggleOn
			}
			b.WriteString("  " + box)
		} else {
			fv.prompts[i].SetWidth(width - 4)
			b.WriteString(fv.prompts[i].View())
		}
		b.WriteString("\n")

		if field.Touched && field.Err != nil {
			b.WriteString(ui.ErrorStyle.Render("  " + field.Err.Error()))
			b.WriteString("\n")
		}
	}

	if f.State() == form.Invalid {
		b.WriteString("\n")
		b.WriteString(ui.ErrorStyle.Render(fmt.Sprintf("%s fix %s before submitting", ui.SymbolCross, f.Fields()[f.FirstInvalid()].Label)))
		b.WriteString("\n")
	}
	return b.String()
}
