package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldSecret
	fieldChoice
)

type formField struct {
	key     string
	label   string
	kind    fieldKind
	value   string
	options []string
	hint    string
}

func textField(key, label string) formField {
	return formField{key: key, label: label}
}

func secretField(key, label string) formField {
	return formField{key: key, label: label, kind: fieldSecret}
}

// choiceField starts on the first option; h/l or left/right cycle.
func choiceField(key, label string, options []string) formField {
	return formField{key: key, label: label, kind: fieldChoice, options: options, value: options[0]}
}

func (f formField) withHint(hint string) formField {
	f.hint = hint
	return f
}

// form is the field list shared by every console form. tab/enter move
// between fields; enter on the last field or ctrl+s submits.
type form struct {
	fields []formField
	focus  int
}

func newForm(fields ...formField) form {
	return form{fields: fields}
}

// update applies one key. submit is true when the user asked to submit.
func (f form) update(msg tea.KeyMsg) (form, bool) {
	n := len(f.fields)
	if n == 0 {
		return f, false
	}
	key := msg.String()
	switch key {
	case "ctrl+s":
		return f, true
	case "tab", "down":
		f.focus = (f.focus + 1) % n
		return f, false
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + n) % n
		return f, false
	case "enter":
		if f.focus == n-1 {
			return f, true
		}
		f.focus++
		return f, false
	}

	fields := append([]formField(nil), f.fields...)
	field := &fields[f.focus]
	if field.kind == fieldChoice {
		switch key {
		case "l", "right", " ":
			field.value = cycle(field.options, field.value, 1)
		case "h", "left":
			field.value = cycle(field.options, field.value, -1)
		}
	} else {
		switch {
		case msg.Type == tea.KeyRunes && !msg.Alt:
			field.value = insertText(field.value, string(msg.Runes))
		case msg.Type == tea.KeySpace:
			field.value = insertText(field.value, " ")
		default:
			field.value = editRune(field.value, key)
		}
	}
	f.fields = fields
	return f, false
}

func cycle(options []string, current string, step int) string {
	if len(options) == 0 {
		return current
	}
	idx := 0
	for i, o := range options {
		if o == current {
			idx = i
			break
		}
	}
	return options[(idx+step+len(options))%len(options)]
}

func (f form) value(key string) string {
	for _, field := range f.fields {
		if field.key == key {
			return field.value
		}
	}
	return ""
}

func (f form) trimmed(key string) string {
	return strings.TrimSpace(f.value(key))
}

func (f form) set(key, value string) form {
	fields := append([]formField(nil), f.fields...)
	for i := range fields {
		if fields[i].key == key {
			fields[i].value = value
		}
	}
	f.fields = fields
	return f
}

func (f form) View() string {
	var b strings.Builder
	width := 0
	for _, field := range f.fields {
		if w := len(field.label); w > width {
			width = w
		}
	}
	for i, field := range f.fields {
		cursor := " "
		style := metaStyle
		focused := i == f.focus
		if focused {
			cursor = ">"
			style = selectedStyle
		}
		label := style.Render(fmt.Sprintf("%-*s", width, field.label))

		var value string
		switch field.kind {
		case fieldChoice:
			value = accentStyle.Render(field.value)
			if focused {
				value += dimStyle.Render("  (h/l to cycle)")
			}
		case fieldSecret:
			value = strings.Repeat("•", len([]rune(field.value)))
		default:
			value = field.value
		}
		if focused && field.kind != fieldChoice {
			value += "█"
		}
		if field.hint != "" && field.value == "" && !focused {
			value = inputPlaceholderStyle.Render(field.hint)
		}
		fmt.Fprintf(&b, "%s %s  %s\n", cursor, label, value)
	}
	return b.String()
}
