package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/attendo/attendo/pkg/client"
)

// confirmPage asks before a destructive call and goes back on success.
type confirmPage struct {
	d        *deps
	seq      uint64
	title    string
	prompt   string
	done     string
	action   func(context.Context) (*client.Envelope[client.NoData], error)
	busy     bool
	problems []string
}

func newConfirmPage(d *deps, title, prompt, done string, action func(context.Context) (*client.Envelope[client.NoData], error)) confirmPage {
	return confirmPage{d: d, seq: nextSeq(), title: title, prompt: prompt, done: done, action: action}
}

func (p confirmPage) reload() page {
	return newConfirmPage(p.d, p.title, p.prompt, p.done, p.action)
}
func (p confirmPage) Title() string { return p.title }
func (p confirmPage) editing() bool { return false }
func (p confirmPage) Init() tea.Cmd { return nil }
func (p confirmPage) Help() string  { return helpLine("y", "confirm", "n/esc", "cancel") }

func (p confirmPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[client.NoData]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if msg.ok() {
			return p, back(p.done)
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "")
		return p, nil

	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		switch msg.String() {
		case "y", "enter":
			p.busy = true
			p.problems = nil
			return p, call(p.seq, p.title, p.action)
		case "n", "esc":
			return p, back("")
		}
	}
	return p, nil
}

func (p confirmPage) View() string {
	body := "  " + goldStyle.Render(p.prompt) + "\n\n"
	if p.busy {
		body += dimStyle.Render("  working...") + "\n"
	} else {
		body += dimStyle.Render("  y to confirm, n to cancel") + "\n"
	}
	return body + "\n" + renderProblems(p.problems)
}

// moveCursor applies j/k style navigation to a list of n rows.
func moveCursor(cursor, n int, key string) int {
	switch key {
	case "j", "down":
		if cursor < n-1 {
			cursor++
		}
	case "k", "up":
		if cursor > 0 {
			cursor--
		}
	case "g", "home":
		cursor = 0
	case "G", "end":
		if n > 0 {
			cursor = n - 1
		}
	}
	return cursor
}
