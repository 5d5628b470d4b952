package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/attendo/attendo/pkg/client"
	"github.com/attendo/attendo/pkg/domain"
)

type hallListPage struct {
	d        *deps
	seq      uint64
	org      domain.Organization
	halls    []domain.Hall
	cursor   int
	loading  bool
	problems []string
	flash    string
}

func newHallListPage(d *deps, org domain.Organization) hallListPage {
	return hallListPage{d: d, seq: nextSeq(), org: org, loading: true}
}

func (p hallListPage) withFlash(s string) page { p.flash = s; return p }
func (p hallListPage) reload() page            { return newHallListPage(p.d, p.org) }
func (p hallListPage) Title() string           { return "Halls" }
func (p hallListPage) editing() bool           { return false }

func (p hallListPage) Help() string {
	return helpLine("j/k", "move", "enter", "sessions", "n", "new", "e", "edit", "d", "delete", "r", "refresh", "esc", "back")
}

func (p hallListPage) Init() tea.Cmd {
	halls := p.d.client.Halls
	orgID := p.org.OrganizationID
	return call(p.seq, "list-halls", func(ctx context.Context) (*client.Envelope[[]domain.Hall], error) {
		return halls.ListByOrganization(ctx, orgID)
	})
}

func (p hallListPage) selected() (domain.Hall, bool) {
	if p.cursor < 0 || p.cursor >= len(p.halls) {
		return domain.Hall{}, false
	}
	return p.halls[p.cursor], true
}

func (p hallListPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[[]domain.Hall]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.loading = false
		if msg.ok() {
			p.halls = msg.env.Data
			if p.cursor >= len(p.halls) {
				p.cursor = max(len(p.halls)-1, 0)
			}
			return p, nil
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Failed to load halls")
		return p, nil

	case tea.KeyMsg:
		key := msg.String()
		p.flash = ""
		switch key {
		case "esc":
			if len(p.problems) > 0 {
				p.problems = nil
				return p, nil
			}
			return p, back("")
		case "r":
			fresh := p.reload()
			return fresh, fresh.Init()
		case "n":
			return p, push(newHallFormPage(p.d, p.org.OrganizationID, nil))
		case "enter":
			if h, ok := p.selected(); ok {
				return p, push(newSessionListPage(p.d, h))
			}
		case "e":
			if h, ok := p.selected(); ok {
				return p, push(newHallFormPage(p.d, p.org.OrganizationID, &h))
			}
		case "d":
			if h, ok := p.selected(); ok {
				halls := p.d.client.Halls
				id := h.ID
				return p, push(newConfirmPage(p.d, "Delete hall",
					fmt.Sprintf("Delete hall %s?", h.HallName),
					"Hall deleted.",
					func(ctx context.Context) (*client.Envelope[client.NoData], error) {
						return halls.Delete(ctx, id)
					}))
			}
		default:
			p.cursor = moveCursor(p.cursor, len(p.halls), key)
		}
	}
	return p, nil
}

func (p hallListPage) View() string {
	var b strings.Builder
	if p.flash != "" {
		b.WriteString("  " + successStyle.Render(p.flash) + "\n\n")
	}
	switch {
	case p.loading:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	case len(p.halls) == 0 && len(p.problems) == 0:
		b.WriteString(dimStyle.Render("  No halls in "+p.org.OrganizationName+". Press n to add one.") + "\n")
	default:
		b.WriteString(sectionHeaderStyle.Render("  "+pad("HALL", 28)+pad("CAPACITY", 10)+"AREA m²") + "\n")
		for i, h := range p.halls {
			row := "  " + pad(h.HallName, 28) + pad(fmt.Sprint(h.Capacity), 10) + formatFloat(h.HallArea)
			if i == p.cursor {
				b.WriteString(selectedRowBg.Render(selectedStyle.Render(row)) + "\n")
			} else {
				b.WriteString(normalStyle.Render(row) + "\n")
			}
		}
	}
	b.WriteString("\n" + renderProblems(p.problems))
	return b.String()
}

// --- create / update ---

type hallFormPage struct {
	d        *deps
	seq      uint64
	orgID    int
	existing *domain.Hall
	form     form
	problems []string
	busy     bool
}

func newHallFormPage(d *deps, orgID int, existing *domain.Hall) hallFormPage {
	f := newForm(
		textField("hallName", "name"),
		textField("capacity", "capacity").withHint("seats"),
		textField("hallArea", "area").withHint("square meters"),
	)
	if existing != nil {
		f = f.set("hallName", existing.HallName).
			set("capacity", fmt.Sprint(existing.Capacity)).
			set("hallArea", formatFloat(existing.HallArea))
	}
	return hallFormPage{d: d, seq: nextSeq(), orgID: orgID, existing: existing, form: f}
}

func (p hallFormPage) reload() page  { return newHallFormPage(p.d, p.orgID, p.existing) }
func (p hallFormPage) editing() bool { return true }
func (p hallFormPage) Init() tea.Cmd { return nil }

func (p hallFormPage) Title() string {
	if p.existing != nil {
		return "Edit hall"
	}
	return "New hall"
}

func (p hallFormPage) Help() string {
	return helpLine("tab", "next", "ctrl+s", "save", "esc", "cancel")
}

func (p hallFormPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[domain.Hall]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if msg.ok() {
			if p.existing != nil {
				return p, back("Hall updated.")
			}
			return p, back("Hall created.")
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Failed to save hall")
		return p, nil

	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		if msg.String() == "esc" {
			if len(p.problems) > 0 {
				p.problems = nil
				return p, nil
			}
			return p, back("")
		}
		p.problems = nil
		var submit bool
		p.form, submit = p.form.update(msg)
		if submit {
			return p.submit()
		}
	}
	return p, nil
}

func (p hallFormPage) submit() (page, tea.Cmd) {
	var problems []string
	capacity, err := parseInt("capacity", p.form.value("capacity"))
	if err != nil {
		problems = append(problems, err.Error())
	}
	area, err := parseFloat("area", p.form.value("hallArea"))
	if err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		p.problems = problems
		return p, nil
	}

	p.busy = true
	halls := p.d.client.Halls
	name := p.form.trimmed("hallName")
	if p.existing != nil {
		id := p.existing.ID
		req := client.UpdateHallRequest{HallName: name, Capacity: capacity, HallArea: area}
		return p, call(p.seq, "update-hall", func(ctx context.Context) (*client.Envelope[domain.Hall], error) {
			return halls.Update(ctx, id, req)
		})
	}
	req := client.CreateHallRequest{HallName: name, Capacity: capacity, HallArea: area, OrganizationID: p.orgID}
	return p, call(p.seq, "create-hall", func(ctx context.Context) (*client.Envelope[domain.Hall], error) {
		return halls.Create(ctx, req)
	})
}

func (p hallFormPage) View() string {
	body := p.form.View() + "\n"
	if p.busy {
		body += dimStyle.Render("  saving...") + "\n"
	}
	return body + renderProblems(p.problems)
}
