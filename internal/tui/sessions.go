package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/attendo/attendo/pkg/client"
	"github.com/attendo/attendo/pkg/domain"
)

type sessionListPage struct {
	d        *deps
	seq      uint64
	hall     domain.Hall
	sessions []domain.Session
	cursor   int
	loading  bool
	problems []string
	flash    string
}

func newSessionListPage(d *deps, hall domain.Hall) sessionListPage {
	return sessionListPage{d: d, seq: nextSeq(), hall: hall, loading: true}
}

func (p sessionListPage) withFlash(s string) page { p.flash = s; return p }
func (p sessionListPage) reload() page            { return newSessionListPage(p.d, p.hall) }
func (p sessionListPage) Title() string           { return p.hall.HallName }
func (p sessionListPage) editing() bool           { return false }

func (p sessionListPage) Help() string {
	return helpLine("j/k", "move", "enter", "attendance", "n", "new", "e", "edit", "d", "delete", "r", "refresh", "esc", "back")
}

func (p sessionListPage) Init() tea.Cmd {
	sessions := p.d.client.Sessions
	hallID := p.hall.ID
	return call(p.seq, "list-sessions", func(ctx context.Context) (*client.Envelope[[]domain.Session], error) {
		return sessions.ListByHall(ctx, hallID)
	})
}

func (p sessionListPage) selected() (domain.Session, bool) {
	if p.cursor < 0 || p.cursor >= len(p.sessions) {
		return domain.Session{}, false
	}
	return p.sessions[p.cursor], true
}

func (p sessionListPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[[]domain.Session]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.loading = false
		if msg.ok() {
			p.sessions = msg.env.Data
			if p.cursor >= len(p.sessions) {
				p.cursor = max(len(p.sessions)-1, 0)
			}
			return p, nil
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Failed to load sessions")
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
			return p, push(newSessionFormPage(p.d, p.hall, nil))
		case "enter":
			if s, ok := p.selected(); ok {
				return p, push(newAttendancePage(p.d, s))
			}
		case "e":
			if s, ok := p.selected(); ok {
				return p, push(newSessionFormPage(p.d, p.hall, &s))
			}
		case "d":
			if s, ok := p.selected(); ok {
				sessions := p.d.client.Sessions
				id := s.SessionID
				return p, push(newConfirmPage(p.d, "Delete session",
					fmt.Sprintf("Delete session %s and its attendance?", s.SessionName),
					"Session deleted.",
					func(ctx context.Context) (*client.Envelope[client.NoData], error) {
						return sessions.Delete(ctx, id)
					}))
			}
		default:
			p.cursor = moveCursor(p.cursor, len(p.sessions), key)
		}
	}
	return p, nil
}

func (p sessionListPage) View() string {
	var b strings.Builder
	if p.flash != "" {
		b.WriteString("  " + successStyle.Render(p.flash) + "\n\n")
	}
	switch {
	case p.loading:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	case len(p.sessions) == 0 && len(p.problems) == 0:
		b.WriteString(dimStyle.Render("  No sessions in this hall. Press n to schedule one.") + "\n")
	default:
		now := p.d.now()
		b.WriteString(sectionHeaderStyle.Render("  "+pad("SESSION", 26)+pad("START", 18)+pad("END", 18)+"CHECK-IN") + "\n")
		for i, s := range p.sessions {
			marker := "  "
			if s.Active(now) {
				marker = successStyle.Render("● ")
			}
			row := pad(s.SessionName, 26) + pad(formatClock(s.StartAt.Time), 18) +
				pad(formatClock(s.EndAt.Time), 18) + s.ConnectionType
			if i == p.cursor {
				b.WriteString(marker + selectedRowBg.Render(selectedStyle.Render(row)) + "\n")
			} else {
				b.WriteString(marker + normalStyle.Render(row) + "\n")
			}
		}
	}
	b.WriteString("\n" + renderProblems(p.problems))
	return b.String()
}

// --- create / update ---

type sessionFormPage struct {
	d        *deps
	seq      uint64
	hall     domain.Hall
	existing *domain.Session
	form     form
	problems []string
	busy     bool
}

func newSessionFormPage(d *deps, hall domain.Hall, existing *domain.Session) sessionFormPage {
	f := newForm(
		textField("sessionName", "name"),
		choiceField("connectionType", "check-in", domain.ConnectionTypes),
		textField("latitude", "latitude"),
		textField("longitude", "longitude"),
		textField("allowedRadius", "radius").withHint("meters"),
		textField("networkSSID", "wifi ssid"),
		textField("networkBSSID", "wifi bssid"),
		textField("startAt", "starts").withHint(timeLayout),
		textField("endAt", "ends").withHint(timeLayout),
	)
	if existing != nil {
		f = f.set("sessionName", existing.SessionName).
			set("latitude", formatFloat(existing.Latitude)).
			set("longitude", formatFloat(existing.Longitude)).
			set("allowedRadius", formatFloat(existing.AllowedRadius)).
			set("networkSSID", existing.NetworkSSID).
			set("networkBSSID", existing.NetworkBSSID).
			set("startAt", clockValue(existing.StartAt.Time)).
			set("endAt", clockValue(existing.EndAt.Time))
		if existing.ConnectionType != "" {
			f = f.set("connectionType", existing.ConnectionType)
		}
	}
	return sessionFormPage{d: d, seq: nextSeq(), hall: hall, existing: existing, form: f}
}

func clockValue(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(timeLayout)
}

func (p sessionFormPage) reload() page  { return newSessionFormPage(p.d, p.hall, p.existing) }
func (p sessionFormPage) editing() bool { return true }
func (p sessionFormPage) Init() tea.Cmd { return nil }

func (p sessionFormPage) Title() string {
	if p.existing != nil {
		return "Edit session"
	}
	return "New session"
}

func (p sessionFormPage) Help() string {
	return helpLine("tab", "next", "ctrl+s", "save", "esc", "cancel")
}

func (p sessionFormPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[client.NoData]:
		if msg.seq != p.seq {
			return p, nil
		}
		return p.saved(msg.op, msg.ok(), msg.env, msg.err)
	case resultMsg[domain.Session]:
		if msg.seq != p.seq {
			return p, nil
		}
		return p.saved(msg.op, msg.ok(), msg.env, msg.err)

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

func (p sessionFormPage) saved(op string, ok bool, res client.Outcome, err error) (page, tea.Cmd) {
	p.busy = false
	if ok {
		if p.existing != nil {
			return p, back("Session updated.")
		}
		return p, back("Session created.")
	}
	p.problems = p.d.problems(op, res, err, "Failed to save session")
	return p, nil
}

// sessionFields is the parsed numeric and time part of the form.
type sessionFields struct {
	lat, lng, radius float64
	start, end       time.Time
}

func (p sessionFormPage) parse() (sessionFields, []string) {
	var out sessionFields
	var problems []string
	var err error
	if out.lat, err = parseFloat("latitude", p.form.value("latitude")); err != nil {
		problems = append(problems, err.Error())
	}
	if out.lng, err = parseFloat("longitude", p.form.value("longitude")); err != nil {
		problems = append(problems, err.Error())
	}
	if out.radius, err = parseFloat("radius", p.form.value("allowedRadius")); err != nil {
		problems = append(problems, err.Error())
	}
	if out.start, err = parseClock("start", p.form.value("startAt")); err != nil {
		problems = append(problems, err.Error())
	}
	if out.end, err = parseClock("end", p.form.value("endAt")); err != nil {
		problems = append(problems, err.Error())
	}
	return out, problems
}

func (p sessionFormPage) submit() (page, tea.Cmd) {
	v, problems := p.parse()
	if len(problems) > 0 {
		p.problems = problems
		return p, nil
	}

	p.busy = true
	sessions := p.d.client.Sessions
	if p.existing != nil {
		id := p.existing.SessionID
		req := client.UpdateSessionRequest{
			SessionName:    p.form.trimmed("sessionName"),
			ConnectionType: p.form.value("connectionType"),
			Latitude:       v.lat,
			Longitude:      v.lng,
			AllowedRadius:  v.radius,
			NetworkSSID:    p.form.trimmed("networkSSID"),
			NetworkBSSID:   p.form.trimmed("networkBSSID"),
			StartAt:        domain.Time{Time: v.start},
			EndAt:          domain.Time{Time: v.end},
			HallID:         p.hall.ID,
		}
		return p, call(p.seq, "update-session", func(ctx context.Context) (*client.Envelope[domain.Session], error) {
			return sessions.Update(ctx, id, req)
		})
	}
	req := client.CreateSessionRequest{
		OrganizationID: p.hall.OrganizationID,
		SessionName:    p.form.trimmed("sessionName"),
		ConnectionType: p.form.value("connectionType"),
		Latitude:       v.lat,
		Longitude:      v.lng,
		AllowedRadius:  v.radius,
		NetworkSSID:    p.form.trimmed("networkSSID"),
		NetworkBSSID:   p.form.trimmed("networkBSSID"),
		StartAt:        domain.Time{Time: v.start},
		EndAt:          domain.Time{Time: v.end},
		HallID:         p.hall.ID,
	}
	return p, call(p.seq, "create-session", func(ctx context.Context) (*client.Envelope[client.NoData], error) {
		return sessions.Create(ctx, req)
	})
}

func (p sessionFormPage) View() string {
	body := p.form.View() + "\n"
	if p.busy {
		body += dimStyle.Render("  saving...") + "\n"
	}
	return body + renderProblems(p.problems)
}
