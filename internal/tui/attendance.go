package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/attendo/attendo/pkg/client"
	"github.com/attendo/attendo/pkg/domain"
)

// exportedMsg reports a finished CSV export.
type exportedMsg struct {
	seq  uint64
	path string
	err  error
}

type attendancePage struct {
	d         *deps
	seq       uint64
	session   domain.Session
	records   []domain.AttendanceRecord
	cursor    int
	loading   bool
	exporting bool
	problems  []string
	flash     string
}

func newAttendancePage(d *deps, session domain.Session) attendancePage {
	return attendancePage{d: d, seq: nextSeq(), session: session, loading: true}
}

func (p attendancePage) reload() page  { return newAttendancePage(p.d, p.session) }
func (p attendancePage) Title() string { return "Attendance: " + p.session.SessionName }
func (p attendancePage) editing() bool { return false }

func (p attendancePage) Help() string {
	if !p.canExport() {
		return helpLine("j/k", "move", "r", "refresh", "esc", "back")
	}
	return helpLine("j/k", "move", "x", "export csv", "r", "refresh", "esc", "back")
}

func (p attendancePage) Init() tea.Cmd {
	sessions := p.d.client.Sessions
	id := p.session.SessionID
	return call(p.seq, "list-attendance", func(ctx context.Context) (*client.Envelope[[]domain.AttendanceRecord], error) {
		return sessions.AttendanceInternal(ctx, id)
	})
}

// canExport is false while loading, exporting, or when there is nothing to
// export.
func (p attendancePage) canExport() bool {
	return !p.loading && !p.exporting && len(p.records) > 0
}

func (p attendancePage) export() tea.Cmd {
	d := p.d
	seq := p.seq
	id := p.session.SessionID
	return func() tea.Msg {
		data, err := d.client.Sessions.ExportAttendanceCSVInternal(context.Background(), id)
		if err != nil {
			return exportedMsg{seq: seq, err: err}
		}
		path := d.exportPath(id)
		if err := d.writeFile(path, data); err != nil {
			return exportedMsg{seq: seq, err: fmt.Errorf("write %s: %w", path, err)}
		}
		return exportedMsg{seq: seq, path: path}
	}
}

func (p attendancePage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[[]domain.AttendanceRecord]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.loading = false
		if msg.ok() {
			p.records = msg.env.Data
			return p, nil
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Failed to load attendance")
		return p, nil

	case exportedMsg:
		if msg.seq != p.seq {
			return p, nil
		}
		p.exporting = false
		if msg.err != nil {
			p.problems = p.d.problems("export-csv", nil, msg.err, "Export failed")
			return p, nil
		}
		p.flash = "Saved " + msg.path
		return p, nil

	case tea.KeyMsg:
		key := msg.String()
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
		case "x":
			if !p.canExport() {
				return p, nil
			}
			p.exporting = true
			p.flash = ""
			p.problems = nil
			return p, p.export()
		default:
			p.cursor = moveCursor(p.cursor, len(p.records), key)
		}
	}
	return p, nil
}

func (p attendancePage) faceVerified() int {
	n := 0
	for _, r := range p.records {
		if r.VerificationType == domain.VerificationFace {
			n++
		}
	}
	return n
}

func (p attendancePage) View() string {
	var b strings.Builder
	s := p.session
	fmt.Fprintf(&b, "  %s %s %s\n",
		metaStyle.Render(formatClock(s.StartAt.Time)),
		dimStyle.Render("→"),
		metaStyle.Render(formatClock(s.EndAt.Time)))
	if s.Active(p.d.now()) {
		b.WriteString("  " + successStyle.Render("● in progress") + "\n")
	}
	b.WriteString("\n")

	switch {
	case p.loading:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	case len(p.records) == 0 && len(p.problems) == 0:
		b.WriteString(dimStyle.Render("  No one has checked in yet. Export is unavailable.") + "\n")
	case len(p.records) > 0:
		fmt.Fprintf(&b, "  %s  %s\n\n",
			titleStyle.Render(fmt.Sprintf("%d checked in", len(p.records))),
			dimStyle.Render(fmt.Sprintf("%d by face", p.faceVerified())))
		b.WriteString(sectionHeaderStyle.Render("  "+pad("NAME", 24)+pad("USERNAME", 16)+pad("TIME", 18)+pad("METHOD", 12)+"SCORE") + "\n")
		for i, r := range p.records {
			score := "-"
			if r.MatchScore != nil {
				score = scoreStyle(*r.MatchScore).Render(fmt.Sprintf("%.2f", *r.MatchScore))
			}
			row := pad(r.FullName, 24) + pad(r.UserName, 16) + pad(formatClock(r.TimeStamp.Time), 18) + pad(r.VerificationType, 12)
			if i == p.cursor {
				b.WriteString("  " + selectedRowBg.Render(selectedStyle.Render(row)) + score + "\n")
			} else {
				b.WriteString("  " + normalStyle.Render(row) + score + "\n")
			}
		}
	}

	if p.exporting {
		b.WriteString("\n" + dimStyle.Render("  exporting...") + "\n")
	}
	if p.flash != "" {
		b.WriteString("\n  " + successStyle.Render(p.flash) + "\n")
	}
	b.WriteString("\n" + renderProblems(p.problems))
	return b.String()
}
