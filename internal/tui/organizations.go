package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/attendo/attendo/pkg/client"
	"github.com/attendo/attendo/pkg/domain"
)

// --- list ---

type orgListPage struct {
	d        *deps
	seq      uint64
	orgs     []domain.Organization
	cursor   int
	loading  bool
	problems []string
	flash    string
}

func newOrgListPage(d *deps) orgListPage {
	return orgListPage{d: d, seq: nextSeq(), loading: true}
}

func (p orgListPage) withFlash(s string) page { p.flash = s; return p }
func (p orgListPage) reload() page            { return newOrgListPage(p.d) }
func (p orgListPage) Title() string           { return "Organizations" }
func (p orgListPage) editing() bool           { return false }

func (p orgListPage) Help() string {
	return helpLine("j/k", "move", "enter", "open", "n", "new", "e", "edit", "d", "delete", "r", "refresh", "ctrl+l", "log out")
}

func (p orgListPage) Init() tea.Cmd {
	orgs := p.d.client.Organizations
	return call(p.seq, "list-organizations", func(ctx context.Context) (*client.Envelope[[]domain.Organization], error) {
		return orgs.ListMine(ctx)
	})
}

func (p orgListPage) selected() (domain.Organization, bool) {
	if p.cursor < 0 || p.cursor >= len(p.orgs) {
		return domain.Organization{}, false
	}
	return p.orgs[p.cursor], true
}

func (p orgListPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[[]domain.Organization]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.loading = false
		if msg.ok() {
			p.orgs = msg.env.Data
			if p.cursor >= len(p.orgs) {
				p.cursor = max(len(p.orgs)-1, 0)
			}
			return p, nil
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Failed to load organizations")
		return p, nil

	case tea.KeyMsg:
		key := msg.String()
		p.flash = ""
		switch key {
		case "esc":
			p.problems = nil
		case "r":
			fresh := p.reload()
			return fresh, fresh.Init()
		case "n":
			return p, push(newOrgFormPage(p.d, nil))
		case "enter":
			if org, ok := p.selected(); ok {
				return p, push(newOrgDetailPage(p.d, org))
			}
		case "e":
			if org, ok := p.selected(); ok {
				return p, push(newOrgFormPage(p.d, &org))
			}
		case "d":
			if org, ok := p.selected(); ok {
				orgs := p.d.client.Organizations
				id := org.OrganizationID
				return p, push(newConfirmPage(p.d, "Delete organization",
					fmt.Sprintf("Delete %s and everything in it?", org.OrganizationName),
					"Organization deleted.",
					func(ctx context.Context) (*client.Envelope[client.NoData], error) {
						return orgs.Delete(ctx, id)
					}))
			}
		default:
			p.cursor = moveCursor(p.cursor, len(p.orgs), key)
		}
	}
	return p, nil
}

func (p orgListPage) View() string {
	var b strings.Builder
	if p.flash != "" {
		b.WriteString("  " + successStyle.Render(p.flash) + "\n\n")
	}
	switch {
	case p.loading:
		b.WriteString(dimStyle.Render("  loading...") + "\n")
	case len(p.orgs) == 0 && len(p.problems) == 0:
		b.WriteString(dimStyle.Render("  No organizations yet. Press n to create one.") + "\n")
	default:
		b.WriteString(sectionHeaderStyle.Render("  "+pad("NAME", 28)+pad("TYPE", 16)+pad("CODE", 10)+"CONTACT") + "\n")
		for i, o := range p.orgs {
			row := "  " + pad(o.OrganizationName, 28) + pad(o.OrganizationType, 16) +
				pad(fmt.Sprint(o.OrganizationCode), 10) + o.ContactEmail
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

// --- detail ---

type orgDetailPage struct {
	d        *deps
	seq      uint64
	org      domain.Organization
	members  []domain.Member
	events   []domain.Event
	pending  int
	problems []string
	flash    string
}

func newOrgDetailPage(d *deps, org domain.Organization) orgDetailPage {
	return orgDetailPage{d: d, seq: nextSeq(), org: org, pending: 3}
}

func (p orgDetailPage) withFlash(s string) page { p.flash = s; return p }
func (p orgDetailPage) reload() page            { return newOrgDetailPage(p.d, p.org) }
func (p orgDetailPage) Title() string           { return p.org.OrganizationName }
func (p orgDetailPage) editing() bool           { return false }

func (p orgDetailPage) Help() string {
	return helpLine("h", "halls", "a", "add member", "k", "api key", "e", "edit", "r", "refresh", "esc", "back")
}

func (p orgDetailPage) Init() tea.Cmd {
	orgs := p.d.client.Organizations
	id := p.org.OrganizationID
	return tea.Batch(
		call(p.seq, "get-organization", func(ctx context.Context) (*client.Envelope[domain.Organization], error) {
			return orgs.Get(ctx, id)
		}),
		call(p.seq, "list-members", func(ctx context.Context) (*client.Envelope[[]domain.Member], error) {
			return orgs.ListMembers(ctx, id)
		}),
		call(p.seq, "list-events", func(ctx context.Context) (*client.Envelope[[]domain.Event], error) {
			return orgs.ListEvents(ctx, id)
		}),
	)
}

func (p orgDetailPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[domain.Organization]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.pending--
		if msg.ok() {
			p.org = msg.env.Data
		} else {
			p.problems = append(p.problems, p.d.problems(msg.op, msg.env, msg.err, "Failed to load organization")...)
		}
	case resultMsg[[]domain.Member]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.pending--
		if msg.ok() {
			p.members = msg.env.Data
		} else {
			p.problems = append(p.problems, p.d.problems(msg.op, msg.env, msg.err, "Failed to load members")...)
		}
	case resultMsg[[]domain.Event]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.pending--
		if msg.ok() {
			p.events = msg.env.Data
		} else {
			p.problems = append(p.problems, p.d.problems(msg.op, msg.env, msg.err, "Failed to load activity")...)
		}

	case tea.KeyMsg:
		p.flash = ""
		switch msg.String() {
		case "esc":
			if len(p.problems) > 0 {
				p.problems = nil
				return p, nil
			}
			return p, back("")
		case "r":
			fresh := p.reload()
			return fresh, fresh.Init()
		case "h":
			return p, push(newHallListPage(p.d, p.org))
		case "a":
			return p, push(newAddMemberPage(p.d, p.org.OrganizationID))
		case "k":
			return p, push(newAPIKeyPage(p.d, p.org))
		case "e":
			org := p.org
			return p, push(newOrgFormPage(p.d, &org))
		}
	}
	return p, nil
}

func (p orgDetailPage) admins() int {
	n := 0
	for _, m := range p.members {
		if m.Role == domain.RoleAdmin {
			n++
		}
	}
	return n
}

func (p orgDetailPage) View() string {
	var b strings.Builder
	if p.flash != "" {
		b.WriteString("  " + successStyle.Render(p.flash) + "\n\n")
	}
	o := p.org
	fmt.Fprintf(&b, "  %s  %s\n", metaStyle.Render("type   "), normalStyle.Render(o.OrganizationType))
	fmt.Fprintf(&b, "  %s  %s\n", metaStyle.Render("contact"), normalStyle.Render(o.ContactEmail))
	fmt.Fprintf(&b, "  %s  %s\n", metaStyle.Render("code   "), accentStyle.Render(fmt.Sprint(o.OrganizationCode)))
	fmt.Fprintf(&b, "  %s  %s\n", metaStyle.Render("created"), normalStyle.Render(formatClock(o.CreatedAt.Time)))

	if p.pending > 0 {
		b.WriteString("\n" + dimStyle.Render("  loading...") + "\n")
	}

	fmt.Fprintf(&b, "\n  %s  %s  %s\n",
		titleStyle.Render(fmt.Sprintf("%d members", len(p.members))),
		goldStyle.Render(fmt.Sprintf("%d admins", p.admins())),
		dimStyle.Render(fmt.Sprintf("%d events", len(p.events))))

	if len(p.members) > 0 {
		b.WriteString("\n" + sectionHeaderStyle.Render("  MEMBERS") + "\n")
		for _, m := range p.members {
			fmt.Fprintf(&b, "  %s %s %s\n",
				normalStyle.Render(pad(m.FullName, 24)),
				dimStyle.Render(pad(m.Email, 30)),
				roleStyle(m.Role).Render(m.Role))
		}
	}

	if len(p.events) > 0 {
		b.WriteString("\n" + sectionHeaderStyle.Render("  ACTIVITY") + "\n")
		now := p.d.now()
		for i := len(p.events) - 1; i >= 0 && i >= len(p.events)-10; i-- {
			e := p.events[i]
			fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render(pad(formatTime(e.CreatedAt.Time, now), 10)), normalStyle.Render(e.Message))
		}
	}

	b.WriteString("\n" + renderProblems(p.problems))
	return b.String()
}

// --- create / update ---

type orgFormPage struct {
	d        *deps
	seq      uint64
	existing *domain.Organization
	form     form
	problems []string
	busy     bool
}

func newOrgFormPage(d *deps, existing *domain.Organization) orgFormPage {
	f := newForm(
		textField("organizationName", "name"),
		textField("organizationType", "type").withHint("School, Company, ..."),
		textField("conatactEmail", "contact email"),
	)
	if existing != nil {
		f = f.set("organizationName", existing.OrganizationName).
			set("organizationType", existing.OrganizationType).
			set("conatactEmail", existing.ContactEmail)
	}
	return orgFormPage{d: d, seq: nextSeq(), existing: existing, form: f}
}

func (p orgFormPage) reload() page  { return newOrgFormPage(p.d, p.existing) }
func (p orgFormPage) editing() bool { return true }
func (p orgFormPage) Init() tea.Cmd { return nil }

func (p orgFormPage) Title() string {
	if p.existing != nil {
		return "Edit organization"
	}
	return "New organization"
}

func (p orgFormPage) Help() string {
	return helpLine("tab", "next", "ctrl+s", "save", "esc", "cancel")
}

func (p orgFormPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[domain.Organization]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if msg.ok() {
			if p.existing != nil {
				return p, back("Organization updated.")
			}
			return p, back("Organization created.")
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Failed to save organization")
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

func (p orgFormPage) submit() (page, tea.Cmd) {
	req := client.CreateOrganizationRequest{
		OrganizationName: p.form.trimmed("organizationName"),
		OrganizationType: p.form.trimmed("organizationType"),
		ContactEmail:     p.form.trimmed("conatactEmail"),
	}
	p.busy = true
	orgs := p.d.client.Organizations
	if p.existing != nil {
		id := p.existing.OrganizationID
		return p, call(p.seq, "update-organization", func(ctx context.Context) (*client.Envelope[domain.Organization], error) {
			return orgs.Update(ctx, id, req)
		})
	}
	return p, call(p.seq, "create-organization", func(ctx context.Context) (*client.Envelope[domain.Organization], error) {
		return orgs.Create(ctx, req)
	})
}

func (p orgFormPage) View() string {
	body := p.form.View() + "\n"
	if p.busy {
		body += dimStyle.Render("  saving...") + "\n"
	}
	return body + renderProblems(p.problems)
}

// --- add member ---

type addMemberPage struct {
	d        *deps
	seq      uint64
	orgID    int
	form     form
	problems []string
	busy     bool
}

func newAddMemberPage(d *deps, orgID int) addMemberPage {
	return addMemberPage{
		d:     d,
		seq:   nextSeq(),
		orgID: orgID,
		form: newForm(
			textField("fullName", "full name"),
			textField("userName", "username"),
			textField("email", "email"),
			secretField("password", "password"),
			secretField("confirmPassword", "confirm password"),
			choiceField("role", "role", domain.Roles),
		),
	}
}

func (p addMemberPage) reload() page  { return newAddMemberPage(p.d, p.orgID) }
func (p addMemberPage) Title() string { return "Add member" }
func (p addMemberPage) editing() bool { return true }
func (p addMemberPage) Init() tea.Cmd { return nil }
func (p addMemberPage) Help() string {
	return helpLine("tab", "next", "ctrl+s", "add", "esc", "cancel")
}

func (p addMemberPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[client.NoData]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if msg.ok() {
			return p, back("Member added.")
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Failed to add member")
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
			req := client.AddMemberRequest{
				OrganizationID:  p.orgID,
				FullName:        p.form.trimmed("fullName"),
				UserName:        p.form.trimmed("userName"),
				Email:           p.form.trimmed("email"),
				Password:        p.form.value("password"),
				ConfirmPassword: p.form.value("confirmPassword"),
				Role:            p.form.value("role"),
			}
			p.busy = true
			orgs := p.d.client.Organizations
			return p, call(p.seq, "add-member", func(ctx context.Context) (*client.Envelope[client.NoData], error) {
				return orgs.AddMember(ctx, req)
			})
		}
	}
	return p, nil
}

func (p addMemberPage) View() string {
	body := p.form.View() + "\n"
	if p.busy {
		body += dimStyle.Render("  adding...") + "\n"
	}
	return body + renderProblems(p.problems)
}

// --- API key ---

type apiKeyPage struct {
	d        *deps
	seq      uint64
	org      domain.Organization
	key      string
	busy     bool
	flash    string
	problems []string
}

func newAPIKeyPage(d *deps, org domain.Organization) apiKeyPage {
	return apiKeyPage{d: d, seq: nextSeq(), org: org}
}

func (p apiKeyPage) reload() page  { return newAPIKeyPage(p.d, p.org) }
func (p apiKeyPage) Title() string { return "API key" }
func (p apiKeyPage) editing() bool { return false }
func (p apiKeyPage) Init() tea.Cmd { return nil }
func (p apiKeyPage) Help() string {
	return helpLine("g", "generate", "c", "copy", "esc", "back")
}

func (p apiKeyPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[domain.APIKey]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if msg.ok() {
			p.key = msg.env.Data.APIKey
			p.flash = "New key generated. The previous key no longer works."
			return p, nil
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Failed to generate API key")
		return p, nil

	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		p.problems = nil
		switch msg.String() {
		case "esc":
			return p, back("")
		case "g":
			p.busy = true
			p.flash = ""
			orgs := p.d.client.Organizations
			id := p.org.OrganizationID
			return p, call(p.seq, "generate-api-key", func(ctx context.Context) (*client.Envelope[domain.APIKey], error) {
				return orgs.GenerateAPIKey(ctx, id)
			})
		case "c":
			if p.key == "" {
				p.flash = "Generate a key first."
				return p, nil
			}
			if err := p.d.copy(p.key); err != nil {
				p.problems = []string{"Clipboard unavailable: " + err.Error()}
				return p, nil
			}
			p.flash = "Copied to clipboard."
		}
	}
	return p, nil
}

func (p apiKeyPage) View() string {
	var b strings.Builder
	b.WriteString(dimStyle.Render("  Integrations authenticate with this key. Generating a new one revokes the old one.") + "\n\n")
	switch {
	case p.busy:
		b.WriteString(dimStyle.Render("  generating...") + "\n")
	case p.key != "":
		b.WriteString("  " + inputPromptStyle.Render("> ") + accentStyle.Render(p.key) + "\n")
	default:
		b.WriteString("  " + inputPlaceholderStyle.Render("no key shown, press g to generate") + "\n")
	}
	if p.flash != "" {
		b.WriteString("\n  " + successStyle.Render(p.flash) + "\n")
	}
	b.WriteString("\n" + renderProblems(p.problems))
	return b.String()
}
