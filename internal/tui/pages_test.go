package tui

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/attendo/attendo/pkg/domain"
)

// seedHall creates an organization with one hall and returns both.
func seedHall(h *harness) (domain.Organization, domain.Hall) {
	org := h.api.AddOrganization(domain.Organization{OrganizationName: "Acme", OrganizationType: "Company"})
	hall := h.api.AddHall(domain.Hall{HallName: "Main", Capacity: 100, HallArea: 250, OrganizationID: org.OrganizationID})
	return org, hall
}

// openAttendance navigates organizations > Acme > halls > Main > session.
func openAttendance(t *testing.T, h *harness) App {
	t.Helper()
	a := h.app(t)
	for _, k := range []string{"enter", "h", "enter", "enter"} {
		a = press(t, a, k)
	}
	if _, ok := a.current().(attendancePage); !ok {
		t.Fatalf("current page = %T, want attendancePage", a.current())
	}
	return a
}

func TestAttendanceExportDisabledWithoutRecords(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	_, hall := seedHall(h)
	ses := h.api.AddSession(domain.Session{SessionName: "Standup", HallID: hall.ID})
	a := openAttendance(t, h)

	a = press(t, a, "x")

	csvPath := fmt.Sprintf("/Session/%d/csv/internal", ses.SessionID)
	if n := h.api.Count(http.MethodGet, csvPath); n != 0 {
		t.Errorf("export requests = %d, want 0", n)
	}
	if len(h.written) != 0 {
		t.Errorf("files written: %v", h.written)
	}
	p := a.current().(attendancePage)
	if p.exporting || p.canExport() {
		t.Error("export enabled with zero records")
	}
	if strings.Contains(p.Help(), "export") {
		t.Errorf("help offers export: %q", p.Help())
	}
}

func TestAttendanceExportWritesCSV(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	_, hall := seedHall(h)
	ses := h.api.AddSession(domain.Session{SessionName: "Standup", HallID: hall.ID})
	score := 0.91
	h.api.AddAttendance(ses.SessionID,
		domain.AttendanceRecord{UserID: "u1", FullName: "Ada Lovelace", UserName: "ada", VerificationType: domain.VerificationFace, MatchScore: &score},
	)
	a := openAttendance(t, h)

	p := a.current().(attendancePage)
	if len(p.records) != 1 {
		t.Fatalf("records = %d, want 1", len(p.records))
	}
	if !strings.Contains(a.View(), "Ada Lovelace") || !strings.Contains(a.View(), "0.91") {
		t.Errorf("view missing record:\n%s", a.View())
	}

	a = press(t, a, "x")

	want := "exports/attendance-" + fmt.Sprint(ses.SessionID) + ".csv"
	data, ok := h.written[want]
	if !ok {
		t.Fatalf("written = %v, want %s", h.written, want)
	}
	if !strings.Contains(string(data), "u1,Ada Lovelace,ada") {
		t.Errorf("csv = %q", data)
	}
	if p := a.current().(attendancePage); !strings.Contains(p.flash, want) {
		t.Errorf("flash = %q, want path", p.flash)
	}
}

func TestAPIKeyGenerateAndCopy(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	seedHall(h)
	a := h.app(t)
	a = press(t, a, "enter")
	a = press(t, a, "k")

	a = press(t, a, "c")
	if len(h.copied) != 0 {
		t.Fatal("copied before a key exists")
	}

	a = press(t, a, "g")
	p := a.current().(apiKeyPage)
	if !strings.HasPrefix(p.key, "atd_") {
		t.Fatalf("key = %q", p.key)
	}
	a = press(t, a, "c")
	if len(h.copied) != 1 || h.copied[0] != p.key {
		t.Errorf("copied = %q, want [%q]", h.copied, p.key)
	}
	if got := a.current().(apiKeyPage).flash; got != "Copied to clipboard." {
		t.Errorf("flash = %q", got)
	}
}

func TestCreateOrganizationForm(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	a := h.app(t)

	a = press(t, a, "n")
	for _, k := range []string{"Acme", "tab", "Company", "tab", "hr@acme.io", "enter"} {
		a = press(t, a, k)
	}

	list, ok := a.current().(orgListPage)
	if !ok {
		t.Fatalf("current page = %T, want orgListPage", a.current())
	}
	if list.flash != "Organization created." {
		t.Errorf("flash = %q", list.flash)
	}
	if len(list.orgs) != 1 || list.orgs[0].ContactEmail != "hr@acme.io" {
		t.Errorf("orgs = %+v", list.orgs)
	}
}

func TestBusinessFailureStaysOnForm(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.api.AddOrganization(domain.Organization{OrganizationName: "Acme"})
	a := h.app(t)

	a = press(t, a, "n")
	for _, k := range []string{"Acme", "tab", "Company", "tab", "hr@acme.io", "enter"} {
		a = press(t, a, k)
	}
	p, ok := a.current().(orgFormPage)
	if !ok {
		t.Fatalf("current page = %T, want orgFormPage", a.current())
	}
	if len(p.problems) != 1 || p.problems[0] != "Organization already exists" {
		t.Errorf("problems = %q", p.problems)
	}

	a = press(t, a, "x")
	if p := a.current().(orgFormPage); len(p.problems) != 0 {
		t.Errorf("problems survived an edit: %q", p.problems)
	}
}

func TestHallFormRejectsNonNumericCapacity(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	seedHall(h)
	a := h.app(t)
	a = press(t, a, "enter")
	a = press(t, a, "h")
	before := len(h.api.Requests())

	a = press(t, a, "n")
	for _, k := range []string{"Annex", "tab", "lots", "tab", "40", "enter"} {
		a = press(t, a, k)
	}
	p := a.current().(hallFormPage)
	if len(p.problems) != 1 || p.problems[0] != "capacity must be a whole number" {
		t.Errorf("problems = %q", p.problems)
	}
	if after := len(h.api.Requests()); after != before {
		t.Errorf("requests went from %d to %d", before, after)
	}
}

func TestHallCreateAndDelete(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	org, _ := seedHall(h)
	a := h.app(t)
	a = press(t, a, "enter")
	a = press(t, a, "h")

	a = press(t, a, "n")
	for _, k := range []string{"Annex", "tab", "40", "tab", "80.5", "enter"} {
		a = press(t, a, k)
	}
	list := a.current().(hallListPage)
	if len(list.halls) != 2 || list.flash != "Hall created." {
		t.Fatalf("halls = %+v flash = %q", list.halls, list.flash)
	}
	if list.halls[1].OrganizationID != org.OrganizationID || list.halls[1].HallArea != 80.5 {
		t.Errorf("hall = %+v", list.halls[1])
	}

	a = press(t, a, "j")
	a = press(t, a, "d")
	if _, ok := a.current().(confirmPage); !ok {
		t.Fatalf("current page = %T, want confirmPage", a.current())
	}
	a = press(t, a, "y")
	list = a.current().(hallListPage)
	if len(list.halls) != 1 || list.flash != "Hall deleted." {
		t.Errorf("halls = %+v flash = %q", list.halls, list.flash)
	}
}

func TestSessionCreateForm(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	_, hall := seedHall(h)
	a := h.app(t)
	for _, k := range []string{"enter", "h", "enter", "n"} {
		a = press(t, a, k)
	}
	if _, ok := a.current().(sessionFormPage); !ok {
		t.Fatalf("current page = %T, want sessionFormPage", a.current())
	}

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	keys := []string{
		"Standup", "tab",
		"l", "tab", // Location
		"30.0444", "tab",
		"31.2357", "tab",
		"75", "tab",
		"tab",
		"tab",
		start.Format(timeLayout), "tab",
		start.Add(time.Hour).Format(timeLayout), "enter",
	}
	for _, k := range keys {
		a = press(t, a, k)
	}

	list, ok := a.current().(sessionListPage)
	if !ok {
		t.Fatalf("current page = %T, want sessionListPage", a.current())
	}
	if len(list.sessions) != 1 {
		t.Fatalf("sessions = %+v", list.sessions)
	}
	s := list.sessions[0]
	if s.ConnectionType != domain.ConnectionLocation || s.HallID != hall.ID || s.AllowedRadius != 75 {
		t.Errorf("session = %+v", s)
	}
	if !s.StartAt.Equal(start) {
		t.Errorf("StartAt = %v, want %v", s.StartAt.Time, start)
	}
}

func TestSessionFormRejectsInvertedWindow(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	seedHall(h)
	a := h.app(t)
	for _, k := range []string{"enter", "h", "enter", "n"} {
		a = press(t, a, k)
	}
	before := len(h.api.Requests())

	keys := []string{
		"Late", "tab", "tab", "tab", "tab",
		"10", "tab", "tab", "tab",
		"2026-03-02 11:00", "tab",
		"2026-03-02 10:00", "enter",
	}
	for _, k := range keys {
		a = press(t, a, k)
	}
	p := a.current().(sessionFormPage)
	if len(p.problems) != 1 || p.problems[0] != "endAt must be after startAt" {
		t.Errorf("problems = %q", p.problems)
	}
	if after := len(h.api.Requests()); after != before {
		t.Errorf("requests went from %d to %d", before, after)
	}
}

func TestSessionFormRejectsInfiniteRadius(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	seedHall(h)
	a := h.app(t)
	for _, k := range []string{"enter", "h", "enter", "n"} {
		a = press(t, a, k)
	}
	before := len(h.api.Requests())

	start := time.Date(2026, 3, 2, 10, 0, 0, 0, time.Local)
	keys := []string{
		"Standup", "tab",
		"l", "tab",
		"30.0444", "tab",
		"31.2357", "tab",
		"Inf", "tab",
		"tab",
		"tab",
		start.Format(timeLayout), "tab",
		start.Add(time.Hour).Format(timeLayout), "enter",
	}
	for _, k := range keys {
		a = press(t, a, k)
	}
	p, ok := a.current().(sessionFormPage)
	if !ok {
		t.Fatalf("current page = %T, want sessionFormPage", a.current())
	}
	if len(p.problems) != 1 || p.problems[0] != "radius must be a number" {
		t.Errorf("problems = %q", p.problems)
	}
	if after := len(h.api.Requests()); after != before {
		t.Errorf("requests went from %d to %d", before, after)
	}
}

func TestOrganizationDetailStats(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	org := h.api.AddOrganization(domain.Organization{OrganizationName: "Acme"})
	h.api.AddMember(org.OrganizationID, domain.Member{FullName: "Ada", Role: domain.RoleAdmin})
	h.api.AddMember(org.OrganizationID, domain.Member{FullName: "Bob", Role: domain.RoleUser})
	a := h.app(t)
	a = press(t, a, "enter")

	p := a.current().(orgDetailPage)
	if p.pending != 0 {
		t.Errorf("pending = %d, want 0", p.pending)
	}
	if len(p.members) != 2 || p.admins() != 1 {
		t.Errorf("members = %+v", p.members)
	}
	view := a.View()
	for _, want := range []string{"2 members", "1 admins", "Ada", "Bob"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAddMember(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	h.api.AddOrganization(domain.Organization{OrganizationName: "Acme"})
	a := h.app(t)
	a = press(t, a, "enter")
	a = press(t, a, "a")

	keys := []string{"Bob Stone", "tab", "bob", "tab", "bob@acme.io", "tab", "secret1", "tab", "secret1", "tab", "l", "enter"}
	for _, k := range keys {
		a = press(t, a, k)
	}
	p, ok := a.current().(orgDetailPage)
	if !ok {
		t.Fatalf("current page = %T, want orgDetailPage", a.current())
	}
	if len(p.members) != 1 || p.members[0].Role != domain.RoleUser {
		t.Errorf("members = %+v", p.members)
	}
	if p.flash != "Member added." {
		t.Errorf("flash = %q", p.flash)
	}
}

func TestConfirmFailureKeepsDialogOpen(t *testing.T) {
	h := newHarness(t)
	h.login(t)
	_, hall := seedHall(h)
	a := h.app(t)
	a = press(t, a, "enter")
	a = press(t, a, "h")
	a = press(t, a, "d")
	h.api.Fail(http.MethodDelete, fmt.Sprintf("/Hall/%d", hall.ID), http.StatusNotFound,
		map[string]any{"success": false, "message": "Hall not found"})

	a = press(t, a, "y")
	p, ok := a.current().(confirmPage)
	if !ok {
		t.Fatalf("current page = %T, want confirmPage", a.current())
	}
	if len(p.problems) != 1 || p.problems[0] != "Hall not found" {
		t.Errorf("problems = %q", p.problems)
	}

	a = press(t, a, "n")
	if _, ok := a.current().(hallListPage); !ok {
		t.Errorf("current page = %T, want hallListPage", a.current())
	}
	if _, exists := h.api.Hall(hall.ID); !exists {
		t.Error("hall deleted despite the failure")
	}
}
