package tui

import (
	"strings"
	"testing"
)

func TestRoleStyleKnownRole(t *testing.T) {
	for _, role := range []string{"Admin", "User"} {
		t.Run(role, func(t *testing.T) {
			style := roleStyle(role)
			if !style.GetBold() {
				t.Errorf("roleStyle(%q) is not bold", role)
			}
			want := roleColors[role]
			if got := style.GetForeground(); got != want {
				t.Errorf("roleStyle(%q) foreground = %v, want %v", role, got, want)
			}
		})
	}
}

func TestRoleStyleUnknownRoleFallback(t *testing.T) {
	style := roleStyle("Owner")
	if !style.GetBold() {
		t.Error("roleStyle fallback is not bold")
	}
	if got := style.Render("Owner"); !strings.Contains(got, "Owner") {
		t.Errorf("roleStyle fallback did not render content: %q", got)
	}
}

func TestScoreStyleBands(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.95, "success"},
		{0.8, "success"},
		{0.7, "gold"},
		{0.6, "gold"},
		{0.59, "reject"},
		{0, "reject"},
	}
	styles := map[string]any{
		"success": successStyle.GetForeground(),
		"gold":    goldStyle.GetForeground(),
		"reject":  rejectStyle.GetForeground(),
	}
	for _, tc := range tests {
		got := scoreStyle(tc.score).GetForeground()
		if got != styles[tc.want] {
			t.Errorf("scoreStyle(%v) foreground = %v, want %s", tc.score, got, tc.want)
		}
	}
}

func TestHelpEntryFormat(t *testing.T) {
	result := helpEntry("q", "quit")
	if !strings.Contains(result, "q") {
		t.Errorf("helpEntry('q','quit') does not contain key 'q': %q", result)
	}
	if !strings.Contains(result, "quit") {
		t.Errorf("helpEntry('q','quit') does not contain label 'quit': %q", result)
	}
}

func TestHelpLineJoinsPairs(t *testing.T) {
	line := helpLine("j/k", "move", "enter", "open", "dangling")
	for _, want := range []string{"j/k", "move", "enter", "open"} {
		if !strings.Contains(line, want) {
			t.Errorf("helpLine missing %q: %q", want, line)
		}
	}
	if strings.Contains(line, "dangling") {
		t.Errorf("helpLine rendered an unpaired key: %q", line)
	}
}

func TestRenderProblems(t *testing.T) {
	if got := renderProblems(nil); got != "" {
		t.Errorf("renderProblems(nil) = %q, want empty", got)
	}
	got := renderProblems([]string{"hallName is required", "capacity must be greater than 0"})
	if n := strings.Count(got, "\n"); n != 2 {
		t.Errorf("renderProblems rendered %d lines, want 2", n)
	}
	if !strings.Contains(got, "hallName is required") || !strings.Contains(got, "capacity must be greater than 0") {
		t.Errorf("renderProblems dropped a message: %q", got)
	}
}

func TestRenderShimmerLogoSpellsName(t *testing.T) {
	for _, frame := range []int{0, 17, 500} {
		logo := renderShimmerLogo(frame)
		for _, r := range "ATTENDO" {
			if !strings.ContainsRune(logo, r) {
				t.Errorf("frame %d: logo missing %q", frame, r)
			}
		}
	}
}

func TestClampByte(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-4, 0},
		{0, 0},
		{127.9, 127},
		{255, 255},
		{300, 255},
	}
	for _, tc := range tests {
		if got := clampByte(tc.in); got != tc.want {
			t.Errorf("clampByte(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHelpViewListsWebURL(t *testing.T) {
	view := helpView("https://app.attendo.io")
	if !strings.Contains(view, "https://app.attendo.io") {
		t.Error("help view does not show the web URL")
	}
	if strings.Contains(helpView(""), "Web") {
		t.Error("help view shows a Web section without a URL")
	}
}
