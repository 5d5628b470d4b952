package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var commands = []struct{ cmd, desc string }{
	{"attendo", "Open the admin console"},
	{"attendo login", "Log in with email and password"},
	{"attendo logout", "Forget the stored session"},
	{"attendo status", "Show the API and session in use"},
	{"attendo export <id> [dir]", "Save a session's attendance as CSV"},
	{"attendo web", "Open the web dashboard"},
	{"attendo version", "Show version"},
	{"attendo help", "You are here"},
}

var environment = []struct{ name, desc string }{
	{"ATTENDO_API_URL", "API base URL"},
	{"ATTENDO_HOME", "Where the session and log live (~/.attendo)"},
	{"ATTENDO_TOKEN", "Use this token instead of the stored session"},
	{"ATTENDO_LOG_LEVEL", "debug, info, warn or error"},
}

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#38bdf8")).
		Bold(true).
		Render("A T T E N D O")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Organizations, halls, sessions and who showed up.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprintf(w, "\n  Environment:\n")
	for _, e := range environment {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-26s", e.name)), descStyle.Render(e.desc))
	}
	fmt.Fprintln(w)
}
