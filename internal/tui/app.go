package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/attendo/attendo/pkg/client"
	"github.com/attendo/attendo/pkg/logger"
)

// Options configures the console.
type Options struct {
	Logger *logger.Logger
	// LoggedIn opens the console on the organizations list instead of login.
	LoggedIn bool
	// ExportDir is where CSV exports are written. Defaults to the working
	// directory.
	ExportDir string
	WebURL    string
	Now       func() time.Time
	// Clipboard replaces the system clipboard, for tests.
	Clipboard func(string) error
	// WriteFile replaces os.WriteFile for exports, for tests.
	WriteFile func(name string, data []byte) error
}

// App is the root Bubbletea model. It owns the page stack and routes every
// non-navigation message to the page on top.
type App struct {
	d        *deps
	stack    []page
	helpOpen bool
	width    int
	height   int
	frame    int // logo shimmer animation frame
}

// NewApp creates the console over c.
func NewApp(c *client.Client, opts Options) App {
	d := defaultDeps()
	d.client = c
	d.webURL = opts.WebURL
	if opts.Logger != nil {
		d.log = opts.Logger
	}
	if opts.Now != nil {
		d.now = opts.Now
	}
	if opts.Clipboard != nil {
		d.copy = opts.Clipboard
	}
	if opts.WriteFile != nil {
		d.writeFile = opts.WriteFile
	}
	if opts.ExportDir != "" {
		d.exportDir = opts.ExportDir
	}

	a := App{d: d}
	if opts.LoggedIn {
		a.stack = []page{newOrgListPage(d)}
	} else {
		a.stack = []page{newLoginPage(d)}
	}
	return a
}

func (a App) current() page {
	return a.stack[len(a.stack)-1]
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.current().Init(), shimmerTickCmd())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case pushMsg:
		a.stack = append(append([]page(nil), a.stack...), msg.p)
		return a, msg.p.Init()

	case backMsg:
		if len(a.stack) < 2 {
			return a, nil
		}
		stack := append([]page(nil), a.stack[:len(a.stack)-1]...)
		prev := stack[len(stack)-1].reload()
		if f, ok := prev.(flasher); ok && msg.flash != "" {
			prev = f.withFlash(msg.flash)
		}
		stack[len(stack)-1] = prev
		a.stack = stack
		return a, prev.Init()

	case resetMsg:
		a.stack = []page{msg.p}
		return a, msg.p.Init()

	case loggedInMsg:
		p := newOrgListPage(a.d)
		a.stack = []page{p}
		return a, p.Init()

	case logoutMsg:
		if err := a.d.client.Accounts.Logout(); err != nil {
			a.d.log.Error(context.Background(), "logout", err)
		}
		p := newLoginPage(a.d).withFlash("Logged out.")
		a.stack = []page{p}
		return a, p.Init()

	case SessionExpiredMsg:
		p := newLoginPage(a.d).withFlash("Your session expired. Log in again.")
		a.stack = []page{p}
		a.helpOpen = false
		return a, p.Init()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			switch msg.String() {
			case "?", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			}
			return a, nil
		}
		if !a.current().editing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "?":
				a.helpOpen = true
				return a, nil
			}
		}
		if msg.String() == "ctrl+l" && a.loggedIn() {
			return a, func() tea.Msg { return logoutMsg{} }
		}
	}

	next, cmd := a.current().Update(msg)
	stack := append([]page(nil), a.stack...)
	stack[len(stack)-1] = next
	a.stack = stack
	return a, cmd
}

// loggedIn reports whether the stack holds a signed-in page.
func (a App) loggedIn() bool {
	switch a.stack[0].(type) {
	case loginPage, registerPage, forgotPasswordPage, verifyOtpPage, resetPasswordPage:
		return false
	}
	return true
}

func (a App) View() string {
	logo := renderShimmerLogo(a.frame)
	logoPad := (a.width - lipgloss.Width(logo)) / 2
	if logoPad < 0 {
		logoPad = 0
	}
	header := strings.Repeat(" ", logoPad) + logo

	titles := make([]string, 0, len(a.stack))
	for _, p := range a.stack {
		titles = append(titles, p.Title())
	}
	crumbs := " " + dimStyle.Render(strings.Join(titles[:len(titles)-1], " › "))
	if len(titles) > 1 {
		crumbs += dimStyle.Render(" › ")
	}
	crumbs += selectedStyle.Render(titles[len(titles)-1])

	body := a.current().View()
	quit := helpEntry("q", "quit")
	if a.current().editing() {
		quit = helpEntry("ctrl+c", "quit")
	}
	help := a.current().Help() + "  " + helpEntry("?", "help") + "  " + quit
	if a.helpOpen {
		body = helpView(a.d.webURL)
		help = helpLine("esc", "close", "q", "quit")
	}

	// Chrome: header(1) + crumbs(1) + blank(1) + help(1)
	const chrome = 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	return header + "\n" + crumbs + "\n\n" + body + "\n" + help
}
