package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/attendo/attendo/pkg/client"
	"github.com/attendo/attendo/pkg/logger"
)

// page is one screen of the console. Pages are values; Update returns the
// next value.
type page interface {
	Init() tea.Cmd
	Update(tea.Msg) (page, tea.Cmd)
	View() string
	Help() string
	Title() string
	// editing reports whether keystrokes belong to a text field, which
	// suspends the single-letter global keys.
	editing() bool
	// reload builds a fresh instance with the same parameters. Results
	// addressed to the old instance are then dropped.
	reload() page
}

// deps is what every page shares.
type deps struct {
	client    *client.Client
	log       *logger.Logger
	now       func() time.Time
	copy      func(string) error
	writeFile func(name string, data []byte) error
	exportDir string
	webURL    string
}

func (d *deps) exportPath(sessionID int) string {
	return filepath.Join(d.exportDir, client.CSVFileName(sessionID))
}

// problems derives the messages shown under a form and logs failures the
// user cannot act on.
func (d *deps) problems(op string, res client.Outcome, err error, fallback string) []string {
	if err != nil && !errors.Is(err, client.ErrUnauthorized) {
		var ve *client.ValidationError
		var he *client.HTTPError
		if !errors.As(err, &ve) && !errors.As(err, &he) {
			d.log.Error(d.log.WithField(context.Background(), "op", op), "console request failed", err)
		}
	}
	return client.Problems(res, err, fallback)
}

var lastSeq atomic.Uint64

// nextSeq returns a sequence number unique to one page instance.
func nextSeq() uint64 {
	return lastSeq.Add(1)
}

// resultMsg carries the outcome of one client call back to the page
// instance that issued it.
type resultMsg[T any] struct {
	seq uint64
	op  string
	env *client.Envelope[T]
	err error
}

// call runs fn on a command goroutine and reports the result to page seq.
func call[T any](seq uint64, op string, fn func(context.Context) (*client.Envelope[T], error)) tea.Cmd {
	return func() tea.Msg {
		env, err := fn(context.Background())
		return resultMsg[T]{seq: seq, op: op, env: env, err: err}
	}
}

// ok reports whether a result carries a successful envelope.
func (r resultMsg[T]) ok() bool {
	return r.err == nil && r.env != nil && r.env.Success
}

// Navigation messages handled by App.
type (
	pushMsg  struct{ p page }
	backMsg  struct{ flash string }
	resetMsg struct{ p page }
	// loggedInMsg switches to the organizations list.
	loggedInMsg struct{}
	logoutMsg   struct{}
)

// SessionExpiredMsg tells the console the API rejected the stored credential.
// The client's unauthorized handler sends it.
type SessionExpiredMsg struct{}

func push(p page) tea.Cmd {
	return func() tea.Msg { return pushMsg{p: p} }
}

// back pops the current page and reloads the one below it, optionally
// showing flash there.
func back(flash string) tea.Cmd {
	return func() tea.Msg { return backMsg{flash: flash} }
}

func reset(p page) tea.Cmd {
	return func() tea.Msg { return resetMsg{p: p} }
}

// flasher is implemented by pages that can show a one-line status after
// navigation.
type flasher interface {
	withFlash(string) page
}

func defaultDeps() *deps {
	return &deps{
		log:       logger.Nop(),
		now:       time.Now,
		copy:      clipboard.WriteAll,
		writeFile: func(name string, data []byte) error { return os.WriteFile(name, data, 0o644) },
		exportDir: ".",
	}
}
