package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/attendo/attendo/internal/browser"
	"github.com/attendo/attendo/internal/tui"
	"github.com/attendo/attendo/pkg/client"
	"github.com/attendo/attendo/pkg/config"
	"github.com/attendo/attendo/pkg/credential"
	"github.com/attendo/attendo/pkg/logger"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

var (
	readPasswordFunc = term.ReadPassword // mockable
	isTerminalFunc   = term.IsTerminal
	openBrowserFunc  = browser.Open
)

func main() {
	cli := &commandLine{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
	if err := cli.run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type commandLine struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (cli *commandLine) run(args []string) error {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "version", "-v":
			fmt.Fprintln(cli.stdout, "attendo "+version)
			return nil
		case "help", "--help", "-h":
			printHelp(cli.stdout)
			return nil
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return cli.runConsole(cfg)
	}
	switch args[0] {
	case "login":
		return cli.runLogin(cfg)
	case "logout":
		return cli.runLogout(cfg)
	case "status":
		return cli.runStatus(cfg)
	case "export":
		return cli.runExport(cfg, args[1:])
	case "web":
		return cli.runWeb(cfg)
	default:
		printHelp(cli.stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// openStore returns the credential store. ATTENDO_TOKEN replaces the stored
// credential with a memory-only one.
func openStore(cfg *config.Config) (*credential.Store, error) {
	if cfg.Token != "" {
		s := credential.NewMemory()
		if err := s.Set(cfg.Token, cfg.TokenTTL); err != nil {
			return nil, err
		}
		return s, nil
	}
	return credential.Open(cfg.CredentialsPath())
}

func newLogger(cfg *config.Config, out io.Writer) *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "attendo",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
		Output:      out,
	})
}

func newClient(cfg *config.Config, store *credential.Store, log *logger.Logger, opts ...client.Option) *client.Client {
	opts = append([]client.Option{
		client.WithLogger(log),
		client.WithTimeout(cfg.HTTPTimeout),
		client.WithTokenTTL(cfg.TokenTTL),
	}, opts...)
	return client.New(cfg.APIURL, store, opts...)
}

func (cli *commandLine) runConsole(cfg *config.Config) error {
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		return fmt.Errorf("create %s: %w", cfg.Home, err)
	}
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close() //nolint:errcheck

	log := newLogger(cfg, logFile)
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	// The 401 handler fires from a command goroutine once the program runs.
	var prog atomic.Pointer[tea.Program]
	c := newClient(cfg, store, log, client.WithUnauthorizedHandler(func() {
		if p := prog.Load(); p != nil {
			p.Send(tui.SessionExpiredMsg{})
		}
	}))

	app := tui.NewApp(c, tui.Options{
		Logger:   log,
		LoggedIn: store.IsActive(),
		WebURL:   cfg.WebURL,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())
	prog.Store(p)
	log.Info(context.Background(), "console started")
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func (cli *commandLine) runLogin(cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	c := newClient(cfg, store, newLogger(cfg, cli.stderr))

	in := bufio.NewReader(cli.stdin)
	fmt.Fprint(cli.stdout, "Email: ")
	email, err := readLine(in)
	if err != nil {
		return fmt.Errorf("read email: %w", err)
	}
	fmt.Fprint(cli.stdout, "Password: ")
	password, err := cli.readPassword(in)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout)
	defer cancel()
	env, err := c.Accounts.Login(ctx, client.LoginRequest{Email: email, Password: password})
	if problems := client.Problems(env, err, "Login failed"); len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintln(cli.stderr, "  "+p)
		}
		return errors.New("login failed")
	}

	fmt.Fprintf(cli.stdout, "Logged in as %s. Session valid until %s.\n",
		email, store.ExpiresAt().Local().Format("2006-01-02 15:04"))
	if cfg.Token != "" {
		fmt.Fprintln(cli.stdout, "ATTENDO_TOKEN is set, so this session was not saved.")
	}
	return nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func (cli *commandLine) readPassword(in *bufio.Reader) (string, error) {
	if f, ok := cli.stdin.(*os.File); ok && isTerminalFunc(int(f.Fd())) {
		pwd, err := readPasswordFunc(int(f.Fd()))
		fmt.Fprintln(cli.stdout)
		return string(pwd), err
	}
	return readLine(in)
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (cli *commandLine) runLogout(cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if !store.IsActive() {
		fmt.Fprintln(cli.stdout, "Already logged out.")
		return store.Clear()
	}
	c := newClient(cfg, store, newLogger(cfg, cli.stderr))
	if err := c.Accounts.Logout(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Fprintln(cli.stdout, "Logged out.")
	return nil
}

func (cli *commandLine) runStatus(cfg *config.Config) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.stdout, "API      %s\n", cfg.APIURL)
	switch {
	case cfg.Token != "":
		fmt.Fprintln(cli.stdout, "Session  from ATTENDO_TOKEN")
	case store.IsActive():
		fmt.Fprintf(cli.stdout, "Session  active until %s\n", store.ExpiresAt().Local().Format("2006-01-02 15:04"))
	default:
		fmt.Fprintln(cli.stdout, "Session  none (run: attendo login)")
	}
	return nil
}

func (cli *commandLine) runExport(cfg *config.Config, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.New("usage: attendo export <session-id> [dir]")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || id <= 0 {
		return fmt.Errorf("invalid session id %q", args[0])
	}
	dir := "."
	if len(args) == 2 {
		dir = args[1]
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if !store.IsActive() {
		return errors.New("not logged in (run: attendo login)")
	}
	c := newClient(cfg, store, newLogger(cfg, cli.stderr))

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPTimeout+5*time.Second)
	defer cancel()
	env, err := c.Sessions.AttendanceInternal(ctx, id)
	if err == nil {
		err = env.Err()
	}
	if err != nil {
		return exportError(err)
	}
	if len(env.Data) == 0 {
		return errNothingToExport
	}
	data, err := c.Sessions.ExportAttendanceCSVInternal(ctx, id)
	if err != nil {
		return exportError(err)
	}
	path := filepath.Join(dir, client.CSVFileName(id))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cli.stdout, "Saved %s (%d bytes)\n", path, len(data))
	return nil
}

var errNothingToExport = errors.New("session has no attendance records; nothing to export")

func exportError(err error) error {
	if errors.Is(err, client.ErrUnauthorized) {
		return errors.New("session expired (run: attendo login)")
	}
	return fmt.Errorf("export: %w", err)
}

func (cli *commandLine) runWeb(cfg *config.Config) error {
	if err := openBrowserFunc(cfg.WebURL); err != nil {
		fmt.Fprintln(cli.stdout, cfg.WebURL)
	}
	return nil
}
