package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/attendo/attendo/pkg/client"
	"github.com/attendo/attendo/pkg/domain"
)

// --- login ---

type loginPage struct {
	d        *deps
	seq      uint64
	form     form
	problems []string
	flash    string
	busy     bool
}

func newLoginPage(d *deps) loginPage {
	return loginPage{
		d:   d,
		seq: nextSeq(),
		form: newForm(
			textField("email", "email"),
			secretField("password", "password"),
		),
	}
}

func (p loginPage) withFlash(s string) page { p.flash = s; return p }
func (p loginPage) reload() page            { return newLoginPage(p.d) }
func (p loginPage) Title() string           { return "Log in" }
func (p loginPage) editing() bool           { return true }
func (p loginPage) Init() tea.Cmd           { return nil }

func (p loginPage) Help() string {
	return helpLine("enter", "next/submit", "ctrl+n", "register", "ctrl+f", "forgot password")
}

func (p loginPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[string]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if msg.ok() && msg.env.Data != "" {
			return p, func() tea.Msg { return loggedInMsg{} }
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Login failed")
		if len(p.problems) == 0 {
			p.problems = []string{"Login failed"}
		}
		return p, nil

	case tea.KeyMsg:
		if p.busy {
			return p, nil
		}
		switch msg.String() {
		case "esc":
			p.problems = nil
			return p, nil
		case "ctrl+n":
			return p, push(newRegisterPage(p.d))
		case "ctrl+f":
			return p, push(newForgotPasswordPage(p.d, p.form.trimmed("email")))
		}
		p.problems = nil
		p.flash = ""
		var submit bool
		p.form, submit = p.form.update(msg)
		if submit {
			return p.submit()
		}
	}
	return p, nil
}

func (p loginPage) submit() (page, tea.Cmd) {
	req := client.LoginRequest{Email: p.form.trimmed("email"), Password: p.form.value("password")}
	p.busy = true
	accounts := p.d.client.Accounts
	return p, call(p.seq, "login", func(ctx context.Context) (*client.Envelope[string], error) {
		return accounts.Login(ctx, req)
	})
}

func (p loginPage) View() string {
	body := p.form.View() + "\n"
	switch {
	case p.busy:
		body += dimStyle.Render("  logging in...") + "\n"
	case p.flash != "":
		body += "  " + successStyle.Render(p.flash) + "\n"
	}
	return body + renderProblems(p.problems)
}

// --- register ---

type registerPage struct {
	d        *deps
	seq      uint64
	form     form
	problems []string
	busy     bool
}

func newRegisterPage(d *deps) registerPage {
	return registerPage{
		d:   d,
		seq: nextSeq(),
		form: newForm(
			textField("fullName", "full name"),
			textField("userName", "username"),
			textField("email", "email"),
			textField("confirmEmail", "confirm email"),
			textField("phoneNumber", "phone"),
			secretField("password", "password"),
			secretField("confirmPassword", "confirm password"),
			choiceField("role", "role", domain.Roles),
		),
	}
}

func (p registerPage) reload() page  { return newRegisterPage(p.d) }
func (p registerPage) Title() string { return "Register" }
func (p registerPage) editing() bool { return true }
func (p registerPage) Init() tea.Cmd { return nil }

func (p registerPage) Help() string {
	return helpLine("tab", "next", "ctrl+s", "create account", "esc", "back")
}

func (p registerPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[string]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if msg.ok() {
			return p, back("Account created. Log in to continue.")
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Registration failed")
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

func (p registerPage) submit() (page, tea.Cmd) {
	f := p.form
	req := client.RegisterRequest{
		FullName:        f.trimmed("fullName"),
		UserName:        f.trimmed("userName"),
		Email:           f.trimmed("email"),
		ConfirmEmail:    f.trimmed("confirmEmail"),
		PhoneNumber:     f.trimmed("phoneNumber"),
		Password:        f.value("password"),
		ConfirmPassword: f.value("confirmPassword"),
		Role:            f.value("role"),
	}
	p.busy = true
	accounts := p.d.client.Accounts
	return p, call(p.seq, "register", func(ctx context.Context) (*client.Envelope[string], error) {
		return accounts.Register(ctx, req)
	})
}

func (p registerPage) View() string {
	body := p.form.View() + "\n"
	if p.busy {
		body += dimStyle.Render("  creating account...") + "\n"
	}
	return body + renderProblems(p.problems)
}

// --- password recovery ---

// recoveryFlow is the state carried from the forgot-password step through
// OTP entry to the reset. It lives only in the pages of the flow and is
// dropped when the flow ends.
type recoveryFlow struct {
	email string
	otp   string
}

type forgotPasswordPage struct {
	d        *deps
	seq      uint64
	form     form
	problems []string
	busy     bool
}

func newForgotPasswordPage(d *deps, email string) forgotPasswordPage {
	return forgotPasswordPage{
		d:    d,
		seq:  nextSeq(),
		form: newForm(textField("email", "email")).set("email", email),
	}
}

func (p forgotPasswordPage) reload() page {
	return newForgotPasswordPage(p.d, p.form.trimmed("email"))
}
func (p forgotPasswordPage) Title() string { return "Forgot password" }
func (p forgotPasswordPage) editing() bool { return true }
func (p forgotPasswordPage) Init() tea.Cmd { return nil }
func (p forgotPasswordPage) Help() string {
	return helpLine("enter", "send code", "esc", "back")
}

func (p forgotPasswordPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[client.NoData]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if msg.ok() {
			flow := recoveryFlow{email: p.form.trimmed("email")}
			return p, push(newVerifyOtpPage(p.d, flow))
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Could not send the code")
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
			p.busy = true
			email := p.form.trimmed("email")
			accounts := p.d.client.Accounts
			return p, call(p.seq, "forgot-password", func(ctx context.Context) (*client.Envelope[client.NoData], error) {
				return accounts.ForgotPassword(ctx, email)
			})
		}
	}
	return p, nil
}

func (p forgotPasswordPage) View() string {
	body := dimStyle.Render("  We will email you a one-time code.") + "\n\n" + p.form.View() + "\n"
	if p.busy {
		body += dimStyle.Render("  sending...") + "\n"
	}
	return body + renderProblems(p.problems)
}

type verifyOtpPage struct {
	d        *deps
	flow     recoveryFlow
	form     form
	problems []string
}

func newVerifyOtpPage(d *deps, flow recoveryFlow) verifyOtpPage {
	return verifyOtpPage{d: d, flow: flow, form: newForm(textField("otp", "code"))}
}

func (p verifyOtpPage) reload() page  { return newVerifyOtpPage(p.d, p.flow) }
func (p verifyOtpPage) Title() string { return "Verify code" }
func (p verifyOtpPage) editing() bool { return true }
func (p verifyOtpPage) Init() tea.Cmd { return nil }
func (p verifyOtpPage) Help() string {
	return helpLine("enter", "continue", "esc", "back")
}

func (p verifyOtpPage) Update(msg tea.Msg) (page, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if !isKey {
		return p, nil
	}
	if key.String() == "esc" {
		if len(p.problems) > 0 {
			p.problems = nil
			return p, nil
		}
		return p, back("")
	}
	p.problems = nil
	var submit bool
	p.form, submit = p.form.update(key)
	if !submit {
		return p, nil
	}
	otp := p.form.trimmed("otp")
	if otp == "" {
		p.problems = []string{"code is required"}
		return p, nil
	}
	flow := p.flow
	flow.otp = otp
	return p, push(newResetPasswordPage(p.d, flow))
}

func (p verifyOtpPage) View() string {
	return dimStyle.Render("  Enter the code sent to "+p.flow.email+".") + "\n\n" +
		p.form.View() + "\n" + renderProblems(p.problems)
}

type resetPasswordPage struct {
	d        *deps
	seq      uint64
	flow     recoveryFlow
	form     form
	problems []string
	busy     bool
}

func newResetPasswordPage(d *deps, flow recoveryFlow) resetPasswordPage {
	return resetPasswordPage{
		d:    d,
		seq:  nextSeq(),
		flow: flow,
		form: newForm(
			secretField("newPassword", "new password"),
			secretField("confirmPassword", "confirm password"),
		),
	}
}

func (p resetPasswordPage) reload() page  { return newResetPasswordPage(p.d, p.flow) }
func (p resetPasswordPage) Title() string { return "New password" }
func (p resetPasswordPage) editing() bool { return true }
func (p resetPasswordPage) Init() tea.Cmd { return nil }
func (p resetPasswordPage) Help() string {
	return helpLine("tab", "next", "enter", "reset password", "esc", "back")
}

func (p resetPasswordPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case resultMsg[client.NoData]:
		if msg.seq != p.seq {
			return p, nil
		}
		p.busy = false
		if msg.ok() {
			return p, reset(newLoginPage(p.d).withFlash("Password updated. Log in with your new password."))
		}
		p.problems = p.d.problems(msg.op, msg.env, msg.err, "Could not reset the password")
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

func (p resetPasswordPage) submit() (page, tea.Cmd) {
	if p.form.value("newPassword") != p.form.value("confirmPassword") {
		p.problems = []string{"confirm password must match new password"}
		return p, nil
	}
	req := client.ResetPasswordRequest{
		Email:       p.flow.email,
		OTP:         p.flow.otp,
		NewPassword: p.form.value("newPassword"),
	}
	p.busy = true
	accounts := p.d.client.Accounts
	return p, call(p.seq, "reset-password", func(ctx context.Context) (*client.Envelope[client.NoData], error) {
		return accounts.ResetPassword(ctx, req)
	})
}

func (p resetPasswordPage) View() string {
	body := p.form.View() + "\n"
	if p.busy {
		body += dimStyle.Render("  saving...") + "\n"
	}
	return body + renderProblems(p.problems)
}
