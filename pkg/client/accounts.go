package client

import (
	"context"
	"fmt"
	"net/http"
)

const accountPath = "/Account"

// LoginRequest is the payload for Login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the payload for Register.
type RegisterRequest struct {
	FullName        string `json:"fullName" validate:"required"`
	UserName        string `json:"userName" validate:"required"`
	Email           string `json:"email" validate:"required,email"`
	ConfirmEmail    string `json:"confirmEmail" validate:"required,eqfield=Email"`
	PhoneNumber     string `json:"phoneNumber" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=Admin User"`
}

// ForgotPasswordRequest asks the API to email a one-time password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest completes password recovery. The API verifies the OTP
// and sets the new password in one call.
type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

// VerifyOtpRequest is the wire name the API uses for ResetPasswordRequest.
type VerifyOtpRequest = ResetPasswordRequest

// AccountService covers registration, login, and password recovery.
type AccountService struct {
	c *Client
}

// Register creates an account. The returned data is a server message or id.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*Envelope[string], error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("client.Accounts.Register: %w", err)
	}
	env, err := callPublic[string](ctx, s.c, http.MethodPost, accountPath+"/Register", req)
	if err != nil {
		return nil, fmt.Errorf("client.Accounts.Register: %w", err)
	}
	return env, nil
}

// Login exchanges credentials for a bearer token. On success the token is
// written to the client's token store.
func (s *AccountService) Login(ctx context.Context, req LoginRequest) (*Envelope[string], error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("client.Accounts.Login: %w", err)
	}
	env, err := callPublic[string](ctx, s.c, http.MethodPost, accountPath+"/Login", req)
	if err != nil {
		return nil, fmt.Errorf("client.Accounts.Login: %w", err)
	}
	if env.Success && env.Data != "" {
		if err := s.c.tokens.Set(env.Data, s.c.tokenTTL); err != nil {
			return env, fmt.Errorf("client.Accounts.Login: store token: %w", err)
		}
	}
	return env, nil
}

// ForgotPassword sends a one-time password to email.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) (*Envelope[NoData], error) {
	req := ForgotPasswordRequest{Email: email}
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("client.Accounts.ForgotPassword: %w", err)
	}
	env, err := callPublic[NoData](ctx, s.c, http.MethodPost, accountPath+"/Forgot-Password", req)
	if err != nil {
		return nil, fmt.Errorf("client.Accounts.ForgotPassword: %w", err)
	}
	return env, nil
}

// ResetPassword verifies the OTP and sets a new password.
func (s *AccountService) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*Envelope[NoData], error) {
	if err := Validate(req); err != nil {
		return nil, fmt.Errorf("client.Accounts.ResetPassword: %w", err)
	}
	env, err := callPublic[NoData](ctx, s.c, http.MethodPost, accountPath+"/verify-rest-password-otp", req)
	if err != nil {
		return nil, fmt.Errorf("client.Accounts.ResetPassword: %w", err)
	}
	return env, nil
}

// Logout forgets the stored token. The API keeps no server-side session.
func (s *AccountService) Logout() error {
	if err := s.c.tokens.Clear(); err != nil {
		return fmt.Errorf("client.Accounts.Logout: %w", err)
	}
	return nil
}
