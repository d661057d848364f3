package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMFARequired        = errors.New("mfa code required")
	ErrMFAInvalid         = errors.New("invalid mfa code")
)

// Service authenticates the single configured payroll administrator.
type Service struct {
	Secret       string
	TTL          time.Duration
	AdminEmail   string
	PasswordHash string
	TOTPSecret   string
}

type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
}

// Login checks the credentials and, when a TOTP secret is configured, the
// six digit code, then issues a bearer token.
func (s *Service) Login(email, password, mfaCode string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	want := strings.ToLower(strings.TrimSpace(s.AdminEmail))
	if want == "" || subtle.ConstantTimeCompare([]byte(email), []byte(want)) != 1 {
		return Session{}, ErrInvalidCredentials
	}
	if err := CheckPassword(s.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if s.TOTPSecret != "" {
		code := strings.TrimSpace(mfaCode)
		if code == "" {
			return Session{}, ErrMFARequired
		}
		if !totp.Validate(code, s.TOTPSecret) {
			return Session{}, ErrMFAInvalid
		}
	}

	token, err := GenerateToken(s.Secret, Claims{Email: want, Role: RoleAdmin}, s.TTL)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: time.Now().Add(s.TTL).UTC(), Email: want, Role: RoleAdmin}, nil
}

// Verify parses a bearer token into the caller it was issued to.
func (s *Service) Verify(token string) (UserContext, error) {
	claims, err := ParseToken(s.Secret, token)
	if err != nil {
		return UserContext{}, err
	}
	return UserContext{Email: claims.Email, Role: claims.Role}, nil
}
