package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if err := CheckPassword(hash, "super-secret"); err != nil {
		t.Fatalf("expected password to match, got %v", err)
	}

	if err := CheckPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	token, err := GenerateToken(secret, Claims{Email: "admin@example.com", Role: RoleAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if parsed.Email != "admin@example.com" || parsed.Role != RoleAdmin || parsed.Subject != "admin@example.com" {
		t.Fatalf("claims mismatch: %+v", parsed)
	}

	if _, err := ParseToken("other-secret", token); err == nil {
		t.Fatal("expected signature error")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	token, err := GenerateToken("s", Claims{Email: "a@b.c"}, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	if _, err := ParseToken("s", token); err == nil {
		t.Fatal("expected expired token error")
	}
}

func newService(t *testing.T) *Service {
	t.Helper()
	hash, err := HashPassword("pa55word")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	return &Service{Secret: "secret", TTL: time.Hour, AdminEmail: "Admin@Example.com", PasswordHash: hash}
}

func TestLogin(t *testing.T) {
	svc := newService(t)

	session, err := svc.Login(" admin@example.com ", "pa55word", "")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	user, err := svc.Verify(session.Token)
	if err != nil {
		t.Fatalf("verify error: %v", err)
	}
	if user.Email != "admin@example.com" || user.Role != RoleAdmin {
		t.Fatalf("unexpected user %+v", user)
	}

	if _, err := svc.Login("admin@example.com", "nope", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login("someone@example.com", "pa55word", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestLoginWithTOTP(t *testing.T) {
	svc := newService(t)
	key, err := totp.Generate(totp.GenerateOpts{Issuer: "Payroll", AccountName: "admin@example.com"})
	if err != nil {
		t.Fatalf("totp generate: %v", err)
	}
	svc.TOTPSecret = key.Secret()

	if _, err := svc.Login("admin@example.com", "pa55word", ""); !errors.Is(err, ErrMFARequired) {
		t.Fatalf("expected mfa required, got %v", err)
	}
	if _, err := svc.Login("admin@example.com", "pa55word", "000000x"); !errors.Is(err, ErrMFAInvalid) {
		t.Fatalf("expected mfa invalid, got %v", err)
	}
	code, err := totp.GenerateCode(key.Secret(), time.Now())
	if err != nil {
		t.Fatalf("totp code: %v", err)
	}
	if _, err := svc.Login("admin@example.com", "pa55word", code); err != nil {
		t.Fatalf("expected login with code, got %v", err)
	}
}
