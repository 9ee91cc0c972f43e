package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestHashAndCheckSecret(t *testing.T) {
	hash, err := HashSecret("super-secret")
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}

	if err := CheckSecret(hash, "super-secret"); err != nil {
		t.Fatalf("expected secret to match, got %v", err)
	}

	if err := CheckSecret(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	secret := "test-secret"
	claims := Claims{ClientID: "payroll-ui", Scopes: DefaultScopes}

	token, err := GenerateToken(secret, claims, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	parsed, err := ParseToken(secret, token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if parsed.ClientID != "payroll-ui" || parsed.Subject != "payroll-ui" {
		t.Fatalf("claims mismatch: %+v", parsed)
	}
	principal := Principal{ClientID: parsed.ClientID, Scopes: parsed.Scopes}
	if !principal.HasScope(ScopePayrollWrite) {
		t.Fatalf("expected write scope, got %v", parsed.Scopes)
	}
}

func TestParseTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	token, _ := GenerateToken("one", Claims{ClientID: "c"}, time.Hour)
	if _, err := ParseToken("two", token); err == nil {
		t.Fatal("expected signature error")
	}

	expired, _ := GenerateToken("one", Claims{ClientID: "c"}, -time.Minute)
	if _, err := ParseToken("one", expired); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestCheckTOTP(t *testing.T) {
	const secret = "JBSWY3DPEHPK3PXP"
	if err := CheckTOTP("", ""); err != nil {
		t.Fatalf("expected disabled check to pass, got %v", err)
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if err := CheckTOTP(secret, code); err != nil {
		t.Fatalf("expected valid code, got %v", err)
	}
	if err := CheckTOTP(secret, ""); !errors.Is(err, ErrInvalidMFACode) {
		t.Fatalf("expected ErrInvalidMFACode, got %v", err)
	}
}
