package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/sakif/citewall/internal/model"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

var testActor = model.Actor{ID: "user-123", Pseudo: "alice", Role: model.RoleUser}

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short")
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestGenerate(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(testActor)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned empty token")
	}
	if strings.Count(token, ".") != 2 {
		t.Errorf("token is not header.payload.signature: %q", token)
	}
}

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(testActor)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	actor, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if actor.ID != testActor.ID {
		t.Errorf("actor.ID = %q, want %q", actor.ID, testActor.ID)
	}
	if actor.Pseudo != "alice" {
		t.Errorf("actor.Pseudo = %q, want alice", actor.Pseudo)
	}
	if actor.Role != model.RoleUser {
		t.Errorf("actor.Role = %q, want %q", actor.Role, model.RoleUser)
	}
}

func TestValidate_Garbage(t *testing.T) {
	ts := newTestTokenService(t)

	if _, err := ts.Validate("not.a.token"); err == nil {
		t.Error("Validate() should reject a malformed token")
	}
	if _, err := ts.Validate(""); err == nil {
		t.Error("Validate() should reject an empty token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts := newTestTokenService(t)
	other, err := NewTokenService("a-completely-different-secret!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	token, err := ts.Generate(testActor)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := other.Validate(token); err == nil {
		t.Error("Validate() should reject a token signed with a different secret")
	}
}

func TestValidate_Expired(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.GenerateWithDuration(testActor, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateWithDuration() error = %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Error("Validate() should reject an expired token")
	}
}
