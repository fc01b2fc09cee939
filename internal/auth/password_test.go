package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceForTest(4)

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if !ps.Verify(hash, "correct horse battery staple") {
		t.Error("Verify() rejected the correct password")
	}
	if ps.Verify(hash, "wrong password") {
		t.Error("Verify() accepted a wrong password")
	}
}

func TestHash_Salted(t *testing.T) {
	ps := NewPasswordServiceForTest(4)

	h1, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("same password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestHash_Rejections(t *testing.T) {
	ps := NewPasswordServiceForTest(4)

	if _, err := ps.Hash(""); err == nil {
		t.Error("Hash() should reject an empty password")
	}
	if _, err := ps.Hash(strings.Repeat("x", 73)); err == nil {
		t.Error("Hash() should reject passwords over 72 bytes")
	}
}

func TestVerify_EmptyHash(t *testing.T) {
	ps := NewPasswordServiceForTest(4)

	if ps.Verify("", "anything") {
		t.Error("Verify() accepted an empty hash")
	}
}
