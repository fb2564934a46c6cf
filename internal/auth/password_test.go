package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("lj123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "lj123" {
		t.Fatal("hash must not equal the plaintext")
	}
	if err := VerifyPassword(hash, "lj123"); err != nil {
		t.Fatalf("VerifyPassword: %v", err)
	}
	if err := VerifyPassword(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error for wrong password")
	}
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("expected error for empty password")
	}
	if err := VerifyPassword("", "x"); err == nil {
		t.Fatal("expected error for empty hash")
	}
}
