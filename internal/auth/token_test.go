package auth

import (
	"strings"
	"testing"
	"time"
)

func newTestTokens(t *testing.T, opts ...TokenOption) *Tokens {
	t.Helper()
	tokens, err := NewTokens("test-secret", opts...)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	return tokens
}

func TestNewTokensRequiresSecret(t *testing.T) {
	if _, err := NewTokens(""); err != ErrMissingSecret {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}
	if _, err := NewTokens("   "); err != ErrMissingSecret {
		t.Fatalf("expected ErrMissingSecret for blank secret, got %v", err)
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	tokens := newTestTokens(t)

	identity := Identity{
		UserID:   "659c83c57198563257d12dfa",
		Username: "leroyjenkins",
		Email:    "lj@lj.com",
		Age:      24,
		Admin:    false,
	}
	token, expiresAt, err := tokens.Issue(identity)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if got := time.Until(expiresAt); got < 71*time.Hour || got > 73*time.Hour {
		t.Fatalf("expected ~72h expiry, got %v", got)
	}

	recovered, err := tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if recovered != identity {
		t.Fatalf("claim not preserved: got %+v want %+v", recovered, identity)
	}
}

func TestVerifyExpiry(t *testing.T) {
	issued := time.Now().UTC()
	tokens := newTestTokens(t, WithClock(func() time.Time { return issued }))

	token, _, err := tokens.Issue(Identity{UserID: "user-1", Username: "u"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	cases := map[string]struct {
		at    time.Time
		valid bool
	}{
		"just issued":    {issued.Add(time.Second), true},
		"almost expired": {issued.Add(TokenTTL - time.Minute), true},
		"at expiry":      {issued.Add(TokenTTL), false},
		"past expiry":    {issued.Add(TokenTTL + time.Hour), false},
	}
	for name, tc := range cases {
		at := tc.at
		verifier := newTestTokens(t, WithClock(func() time.Time { return at }))
		_, err := verifier.Verify(token)
		if tc.valid && err != nil {
			t.Fatalf("%s: expected valid, got %v", name, err)
		}
		if !tc.valid && err != ErrInvalidToken {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	tokens := newTestTokens(t)
	token, _, err := tokens.Issue(Identity{UserID: "user-1", Username: "u", Email: "u@test.com", Age: 30})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		t.Fatalf("expected three token segments, got %d", len(segments))
	}

	// Flipping any character of the payload or signature must invalidate
	// the token.
	for seg := 1; seg <= 2; seg++ {
		mutated := make([]string, 3)
		copy(mutated, segments)
		raw := []byte(mutated[seg])
		if raw[0] == 'A' {
			raw[0] = 'B'
		} else {
			raw[0] = 'A'
		}
		mutated[seg] = string(raw)
		if _, err := tokens.Verify(strings.Join(mutated, ".")); err != ErrInvalidToken {
			t.Fatalf("segment %d: expected ErrInvalidToken after mutation, got %v", seg, err)
		}
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tokens := newTestTokens(t)
	for _, token := range []string{"", "   ", "not-a-token", "a.b", "a.b.c"} {
		if _, err := tokens.Verify(token); err != ErrInvalidToken {
			t.Fatalf("token %q: expected ErrInvalidToken, got %v", token, err)
		}
	}
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	tokens := newTestTokens(t)
	other, err := NewTokens("another-secret")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	token, _, err := other.Issue(Identity{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := tokens.Verify(token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
