package util

import (
	"testing"
	"time"
)

func TestSessionLifecycle(t *testing.T) {
	token, err := CreateSession(42)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if got := GetUserIDFromSession(token); got != 42 {
		t.Errorf("GetUserIDFromSession = %d; want 42", got)
	}

	DeleteSession(token)
	if got := GetUserIDFromSession(token); got != 0 {
		t.Errorf("GetUserIDFromSession after delete = %d; want 0", got)
	}

	if got := GetUserIDFromSession("no-such-token"); got != 0 {
		t.Errorf("GetUserIDFromSession for unknown token = %d; want 0", got)
	}
}

func TestSessionExpiry(t *testing.T) {
	token, err := CreateSession(7)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	mu.Lock()
	sessions[token] = session{userID: 7, expiresAt: time.Now().Add(-time.Minute)}
	mu.Unlock()

	if got := GetUserIDFromSession(token); got != 0 {
		t.Errorf("GetUserIDFromSession for expired token = %d; want 0", got)
	}

	// The expired entry is evicted, not just hidden.
	mu.RLock()
	_, ok := sessions[token]
	mu.RUnlock()
	if ok {
		t.Error("expired session still present in the store")
	}
}

func TestSessionTokensAreUnique(t *testing.T) {
	a, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}
	b, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken failed: %v", err)
	}
	if a == b {
		t.Error("two generated tokens are identical")
	}
}
