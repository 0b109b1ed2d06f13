package auth

import (
	"testing"
	"time"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("hash equals the plaintext password")
	}
	if !CheckPassword("correct horse battery staple", hash) {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword("wrong", hash) {
		t.Error("CheckPassword accepted the wrong password")
	}
}

func TestCheckPasswordEmptyHash(t *testing.T) {
	if CheckPassword("anything", "") {
		t.Error("CheckPassword accepted an empty hash")
	}
}

func TestGenerateSessionToken(t *testing.T) {
	a, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken returned error: %v", err)
	}
	if len(a) != 64 {
		t.Errorf("token length = %d, want 64", len(a))
	}

	b, err := GenerateSessionToken()
	if err != nil {
		t.Fatalf("GenerateSessionToken returned error: %v", err)
	}
	if a == b {
		t.Error("two generated tokens are identical")
	}
}

func TestCalculateExpiry(t *testing.T) {
	expiry := CalculateExpiry()
	min := time.Now().UTC().Add(SessionDuration - time.Minute)
	max := time.Now().UTC().Add(SessionDuration + time.Minute)
	if expiry.Before(min) || expiry.After(max) {
		t.Errorf("expiry %v not within a minute of now+%v", expiry, SessionDuration)
	}
}
