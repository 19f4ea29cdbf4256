package utils

import "testing"

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("paddle-up")
	if err != nil {
		t.Fatalf("HashPassword() error: %v", err)
	}
	if hash == "paddle-up" {
		t.Fatal("hash equals the plaintext password")
	}

	if err := CheckPassword(hash, "paddle-up"); err != nil {
		t.Errorf("CheckPassword() rejected the correct password: %v", err)
	}
	if err := CheckPassword(hash, "dink-shot"); err == nil {
		t.Error("CheckPassword() accepted a wrong password")
	}
}
