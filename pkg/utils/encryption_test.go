package utils

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"testing"
)

func randomKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand: %v", err)
	}
	return key
}

func TestSealOpenRoundTrip(t *testing.T) {
	key := randomKey(t)
	plaintext := []byte(`{"objectives":["multi-generational legacy"],"risk_appetite":"conservative"}`)

	sealed, err := Seal(key, plaintext)
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if sealed == string(plaintext) {
		t.Fatal("ciphertext equals plaintext")
	}

	opened, err := Open(key, sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Fatalf("round trip mismatch: %q", opened)
	}

	// Same plaintext seals differently every time (fresh nonce).
	again, err := Seal(key, plaintext)
	if err != nil {
		t.Fatalf("second seal: %v", err)
	}
	if again == sealed {
		t.Fatal("two seals produced identical ciphertext")
	}
}

func TestSealEmptyPlaintext(t *testing.T) {
	key := randomKey(t)
	sealed, err := Seal(key, nil)
	if err != nil || sealed != "" {
		t.Fatalf("empty seal = (%q, %v), want (\"\", nil)", sealed, err)
	}
	opened, err := Open(key, "")
	if err != nil || opened != nil {
		t.Fatalf("empty open = (%q, %v), want (nil, nil)", opened, err)
	}
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	sealed, err := Seal(randomKey(t), []byte("confidential itinerary"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if _, err := Open(randomKey(t), sealed); err == nil {
		t.Fatal("open with wrong key succeeded")
	}
}

func TestOpenRejectsTamperedInput(t *testing.T) {
	key := randomKey(t)
	if _, err := Open(key, "not base64!!"); err == nil {
		t.Fatal("open accepted invalid base64")
	}
	if _, err := Open(key, base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Fatal("open accepted truncated ciphertext")
	}
}

func TestEncryptionKeyFromEnv(t *testing.T) {
	key := randomKey(t)
	t.Setenv("ENCRYPTION_KEY", base64.StdEncoding.EncodeToString(key))

	got, err := EncryptionKeyFromEnv()
	if err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
	if !bytes.Equal(got, key) {
		t.Fatal("decoded key mismatch")
	}

	t.Setenv("ENCRYPTION_KEY", "")
	if _, err := EncryptionKeyFromEnv(); err == nil {
		t.Fatal("missing key accepted")
	}

	t.Setenv("ENCRYPTION_KEY", "%%%not-base64%%%")
	if _, err := EncryptionKeyFromEnv(); err == nil {
		t.Fatal("malformed key accepted")
	}

	t.Setenv("ENCRYPTION_KEY", base64.StdEncoding.EncodeToString([]byte("too-short")))
	if _, err := EncryptionKeyFromEnv(); err == nil {
		t.Fatal("short key accepted")
	}
}
