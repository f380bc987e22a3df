package cipher

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestCipher_RoundTrip(t *testing.T) {
	c, err := New("passphrase")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	enc, err := c.Encrypt("s3cret!")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if enc == "s3cret!" || strings.Contains(enc, "s3cret") {
		t.Fatalf("ciphertext leaks plaintext: %q", enc)
	}

	dec, err := c.Decrypt(enc)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if dec != "s3cret!" {
		t.Errorf("expected %q, got %q", "s3cret!", dec)
	}
}

func TestCipher_NonceMakesCiphertextsDiffer(t *testing.T) {
	c, _ := New("passphrase")
	a, _ := c.Encrypt("same")
	b, _ := c.Encrypt("same")
	if a == b {
		t.Error("expected distinct ciphertexts for the same plaintext")
	}
}

func TestCipher_WrongKeyFails(t *testing.T) {
	c1, _ := New("first")
	c2, _ := New("second")

	enc, _ := c1.Encrypt("value")
	if _, err := c2.Decrypt(enc); err == nil {
		t.Fatal("expected decrypt with a different key to fail")
	}
}

func TestCipher_Malformed(t *testing.T) {
	c, _ := New("passphrase")
	for _, in := range []string{"not base64!!", "", "AAAA"} {
		if _, err := c.Decrypt(in); err == nil {
			t.Errorf("input %q: expected error", in)
		}
	}
}

func TestDeriveKey_PadsAndTruncates(t *testing.T) {
	short := deriveKey("abc")
	if len(short) != KeySize {
		t.Fatalf("expected %d bytes, got %d", KeySize, len(short))
	}
	if string(short[:3]) != "abc" || short[3] != ' ' || short[KeySize-1] != ' ' {
		t.Errorf("unexpected padding: %q", short)
	}

	long := deriveKey(strings.Repeat("x", 40) + "tail")
	if len(long) != KeySize || strings.Contains(string(long), "tail") {
		t.Errorf("expected truncation to %d bytes, got %q", KeySize, long)
	}
}

func TestNew_EmptyPassphrase(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty passphrase")
	}
}

func TestEncoders_Verify(t *testing.T) {
	cipherEnc, err := NewEncoder(SchemeCipher, "passphrase")
	if err != nil {
		t.Fatalf("cipher encoder: %v", err)
	}
	bcryptEnc, err := NewEncoder(SchemeBcrypt, "")
	if err != nil {
		t.Fatalf("bcrypt encoder: %v", err)
	}

	for name, enc := range map[string]Encoder{"cipher": cipherEnc, "bcrypt": bcryptEnc} {
		stored, err := enc.Encode("hunter2")
		if err != nil {
			t.Fatalf("%s: encode: %v", name, err)
		}
		ok, err := enc.Verify(stored, "hunter2")
		if err != nil || !ok {
			t.Errorf("%s: expected match, got ok=%v err=%v", name, ok, err)
		}
		ok, err = enc.Verify(stored, "wrong")
		if err != nil || ok {
			t.Errorf("%s: expected mismatch, got ok=%v err=%v", name, ok, err)
		}
	}
}

func TestNewBcryptEncoder_LowCostFallsBack(t *testing.T) {
	if got := NewBcryptEncoder(0).cost; got != bcrypt.DefaultCost {
		t.Errorf("expected default cost, got %d", got)
	}
}

func TestNewEncoder_UnknownScheme(t *testing.T) {
	if _, err := NewEncoder("rot13", "x"); err == nil {
		t.Fatal("expected error for unknown scheme")
	}
}
