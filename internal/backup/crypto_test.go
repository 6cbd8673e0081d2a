package backup

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.db")
	enc := filepath.Join(dir, "plain.db.enc")
	dec := filepath.Join(dir, "restored.db")

	content := []byte("not really a database, but good enough")
	if err := os.WriteFile(src, content, 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}

	if err := EncryptFile(src, enc, "correct horse battery staple", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	encData, err := os.ReadFile(enc)
	if err != nil {
		t.Fatalf("read encrypted: %v", err)
	}
	if bytes.Contains(encData, content) {
		t.Error("ciphertext contains plaintext")
	}

	if err := DecryptFile(enc, dec, "correct horse battery staple"); err != nil {
		t.Fatalf("decrypt: %v", err)
	}

	restored, err := os.ReadFile(dec)
	if err != nil {
		t.Fatalf("read restored: %v", err)
	}
	if !bytes.Equal(restored, content) {
		t.Error("round trip did not preserve content")
	}
}

func TestDecryptWrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "plain.db")
	enc := filepath.Join(dir, "plain.db.enc")
	dec := filepath.Join(dir, "restored.db")

	if err := os.WriteFile(src, []byte("secret"), 0600); err != nil {
		t.Fatalf("write source: %v", err)
	}

	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("generate salt: %v", err)
	}
	if err := EncryptFile(src, enc, "right", salt); err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	if err := DecryptFile(enc, dec, "wrong"); err == nil {
		t.Error("expected decryption to fail with wrong passphrase")
	}
}

func TestDecryptTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	enc := filepath.Join(dir, "tiny.enc")
	if err := os.WriteFile(enc, []byte("short"), 0600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := DecryptFile(enc, filepath.Join(dir, "out"), "pw"); err == nil {
		t.Error("expected error for truncated file")
	}
}

func TestDeriveKeyDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef")
	k1 := DeriveKey("pw", salt)
	k2 := DeriveKey("pw", salt)
	if !bytes.Equal(k1, k2) {
		t.Error("same passphrase and salt should derive the same key")
	}

	k3 := DeriveKey("other", salt)
	if bytes.Equal(k1, k3) {
		t.Error("different passphrases should derive different keys")
	}
}
