package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestEncryptDecryptBytes(t *testing.T) {
	plaintext := []byte("1 Sol Ring\n1 Command Tower\n10 Forest\n")

	encrypted, err := encryptBytes(plaintext, "passphrase")
	if err != nil {
		t.Fatalf("encryptBytes() error = %v", err)
	}
	if bytes.Contains(encrypted, []byte("Sol Ring")) {
		t.Error("ciphertext contains plaintext")
	}

	decrypted, err := decryptBytes(encrypted, "passphrase")
	if err != nil {
		t.Fatalf("decryptBytes() error = %v", err)
	}
	if !bytes.Equal(decrypted, plaintext) {
		t.Errorf("round trip mismatch: got %q", decrypted)
	}
}

func TestDecryptBytes_WrongPassphrase(t *testing.T) {
	encrypted, err := encryptBytes([]byte("secret"), "right")
	if err != nil {
		t.Fatalf("encryptBytes() error = %v", err)
	}

	if _, err := decryptBytes(encrypted, "wrong"); err == nil {
		t.Error("decryptBytes() with wrong passphrase succeeded")
	}
}

func TestDecryptBytes_Truncated(t *testing.T) {
	if _, err := decryptBytes([]byte("short"), "pw"); err == nil {
		t.Error("decryptBytes() on truncated input succeeded")
	}
}

func TestEncryptBytes_EmptyPassphrase(t *testing.T) {
	if _, err := encryptBytes([]byte("data"), ""); err == nil {
		t.Error("encryptBytes() with empty passphrase succeeded")
	}
}

func TestEncryptDecryptFile(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "deck.txt")
	encPath := filepath.Join(dir, "deck.txt.enc")
	outPath := filepath.Join(dir, "deck.out.txt")

	content := []byte("Commander: Atraxa, Praetors' Voice\n")
	if err := os.WriteFile(srcPath, content, 0o600); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	if err := EncryptFile(srcPath, encPath, "pw"); err != nil {
		t.Fatalf("EncryptFile() error = %v", err)
	}

	encrypted, err := IsEncrypted(encPath)
	if err != nil {
		t.Fatalf("IsEncrypted() error = %v", err)
	}
	if !encrypted {
		t.Error("IsEncrypted() = false for encrypted file")
	}

	plain, err := IsEncrypted(srcPath)
	if err != nil {
		t.Fatalf("IsEncrypted() error = %v", err)
	}
	if plain {
		t.Error("IsEncrypted() = true for plain file")
	}

	if err := DecryptFile(encPath, outPath, "pw"); err != nil {
		t.Fatalf("DecryptFile() error = %v", err)
	}

	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("file round trip mismatch: got %q", got)
	}
}

func TestDecryptFile_NotEncrypted(t *testing.T) {
	dir := t.TempDir()
	srcPath := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(srcPath, []byte("just text"), 0o600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if err := DecryptFile(srcPath, filepath.Join(dir, "out"), "pw"); err == nil {
		t.Error("DecryptFile() on plain file succeeded")
	}
}
