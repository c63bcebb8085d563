package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/argon2"
)

const (
	// encryptedBackupMagic marks a backup file as encrypted.
	encryptedBackupMagic = "DFRGENC1"

	// Argon2id parameters per RFC 9106.
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32

	encSaltLength = 32
)

// deriveBackupKey derives a 256-bit AES key from a passphrase with Argon2id.
func deriveBackupKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
}

// encryptBytes seals plaintext with AES-256-GCM.
// Output layout: salt || nonce || ciphertext (GCM tag included).
func encryptBytes(plaintext []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase required for encryption")
	}

	salt := make([]byte, encSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}

	block, err := aes.NewCipher(deriveBackupKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// decryptBytes reverses encryptBytes.
func decryptBytes(encrypted []byte, passphrase string) ([]byte, error) {
	if passphrase == "" {
		return nil, fmt.Errorf("passphrase required for decryption")
	}

	// salt + 12-byte nonce + 16-byte GCM tag at minimum
	if len(encrypted) < encSaltLength+12+16 {
		return nil, fmt.Errorf("encrypted data too short")
	}

	salt := encrypted[:encSaltLength]
	rest := encrypted[encSaltLength:]

	block, err := aes.NewCipher(deriveBackupKey(passphrase, salt))
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(rest) < gcm.NonceSize() {
		return nil, fmt.Errorf("encrypted data too short for nonce")
	}
	nonce := rest[:gcm.NonceSize()]
	ciphertext := rest[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed (wrong passphrase or corrupted backup): %w", err)
	}
	return plaintext, nil
}

// EncryptFile encrypts sourcePath into destPath with the magic header prepended.
func EncryptFile(sourcePath, destPath, passphrase string) error {
	plaintext, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read source file: %w", err)
	}

	encrypted, err := encryptBytes(plaintext, passphrase)
	if err != nil {
		return err
	}

	dest, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create encrypted file: %w", err)
	}
	defer func() { _ = dest.Close() }()

	if _, err := dest.Write([]byte(encryptedBackupMagic)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := dest.Write(encrypted); err != nil {
		return fmt.Errorf("failed to write encrypted data: %w", err)
	}
	return nil
}

// DecryptFile decrypts a file produced by EncryptFile into destPath.
func DecryptFile(sourcePath, destPath, passphrase string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to read encrypted file: %w", err)
	}

	if len(data) < len(encryptedBackupMagic) || string(data[:len(encryptedBackupMagic)]) != encryptedBackupMagic {
		return fmt.Errorf("file is not an encrypted backup")
	}

	plaintext, err := decryptBytes(data[len(encryptedBackupMagic):], passphrase)
	if err != nil {
		return err
	}

	if err := os.WriteFile(destPath, plaintext, 0o600); err != nil {
		return fmt.Errorf("failed to write decrypted file: %w", err)
	}
	return nil
}

// IsEncrypted reports whether the file carries the encrypted backup header.
func IsEncrypted(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, len(encryptedBackupMagic))
	n, err := f.Read(header)
	if err != nil && err != io.EOF {
		return false, err
	}
	return n == len(encryptedBackupMagic) && string(header) == encryptedBackupMagic, nil
}
