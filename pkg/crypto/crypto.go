// Package crypto provides passphrase-based encryption for wallet seed
// material. Keys are derived with scrypt and data is sealed with AES-256-GCM.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

// scrypt parameters. Interactive-login strength; changing them invalidates
// previously encrypted payloads.
const (
	scryptN    = 32768
	scryptR    = 8
	scryptP    = 1
	keyLength  = 32
	saltLength = 32
)

// ErrWrongPassphrase is returned when the passphrase cannot authenticate the
// encrypted payload.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// ErrCorruptPayload is returned when the payload is too short to contain the
// salt and nonce.
var ErrCorruptPayload = errors.New("corrupt encrypted payload")

// Encrypt seals data with a key derived from passphrase. The returned buffer
// is salt || nonce || ciphertext.
func Encrypt(data []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("couldn't generate salt: %w", err)
	}

	gcm, err := aead(passphrase, salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("couldn't generate nonce: %w", err)
	}

	out := make([]byte, 0, len(salt)+len(nonce)+len(data)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	return gcm.Seal(out, nonce, data, nil), nil
}

// Decrypt opens a buffer produced by Encrypt using the same passphrase.
func Decrypt(buf []byte, passphrase string) ([]byte, error) {
	if len(buf) < saltLength {
		return nil, ErrCorruptPayload
	}
	salt, rest := buf[:saltLength], buf[saltLength:]

	gcm, err := aead(passphrase, salt)
	if err != nil {
		return nil, err
	}

	if len(rest) < gcm.NonceSize() {
		return nil, ErrCorruptPayload
	}
	nonce, ciphertext := rest[:gcm.NonceSize()], rest[gcm.NonceSize():]

	data, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		// GCM reports authentication failure for a bad key the same way as
		// for tampered data; a wrong passphrase is by far the common case.
		return nil, ErrWrongPassphrase
	}
	return data, nil
}

func aead(passphrase string, salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("couldn't derive key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("couldn't create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("couldn't create GCM: %w", err)
	}
	return gcm, nil
}
