package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// Stored credential blobs are self-contained: hex(iv):hex(tag):hex(ciphertext).
// The key is derived once per secret with scrypt, salted with the first 16
// bytes of the secret itself so that every process derives the same key.
const (
	saltLength = 16
	ivLength   = 16
	tagLength  = 16
	keyLength  = 32

	scryptN = 32768
	scryptR = 8
	scryptP = 1
)

var (
	// ErrEmptyPlaintext is returned when there is nothing to encrypt.
	ErrEmptyPlaintext = errors.New("vault: plaintext cannot be empty")
	// ErrInvalidFormat is returned when a blob does not split into the
	// expected iv:tag:ciphertext hex triple.
	ErrInvalidFormat = errors.New("vault: invalid encrypted blob format")
	// ErrAuthentication is returned when the GCM tag does not verify:
	// tampered ciphertext, or a secret rotated without re-encrypting.
	ErrAuthentication = errors.New("vault: authentication failed")
)

// Vault encrypts and decrypts tenant provider credentials with AES-256-GCM.
// Decryption tries the active key first and then any previous keys, so stored
// blobs survive a secret rotation.
type Vault struct {
	keys [][]byte
}

// New derives the symmetric keys for the active secret and any previous
// secrets. Derivation is CPU-bound, so it happens once here rather than per
// call.
func New(secret string, previousSecrets ...string) (*Vault, error) {
	if len(secret) < saltLength {
		return nil, fmt.Errorf("vault: secret must be at least %d characters", saltLength)
	}

	keys := make([][]byte, 0, 1+len(previousSecrets))
	for _, s := range append([]string{secret}, previousSecrets...) {
		if len(s) < saltLength {
			return nil, fmt.Errorf("vault: secret must be at least %d characters", saltLength)
		}
		key, err := deriveKey(s)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	return &Vault{keys: keys}, nil
}

func deriveKey(secret string) ([]byte, error) {
	salt := []byte(secret[:saltLength])
	key, err := scrypt.Key([]byte(secret), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("vault: derive key: %w", err)
	}
	return key, nil
}

// Encrypt seals plaintext under the active key with a fresh random IV and
// returns the hex(iv):hex(tag):hex(ciphertext) blob.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", ErrEmptyPlaintext
	}

	gcm, err := newGCM(v.keys[0])
	if err != nil {
		return "", err
	}

	iv := make([]byte, ivLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("vault: generate iv: %w", err)
	}

	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-tagLength]
	tag := sealed[len(sealed)-tagLength:]

	return hex.EncodeToString(iv) + ":" + hex.EncodeToString(tag) + ":" + hex.EncodeToString(ciphertext), nil
}

// Decrypt opens a blob produced by Encrypt. It never returns partial
// plaintext: a malformed blob yields ErrInvalidFormat and a tag mismatch
// under every known key yields ErrAuthentication.
func (v *Vault) Decrypt(blob string) (string, error) {
	iv, tag, ciphertext, err := splitBlob(blob)
	if err != nil {
		return "", err
	}

	sealed := append(append([]byte{}, ciphertext...), tag...)

	for _, key := range v.keys {
		gcm, err := newGCM(key)
		if err != nil {
			return "", err
		}
		plaintext, err := gcm.Open(nil, iv, sealed, nil)
		if err == nil {
			return string(plaintext), nil
		}
	}

	return "", ErrAuthentication
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("vault: init cipher: %w", err)
	}
	// 16-byte IVs to stay wire-compatible with blobs produced before the
	// service rewrite; the Go default is 12.
	gcm, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, fmt.Errorf("vault: init gcm: %w", err)
	}
	return gcm, nil
}

func splitBlob(blob string) (iv, tag, ciphertext []byte, err error) {
	parts := strings.Split(blob, ":")
	if len(parts) != 3 {
		return nil, nil, nil, ErrInvalidFormat
	}

	iv, err = hex.DecodeString(parts[0])
	if err != nil || len(iv) != ivLength {
		return nil, nil, nil, ErrInvalidFormat
	}
	tag, err = hex.DecodeString(parts[1])
	if err != nil || len(tag) != tagLength {
		return nil, nil, nil, ErrInvalidFormat
	}
	ciphertext, err = hex.DecodeString(parts[2])
	if err != nil {
		return nil, nil, nil, ErrInvalidFormat
	}

	return iv, tag, ciphertext, nil
}
