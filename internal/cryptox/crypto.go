// Package cryptox holds the password-hashing and secret-sealing primitives
// used by the identity store. Password hashes are salted argon2id; the
// per-user secret key is sealed at rest with AES-GCM under a key derived
// from the user's password.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"peerchat/internal/common"
)

const (
	saltSize  = 16
	nonceSize = 12
	keySize   = 32

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var ErrMalformedSecret = errors.New("malformed sealed secret")

func deriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, keySize)
}

// HashPassword derives a salted argon2id digest of password and returns it
// in the storable form "argon2id$<b64 salt>$<b64 digest>".
func HashPassword(password []byte) string {
	salt := common.GenerateRandByteArray(saltSize)
	digest := deriveKey(password, salt)

	enc := base64.RawStdEncoding
	return fmt.Sprintf("argon2id$%s$%s", enc.EncodeToString(salt), enc.EncodeToString(digest))
}

// VerifyPassword recomputes the digest for password using the salt embedded
// in stored and compares in constant time. A malformed stored value simply
// fails verification.
func VerifyPassword(stored string, password []byte) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 3 || parts[0] != "argon2id" {
		return false
	}

	enc := base64.RawStdEncoding
	salt, err := enc.DecodeString(parts[1])
	if err != nil {
		return false
	}
	digest, err := enc.DecodeString(parts[2])
	if err != nil {
		return false
	}

	candidate := deriveKey(password, salt)
	return subtle.ConstantTimeCompare(digest, candidate) == 1
}

// SealSecret encrypts plain with AES-GCM under an argon2id key derived from
// password and a fresh salt. The result is base64 of salt|nonce|ciphertext,
// suitable for a text column.
func SealSecret(plain, password []byte) (string, error) {
	salt := common.GenerateRandByteArray(saltSize)
	key := deriveKey(password, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := common.GenerateRandByteArray(nonceSize)
	ciphertext := aesgcm.Seal(nil, nonce, plain, nil)

	packed := make([]byte, 0, saltSize+nonceSize+len(ciphertext))
	packed = append(packed, salt...)
	packed = append(packed, nonce...)
	packed = append(packed, ciphertext...)

	return base64.StdEncoding.EncodeToString(packed), nil
}

// OpenSecret reverses SealSecret. It fails if sealed is not valid base64,
// is too short to contain salt and nonce, or if the password is wrong
// (GCM authentication failure).
func OpenSecret(sealed string, password []byte) ([]byte, error) {
	packed, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, fmt.Errorf("decoding sealed secret: %w", err)
	}
	if len(packed) < saltSize+nonceSize {
		return nil, ErrMalformedSecret
	}

	salt := packed[:saltSize]
	nonce := packed[saltSize : saltSize+nonceSize]
	ciphertext := packed[saltSize+nonceSize:]

	key := deriveKey(password, salt)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	plain, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("opening sealed secret: %w", err)
	}
	return plain, nil
}
