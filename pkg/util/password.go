package util

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/argon2"
)

// argon2id parameters (RFC 9106 second recommended option, reduced memory)
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 64 * 1024
	argonThreads uint8  = 2
	argonKeyLen  uint32 = 32
	saltLen             = 16

	minPasswordLen = 8
	maxPasswordLen = 64
)

var (
	ErrInvalidHash    = errors.New("invalid password hash format")
	ErrPasswordPolicy = errors.New("password must be 8-64 characters and contain a letter and a digit")
)

// HashPassword hashes a plain text password with a fresh random salt
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return HashPasswordWithSalt(password, salt), nil
}

// HashPasswordWithSalt derives the encoded hash for password using the given salt.
// The same password and salt always produce the same encoding.
func HashPasswordWithSalt(password string, salt []byte) string {
	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

// VerifyPassword checks if a plain text password matches a hashed password
func VerifyPassword(hashedPassword, password string) bool {
	p, salt, key, err := decodeHash(hashedPassword)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(password), salt, p.time, p.memory, p.threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1
}

// SaltFromHash extracts the salt of an encoded hash.
func SaltFromHash(hashedPassword string) ([]byte, error) {
	_, salt, _, err := decodeHash(hashedPassword)
	return salt, err
}

// ValidatePasswordPolicy enforces length and character-class requirements.
func ValidatePasswordPolicy(password string) error {
	n := len([]rune(password))
	if n < minPasswordLen || n > maxPasswordLen {
		return ErrPasswordPolicy
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrPasswordPolicy
	}
	return nil
}

type argonParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

func decodeHash(encoded string) (argonParams, []byte, []byte, error) {
	var p argonParams

	parts := strings.Split(encoded, "$")
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	if len(parts) != 6 || parts[1] != "argon2id" {
		return p, nil, nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, nil, nil, ErrInvalidHash
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return p, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, ErrInvalidHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrInvalidHash
	}
	return p, salt, key, nil
}
