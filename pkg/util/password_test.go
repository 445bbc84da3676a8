package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
	}{
		{
			name:     "Valid password",
			password: "password123",
		},
		{
			name:     "Empty password",
			password: "",
		},
		{
			name:     "Long password",
			password: "this-is-a-very-long-password-with-special-chars!@#$%^&*()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password)

			require.NoError(t, err)
			assert.NotEmpty(t, hash)
			assert.NotEqual(t, tt.password, hash)
			assert.Contains(t, hash, "$argon2id$")
		})
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "mySecurePassword123"
	hash, err := HashPassword(password)
	require.NoError(t, err)

	tests := []struct {
		name           string
		hashedPassword string
		password       string
		want           bool
	}{
		{
			name:           "Correct password",
			hashedPassword: hash,
			password:       password,
			want:           true,
		},
		{
			name:           "Incorrect password",
			hashedPassword: hash,
			password:       "wrongPassword",
			want:           false,
		},
		{
			name:           "Empty password",
			hashedPassword: hash,
			password:       "",
			want:           false,
		},
		{
			name:           "Invalid hash",
			hashedPassword: "invalid-hash",
			password:       password,
			want:           false,
		},
		{
			name:           "Bcrypt style hash",
			hashedPassword: "$2a$12$abcdefghijklmnopqrstuv",
			password:       password,
			want:           false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifyPassword(tt.hashedPassword, tt.password))
		})
	}
}

func TestHashPasswordConsistency(t *testing.T) {
	password := "testPassword1"

	hash1, err1 := HashPassword(password)
	hash2, err2 := HashPassword(password)
	require.NoError(t, err1)
	require.NoError(t, err2)

	// Different salts, different encodings
	assert.NotEqual(t, hash1, hash2)
	assert.True(t, VerifyPassword(hash1, password))
	assert.True(t, VerifyPassword(hash2, password))

	// Re-hashing with the stored salt reproduces the stored hash
	salt, err := SaltFromHash(hash1)
	require.NoError(t, err)
	assert.Equal(t, hash1, HashPasswordWithSalt(password, salt))
	assert.NotEqual(t, hash1, HashPasswordWithSalt("testPassword2", salt))
}

func TestValidatePasswordPolicy(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Letters and digits", "abcdef12", false},
		{"Korean letters and digits", "맛도리맛도리12", false},
		{"Too short", "abc12", true},
		{"No digit", "abcdefgh", true},
		{"No letter", "12345678", true},
		{"Too long", "a1234567890123456789012345678901234567890123456789012345678901234", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordPolicy(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrPasswordPolicy)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
