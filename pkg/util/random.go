package util

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

const sessionTokenBytes = 32

// GenerateSessionToken returns an unguessable, URL-safe session token
func GenerateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// GenerateVerificationCode generates a random 6-digit code
func GenerateVerificationCode() (string, error) {
	n, err := randomInt(1000000)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n), nil
}

// GenerateNickname 가입 시 기본 닉네임 (맛도리 + 4자리 숫자)
func GenerateNickname() (string, error) {
	n, err := randomInt(10000)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("맛도리%04d", n), nil
}

func randomInt(max int64) (int64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		return 0, err
	}
	return n.Int64(), nil
}
