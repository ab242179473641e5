package utils

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateRandomString creates a URL-safe random string of specified length
func GenerateRandomString(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:length], nil
}

// GenerateEmailVerificationToken generates a token for email verification
func GenerateEmailVerificationToken() string {
	token, _ := GenerateRandomString(32)
	return token
}

// GeneratePasswordResetToken generates a token for password reset
func GeneratePasswordResetToken() string {
	token, _ := GenerateRandomString(32)
	return token
}
