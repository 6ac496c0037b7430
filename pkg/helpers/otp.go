package helpers

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
)

const (
	codeMin = 1000
	codeMax = 9999
)

// KeyPendingSignup is the Redis key holding a pending signup for an email.
func KeyPendingSignup(email string) string {
	return "signup:pending:" + NormalizeEmail(email)
}

// KeyPendingUsername maps a reserved username back to its pending email.
func KeyPendingUsername(username string) string {
	return "signup:pending:username:" + strings.ToLower(strings.TrimSpace(username))
}

// GenVerificationCode returns a uniformly random 4-digit code in [1000, 9999].
func GenVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
