package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const DefaultPasswordLength = 12

const (
	upperChars    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars    = "abcdefghijklmnopqrstuvwxyz"
	digitChars    = "0123456789"
	passwordChars = upperChars + lowerChars + digitChars
)

// GeneratePassword returns a random password of at least DefaultPasswordLength
// characters holding at least one upper case letter, one lower case letter and
// one digit, in shuffled order.
func GeneratePassword(length int) (string, error) {
	if length < DefaultPasswordLength {
		length = DefaultPasswordLength
	}
	password := make([]byte, 0, length)
	for _, set := range []string{upperChars, lowerChars, digitChars} {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}
	for len(password) < length {
		c, err := randomChar(passwordChars)
		if err != nil {
			return "", err
		}
		password = append(password, c)
	}
	for i := len(password) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", err
		}
		password[i], password[j] = password[j], password[i]
	}
	return string(password), nil
}

// NormalizeEmail trims surrounding whitespace. Case is preserved as stored.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

func randomChar(set string) (byte, error) {
	i, err := randomIndex(len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
