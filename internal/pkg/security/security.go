// Package security hashes and verifies dispatcher keys.
// It leverages the bcrypt algorithm so that only the hash of a key is ever configured.
package security

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyKey is returned when hashing an empty dispatcher key.
var ErrEmptyKey = errors.New("security: empty key")

// HashKey takes a plaintext dispatcher key and returns its bcrypt hash,
// the value expected in DISPATCHER_KEY_HASH.
func HashKey(key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckKey compares a bcrypt hashed key with its possible plaintext equivalent.
// It returns nil on success, or an error on failure indicating that the keys do not match.
func CheckKey(hashedKey, key string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedKey), []byte(key))
}
