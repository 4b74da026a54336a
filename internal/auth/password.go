// internal/auth/password.go
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrInvalidHash indicates a stored password hash in an unexpected format.
var ErrInvalidHash = errors.New("the encoded hash is not in the correct format")

// Argon2id parameters used for the operator password. A stream-control
// password is verified once per login, so the defaults stay on the heavy side.
const (
	argonMemory      = 64 * 1024
	argonIterations  = 3
	argonParallelism = 2
	argonSaltLength  = 16
	argonKeyLength   = 32
)

// HashPassword derives an Argon2id hash of password, encoded with its
// version, parameters and salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonIterations, argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

var operatorHash string

// SetOperatorPassword hashes and retains the operator password for login
// verification. An empty password leaves operator control disabled.
func SetOperatorPassword(password string) error {
	if password == "" {
		operatorHash = ""
		return nil
	}
	h, err := HashPassword(password)
	if err != nil {
		return err
	}
	operatorHash = h
	return nil
}

// VerifyOperator reports whether password matches the configured operator
// password.
func VerifyOperator(password string) bool {
	if operatorHash == "" {
		return false
	}
	ok, err := VerifyPassword(password, operatorHash)
	return err == nil && ok
}

// VerifyPassword checks password against an encoded Argon2id hash.
func VerifyPassword(password, encodedHash string) (bool, error) {
	vals := strings.Split(encodedHash, "$")
	if len(vals) != 6 {
		return false, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(vals[2], "v=%d", &version); err != nil {
		return false, err
	}
	if version != argon2.Version {
		return false, fmt.Errorf("incompatible argon2 version %d", version)
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(vals[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, err
	}

	salt, err := base64.RawStdEncoding.Strict().DecodeString(vals[4])
	if err != nil {
		return false, err
	}
	key, err := base64.RawStdEncoding.Strict().DecodeString(vals[5])
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(key, candidate) == 1, nil
}
