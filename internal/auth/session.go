// internal/auth/session.go
package auth

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OperatorSubject is the "sub" claim carried by operator session tokens.
const OperatorSubject = "operator"

var (
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// tokenTTL is how long an operator session stays valid. Zero means no
	// expiry claim is set.
	tokenTTL time.Duration
)

// Init generates a fresh ed25519 key pair for this process and reads the
// session TTL from TOKEN_EXPIRE_TIME ("never" disables expiry, default 72h).
// Tokens do not survive a restart; operators log in again.
func Init() {
	var err error
	publicKey, privateKey, err = ed25519.GenerateKey(nil)
	if err != nil {
		fmt.Printf("failed to generate ed25519 key pair: %v\n", err)
		os.Exit(1)
	}

	switch raw := os.Getenv("TOKEN_EXPIRE_TIME"); raw {
	case "":
		tokenTTL = 72 * time.Hour
	case "never", "0":
		tokenTTL = 0
	default:
		d, err := time.ParseDuration(raw)
		if err != nil {
			fmt.Printf("failed to parse TOKEN_EXPIRE_TIME: %v\n", err)
			os.Exit(1)
		}
		tokenTTL = d
	}
}

// CreateJWT signs a session token for subject.
func CreateJWT(subject string) (string, error) {
	claims := jwt.MapClaims{"sub": subject}
	if tokenTTL > 0 {
		claims["exp"] = time.Now().Add(tokenTTL).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(privateKey)
}

// AuthenticateJWT verifies a token string and returns its subject.
func AuthenticateJWT(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("jwt parse error: %w", err)
	}
	if !t.Valid {
		return "", fmt.Errorf("invalid token")
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("invalid jwt claims")
	}
	subject, ok := claims["sub"].(string)
	if !ok {
		return "", fmt.Errorf("missing sub in jwt")
	}
	return subject, nil
}

// IsOperator reports whether tokenString is a valid operator session token.
func IsOperator(tokenString string) bool {
	if tokenString == "" {
		return false
	}
	subject, err := AuthenticateJWT(tokenString)
	return err == nil && subject == OperatorSubject
}
