package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Audience is the aud claim of every join token.
const Audience = "skat"

// ErrInvalidToken is returned for join tokens that fail verification.
var ErrInvalidToken = errors.New("invalid join token")

// Issuer signs and verifies join tokens. A join token lets a player take a
// seat and carries the display name in "sub".
type Issuer struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	// TTL is the token lifetime; 0 issues tokens without an exp claim.
	TTL time.Duration
}

// ParseTTL reads a token lifetime. "", "0" and "never" mean no expiry.
func ParseTTL(s string) (time.Duration, error) {
	switch strings.TrimSpace(s) {
	case "", "0", "never":
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("failed to parse token ttl: %w", err)
	}
	return d, nil
}

// NewIssuer generates a fresh ed25519 key pair. Tokens it signs are only valid
// for the lifetime of the process.
func NewIssuer(ttl time.Duration) (*Issuer, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ed25519 key pair: %w", err)
	}
	return &Issuer{privateKey: priv, publicKey: pub, TTL: ttl}, nil
}

// LoadIssuer reads a raw ed25519 key pair, as written by SaveKeys.
func LoadIssuer(privatePath, publicPath string, ttl time.Duration) (*Issuer, error) {
	privateKeyData, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}
	publicKeyData, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	if len(privateKeyData) != ed25519.PrivateKeySize || len(publicKeyData) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("key files %s, %s are not raw ed25519 keys", privatePath, publicPath)
	}
	return &Issuer{
		privateKey: ed25519.PrivateKey(privateKeyData),
		publicKey:  ed25519.PublicKey(publicKeyData),
		TTL:        ttl,
	}, nil
}

// SaveKeys writes the key pair so that a later LoadIssuer accepts the same
// tokens.
func (i *Issuer) SaveKeys(privatePath, publicPath string) error {
	if err := os.WriteFile(privatePath, i.privateKey, 0o600); err != nil {
		return fmt.Errorf("failed to write private key file: %w", err)
	}
	if err := os.WriteFile(publicPath, i.publicKey, 0o644); err != nil {
		return fmt.Errorf("failed to write public key file: %w", err)
	}
	return nil
}

// CreateJoinToken signs a token for the given display name.
func (i *Issuer) CreateJoinToken(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("join token needs a name")
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": name,
		"aud": Audience,
		"iat": now.Unix(),
	}
	if i.TTL > 0 {
		claims["exp"] = now.Add(i.TTL).Unix()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	return token.SignedString(i.privateKey)
}

// AuthenticateJoinToken verifies a token and returns the display name in it.
func (i *Issuer) AuthenticateJoinToken(tokenString string) (string, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.publicKey, nil
	}, jwt.WithAudience(Audience))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !t.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}
	name, ok := claims["sub"].(string)
	if !ok || name == "" {
		return "", fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}
	return name, nil
}
