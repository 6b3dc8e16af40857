package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrExpired is returned by [Manager.Parse] when the token carries a valid
// signature but its expiry instant has passed.
var ErrExpired = errors.New("token expired")

// ErrInvalid is returned by [Manager.Parse] for any token that is malformed,
// tampered with, or signed with an unexpected key or algorithm.
var ErrInvalid = errors.New("token invalid")

// Config holds the signing material and lifetime policy for session tokens.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	// Key is the HMAC-SHA256 signing key. Required.
	Key []byte

	// TTL is the session lifetime. Zero is honored literally: every issued
	// token is already expired at its issuance instant and fails the next
	// validation.
	TTL time.Duration

	Issuer string
	Leeway time.Duration
}

// Claims is the signed session payload: username (sub), role, session ID
// (jti), issuance and expiry instants. Validity is self-contained: no
// server-side lookup is needed to check signature and expiry.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Username returns the subject the session was issued to.
func (c *Claims) Username() string { return c.Subject }

// SessionID returns the unique ID minted for this session.
func (c *Claims) SessionID() string { return c.ID }

// Manager issues and parses HS256-signed session tokens.
type Manager struct {
	config Config
}

// NewManager validates cfg and returns a token manager.
func NewManager(cfg Config) (*Manager, error) {
	if len(cfg.Key) == 0 {
		return nil, errors.New("hs256 requires a signing key")
	}
	if cfg.TTL < 0 {
		return nil, errors.New("invalid TTL configuration")
	}
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}

	return &Manager{config: cfg}, nil
}

// Issue mints a signed token for username with the given role. The returned
// claims carry the session ID and the expiry instant the host should apply
// to its cookie.
func (m *Manager) Issue(username, role string) (string, *Claims, error) {
	now := time.Now().UTC()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			Issuer:    m.config.Issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.TTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.config.Key)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse verifies signature and expiry. Expiry is evaluated against the
// clock at call time, never cached: a token that validated a moment ago can
// legitimately come back [ErrExpired] now.
func (m *Manager) Parse(tokenStr string) (*Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalid
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}

	parser := jwt.NewParser(options...)
	parsed, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return m.config.Key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, ErrInvalid
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalid
	}
	if claims.Subject == "" && claims.ID == "" {
		return nil, ErrInvalid
	}

	return claims, nil
}
