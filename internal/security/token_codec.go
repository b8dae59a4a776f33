package security

import (
	"errors"
	"fmt"
	"time"

	"primetrade-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultAlgorithm is the signing algorithm used when none is configured.
const DefaultAlgorithm = "HS256"

// TokenCodec issues and validates signed, time-limited bearer tokens.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec accepts only symmetric HMAC algorithms (HS256, HS384, HS512).
func NewTokenCodec(secret []byte, algorithm string, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token codec: secret must not be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token codec: ttl must be positive, got %s", ttl)
	}
	if algorithm == "" {
		algorithm = DefaultAlgorithm
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("token codec: unsupported algorithm %q", algorithm)
	}
	return &TokenCodec{
		secret: secret,
		method: method,
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// TTL returns the default token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Encode signs claims with the default TTL.
func (c *TokenCodec) Encode(claims models.TokenClaims) (string, error) {
	return c.EncodeWithTTL(claims, c.ttl)
}

// EncodeWithTTL signs claims with iat=now and exp=now+ttl.
func (c *TokenCodec) EncodeWithTTL(claims models.TokenClaims, ttl time.Duration) (string, error) {
	if claims.Subject == "" {
		return "", errors.New("token codec: subject must not be empty")
	}
	issuedAt := c.now()
	token := jwt.NewWithClaims(c.method, &models.Claims{
		Role: claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	})
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature, then expiry, then claim structure.
// Segments are decoded strictly: unused trailing bits must be zero.
// It returns exactly one of models.ErrTokenSignatureInvalid, models.ErrTokenExpired
// or models.ErrTokenMalformed on failure.
func (c *TokenCodec) Decode(tokenString string) (*models.TokenClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	)

	claims := &models.Claims{}
	_, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})
	if err != nil {
		// Заголовок и claims читаются, значит не декодируется сама подпись.
		if errors.Is(err, jwt.ErrTokenMalformed) {
			if _, _, uerr := parser.ParseUnverified(tokenString, &models.Claims{}); uerr == nil {
				return nil, fmt.Errorf("%w: %v", models.ErrTokenSignatureInvalid, err)
			}
		}
		return nil, classifyParseError(err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", models.ErrTokenMalformed)
	}
	return &models.TokenClaims{Subject: claims.Subject, Role: claims.Role}, nil
}

// classifyParseError maps jwt parser errors onto the three decode kinds.
func classifyParseError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", models.ErrTokenMalformed, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", models.ErrTokenSignatureInvalid, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", models.ErrTokenExpired, err)
	default:
		// missing exp, nbf/iat in the future, undecodable claims
		return fmt.Errorf("%w: %v", models.ErrTokenMalformed, err)
	}
}
