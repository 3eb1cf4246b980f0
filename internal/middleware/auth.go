// Package middleware provides authentication, logging, tracing, metrics and
// rate limiting middleware for the HTTP API.
package middleware

import (
	"context"
	"errors"
	"strings"

	"quilog/internal/config"
	"quilog/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity carried by an access token. Name, Email and
// Picture are the auth provider's snapshot of the user and may be stale.
type Claims struct {
	UserID  string
	Name    string
	Email   string
	Picture string
	JTI     string
}

// Locals keys set by the auth middleware.
const (
	LocalUserID = "userID"
	LocalClaims = "claims"
)

var (
	ErrMissingToken  = errors.New("authorization token required")
	ErrInvalidFormat = errors.New("invalid authorization header format")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrMissingSub    = errors.New("invalid token structure - missing subject")
)

// TokenVerifier validates HS256 access tokens issued by the auth provider.
type TokenVerifier struct {
	secret   []byte
	issuer   string
	audience string
}

// NewTokenVerifier builds a verifier from the JWT settings in cfg.
func NewTokenVerifier(cfg *config.Config) *TokenVerifier {
	return &TokenVerifier{
		secret:   []byte(cfg.JWTSecret),
		issuer:   cfg.JWTIssuer,
		audience: cfg.JWTAudience,
	}
}

// Verify parses tokenString and returns its claims.
func (v *TokenVerifier) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, _ := mc["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return nil, ErrMissingSub
	}

	str := func(key string) string {
		s, _ := mc[key].(string)
		return s
	}

	return &Claims{
		UserID:  sub,
		Name:    str("name"),
		Email:   str("email"),
		Picture: str("picture"),
		JTI:     str("jti"),
	}, nil
}

// ExtractToken reads a bearer token from the Authorization header, falling
// back to the token query parameter used by websocket clients.
func ExtractToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if t := c.Query("token"); t != "" {
			return t, nil
		}
		return "", ErrMissingToken
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", ErrInvalidFormat
	}
	return parts[1], nil
}

// Authenticate stores the verified claims in Fiber locals and the user id in
// the request context.
func Authenticate(c *fiber.Ctx, claims *Claims) {
	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalClaims, claims)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, claims.UserID))
}

// AuthRequired rejects requests without a valid access token.
func AuthRequired(v *TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := ExtractToken(c)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				&models.AppError{Code: models.CodeAuthRequired, Message: err.Error()})
		}

		claims, err := v.Verify(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				&models.AppError{Code: models.CodeAuthRequired, Message: err.Error()})
		}

		Authenticate(c, claims)
		return c.Next()
	}
}

// OptionalAuth attaches the identity when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(v *TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := ExtractToken(c)
		if err != nil {
			return c.Next()
		}
		if claims, err := v.Verify(tokenString); err == nil {
			Authenticate(c, claims)
		}
		return c.Next()
	}
}

// ClaimsFrom returns the claims stored by the auth middleware, if any.
func ClaimsFrom(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(LocalClaims).(*Claims)
	return claims, ok && claims != nil
}
