package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quilog/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func signToken(t *testing.T, claims jwt.MapClaims, method jwt.SigningMethod, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestAuthRequired(t *testing.T) {
	app := fiber.New()
	verifier := NewTokenVerifier(&config.Config{JWTSecret: testSecret})

	app.Get("/test", AuthRequired(verifier), func(c *fiber.Ctx) error {
		claims, _ := ClaimsFrom(c)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"userID": c.Locals(LocalUserID),
			"name":   claims.Name,
			"ctxUID": c.UserContext().Value(UserIDKey),
		})
	})

	generateToken := func(sub string, exp time.Duration) string {
		return signToken(t, jwt.MapClaims{
			"sub":  sub,
			"name": "Ada",
			"exp":  time.Now().Add(exp).Unix(),
		}, jwt.SigningMethodHS256, []byte(testSecret))
	}

	tests := []struct {
		name           string
		authHeader     string
		query          string
		expectedStatus int
		expectedUserID string
	}{
		{
			name:           "Happy Path",
			authHeader:     "Bearer " + generateToken("uid-123", time.Hour),
			expectedStatus: http.StatusOK,
			expectedUserID: "uid-123",
		},
		{
			name:           "Query Token",
			query:          "?token=" + generateToken("uid-456", time.Hour),
			expectedStatus: http.StatusOK,
			expectedUserID: "uid-456",
		},
		{
			name:           "Missing Header",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Format",
			authHeader:     "Basic dXNlcjpwYXNz",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Malformed Token",
			authHeader:     "Bearer malformed.token.here",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Expired Token",
			authHeader:     "Bearer " + generateToken("uid-123", -time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Empty Subject",
			authHeader:     "Bearer " + generateToken("", time.Hour),
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Wrong Secret",
			authHeader:     "Bearer " + signToken(t, jwt.MapClaims{"sub": "x", "exp": time.Now().Add(time.Hour).Unix()}, jwt.SigningMethodHS256, []byte("other-secret")),
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test"+tt.query, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			var body map[string]any
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, tt.expectedUserID, body["userID"])
				assert.Equal(t, tt.expectedUserID, body["ctxUID"])
				assert.Equal(t, "Ada", body["name"])
			} else {
				assert.Equal(t, "AUTH_REQUIRED", body["code"])
			}
		})
	}
}

func TestTokenVerifierIssuerAudience(t *testing.T) {
	v := NewTokenVerifier(&config.Config{JWTSecret: testSecret, JWTIssuer: "quilog-auth", JWTAudience: "quilog-api"})
	exp := time.Now().Add(time.Hour).Unix()

	good := signToken(t, jwt.MapClaims{"sub": "u1", "iss": "quilog-auth", "aud": "quilog-api", "exp": exp, "email": "a@b.c"}, jwt.SigningMethodHS256, []byte(testSecret))
	claims, err := v.Verify(good)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@b.c", claims.Email)

	wrongIss := signToken(t, jwt.MapClaims{"sub": "u1", "iss": "elsewhere", "aud": "quilog-api", "exp": exp}, jwt.SigningMethodHS256, []byte(testSecret))
	_, err = v.Verify(wrongIss)
	assert.ErrorIs(t, err, ErrInvalidToken)

	wrongAlg := signToken(t, jwt.MapClaims{"sub": "u1", "iss": "quilog-auth", "aud": "quilog-api", "exp": exp}, jwt.SigningMethodHS512, []byte(testSecret))
	_, err = v.Verify(wrongAlg)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestOptionalAuth(t *testing.T) {
	app := fiber.New()
	verifier := NewTokenVerifier(&config.Config{JWTSecret: testSecret})
	app.Get("/feed", OptionalAuth(verifier), func(c *fiber.Ctx) error {
		uid, _ := c.Locals(LocalUserID).(string)
		return c.SendString(uid)
	})

	req := httptest.NewRequest(http.MethodGet, "/feed", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/feed", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
