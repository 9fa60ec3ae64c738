package service

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "b8a3c2267dc85f855dea9b46b452bf20"

func newTestGenerator() *TokenGenerator {
	return NewTokenGenerator(testSecret, time.Hour, 7*24*time.Hour)
}

func signClaims(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tokenString
}

func TestNewTokenGenerator(t *testing.T) {
	tests := []struct {
		name          string
		secret        string
		accessExpiry  time.Duration
		refreshExpiry time.Duration
	}{
		{
			name:          "standard initialization",
			secret:        "test-secret-key",
			accessExpiry:  time.Hour,
			refreshExpiry: 7 * 24 * time.Hour,
		},
		{
			name:          "short expiry times",
			secret:        "short-secret",
			accessExpiry:  time.Minute,
			refreshExpiry: 10 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := NewTokenGenerator(tt.secret, tt.accessExpiry, tt.refreshExpiry)

			assert.NotNil(t, tg)
			assert.Equal(t, tt.secret, tg.secret)
			assert.Equal(t, tt.accessExpiry, tg.accessTokenExpiry)
			assert.Equal(t, tt.refreshExpiry, tg.refreshTokenExpiry)
		})
	}
}

func TestTokenGenerator_GenerateTokens(t *testing.T) {
	tg := newTestGenerator()

	t.Run("success", func(t *testing.T) {
		userID := uuid.New()
		accessToken, refreshToken, err := tg.GenerateTokens(userID)
		require.NoError(t, err)
		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
		assert.NotEqual(t, accessToken, refreshToken)

		validated, err := tg.ValidateAccessToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, userID, validated)
	})

	t.Run("refresh tokens are unique within the same second", func(t *testing.T) {
		userID := uuid.New()
		_, refresh1, err := tg.GenerateTokens(userID)
		require.NoError(t, err)
		_, refresh2, err := tg.GenerateTokens(userID)
		require.NoError(t, err)

		assert.NotEqual(t, refresh1, refresh2)
	})

	t.Run("token format validation", func(t *testing.T) {
		accessToken, refreshToken, err := tg.GenerateTokens(uuid.New())
		require.NoError(t, err)

		assert.Len(t, strings.Split(accessToken, "."), 3)
		assert.Len(t, strings.Split(refreshToken, "."), 3)
	})
}

func TestTokenGenerator_ValidateAccessToken(t *testing.T) {
	tg := newTestGenerator()

	tests := []struct {
		name        string
		token       func(t *testing.T) string
		errContains string
	}{
		{
			name:  "empty string token",
			token: func(t *testing.T) string { return "" },
		},
		{
			name:  "invalid token format",
			token: func(t *testing.T) string { return "invalid-token" },
		},
		{
			name:  "malformed JWT - invalid base64",
			token: func(t *testing.T) string { return "not-base64.not-base64.not-base64" },
		},
		{
			name: "wrong signature method - non-HMAC",
			token: func(t *testing.T) string {
				claims := jwt.MapClaims{
					"user_id": uuid.NewString(),
					"exp":     time.Now().Add(time.Hour).Unix(),
					"type":    "access",
				}
				token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
				s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
				require.NoError(t, err)
				return s
			},
			errContains: "unexpected signing method",
		},
		{
			name: "token without user_id claim",
			token: func(t *testing.T) string {
				return signClaims(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix(), "type": "access"})
			},
			errContains: "user_id not found",
		},
		{
			name: "token with numeric user_id",
			token: func(t *testing.T) string {
				return signClaims(t, jwt.MapClaims{"user_id": 123, "exp": time.Now().Add(time.Hour).Unix(), "type": "access"})
			},
			errContains: "user_id not found",
		},
		{
			name: "token with malformed user_id",
			token: func(t *testing.T) string {
				return signClaims(t, jwt.MapClaims{"user_id": "not-a-uuid", "exp": time.Now().Add(time.Hour).Unix(), "type": "access"})
			},
			errContains: "invalid user_id",
		},
		{
			name: "refresh token used as access token",
			token: func(t *testing.T) string {
				return signClaims(t, jwt.MapClaims{"user_id": uuid.NewString(), "exp": time.Now().Add(time.Hour).Unix(), "type": "refresh"})
			},
			errContains: "unexpected token type",
		},
		{
			name: "expired token",
			token: func(t *testing.T) string {
				return signClaims(t, jwt.MapClaims{"user_id": uuid.NewString(), "exp": time.Now().Add(-time.Hour).Unix(), "type": "access"})
			},
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				other := NewTokenGenerator("wrong-secret", time.Hour, time.Hour)
				access, _, err := other.GenerateTokens(uuid.New())
				require.NoError(t, err)
				return access
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userID, err := tg.ValidateAccessToken(tt.token(t))
			assert.Error(t, err)
			assert.Equal(t, uuid.Nil, userID)
			if tt.errContains != "" {
				assert.Contains(t, err.Error(), tt.errContains)
			}
		})
	}
}

func TestTokenGenerator_ValidateRefreshToken(t *testing.T) {
	tg := newTestGenerator()

	t.Run("valid refresh token", func(t *testing.T) {
		_, refreshToken, err := tg.GenerateTokens(uuid.New())
		require.NoError(t, err)

		assert.NoError(t, tg.ValidateRefreshToken(refreshToken))
	})

	t.Run("access token used as refresh token", func(t *testing.T) {
		accessToken, _, err := tg.GenerateTokens(uuid.New())
		require.NoError(t, err)

		err = tg.ValidateRefreshToken(accessToken)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unexpected token type")
	})

	t.Run("expired refresh token", func(t *testing.T) {
		tokenString := signClaims(t, jwt.MapClaims{
			"exp":  time.Now().Add(-time.Hour).Unix(),
			"type": "refresh",
		})
		assert.Error(t, tg.ValidateRefreshToken(tokenString))
	})

	t.Run("malformed token", func(t *testing.T) {
		assert.Error(t, tg.ValidateRefreshToken("header.payload"))
	})
}

func TestTokenGenerator_TokenClaims(t *testing.T) {
	tg := newTestGenerator()
	userID := uuid.New()

	beforeGeneration := time.Now().Unix()
	accessToken, refreshToken, err := tg.GenerateTokens(userID)
	require.NoError(t, err)
	afterGeneration := time.Now().Unix()

	t.Run("access token claims", func(t *testing.T) {
		token, err := jwt.Parse(accessToken, func(token *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		})
		require.NoError(t, err)
		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)

		assert.Equal(t, userID.String(), claims["user_id"])
		assert.Equal(t, "access", claims["type"])

		iat, ok := claims["iat"].(float64)
		require.True(t, ok)
		assert.GreaterOrEqual(t, int64(iat), beforeGeneration)
		assert.LessOrEqual(t, int64(iat), afterGeneration)

		exp, ok := claims["exp"].(float64)
		require.True(t, ok)
		assert.Equal(t, time.Unix(int64(iat), 0).Add(time.Hour).Unix(), int64(exp))
	})

	t.Run("refresh token claims", func(t *testing.T) {
		token, err := jwt.Parse(refreshToken, func(token *jwt.Token) (any, error) {
			return []byte(testSecret), nil
		})
		require.NoError(t, err)
		claims, ok := token.Claims.(jwt.MapClaims)
		require.True(t, ok)

		_, hasUserID := claims["user_id"]
		assert.False(t, hasUserID, "refresh token should not contain user_id")
		assert.Equal(t, "refresh", claims["type"])
		assert.NotEmpty(t, claims["jti"])
	})
}
