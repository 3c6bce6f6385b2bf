package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestJWT_RoundTrip(t *testing.T) {
	generator, err := NewJWTGenerator(testSecret, "mindmap-auth", time.Hour)
	require.NoError(t, err)
	validator, err := NewJWTValidator(testSecret, "mindmap-auth")
	require.NoError(t, err)

	token, err := generator.GenerateToken("alice", "alice@example.com", []string{"editor"})
	require.NoError(t, err)

	claims, err := validator.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, []string{"editor"}, claims.Roles)
}

func TestJWT_Rejections(t *testing.T) {
	validator, err := NewJWTValidator(testSecret, "mindmap-auth")
	require.NoError(t, err)

	sign := func(secret string, claims *Claims, method jwt.SigningMethod) string {
		token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	valid := func() *Claims {
		return &Claims{
			UserID: "alice",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "mindmap-auth",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	wrongIssuer := valid()
	wrongIssuer.Issuer = "someone-else"
	noSubject := valid()
	noSubject.UserID = ""

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "missing", token: "Bearer ", want: ErrMissingToken},
		{name: "garbage", token: "not-a-token", want: ErrInvalidToken},
		{name: "expired", token: sign(testSecret, expired, jwt.SigningMethodHS256), want: ErrExpiredToken},
		{name: "wrong secret", token: sign("other", valid(), jwt.SigningMethodHS256), want: ErrInvalidSignature},
		{name: "wrong issuer", token: sign(testSecret, wrongIssuer, jwt.SigningMethodHS256), want: ErrInvalidClaims},
		{name: "wrong algorithm", token: sign(testSecret, valid(), jwt.SigningMethodHS512), want: ErrInvalidToken},
		{name: "no subject", token: sign(testSecret, noSubject, jwt.SigningMethodHS256), want: ErrInvalidClaims},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validator.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestJWT_SecretRequired(t *testing.T) {
	_, err := NewJWTValidator("", "")
	assert.Error(t, err)
	_, err = NewJWTGenerator("", "", 0)
	assert.Error(t, err)
}
