package auth

import (
	"testing"
	"time"
	"todoTracker/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() config.AuthConfig {
	return config.AuthConfig{JWTSecret: "test-secret", TokenTTL: 15 * time.Minute, Issuer: "test-issuer"}
}

// TestJWTManager_GenerateAndValidate тестирует выпуск и проверку токена
func TestJWTManager_GenerateAndValidate(t *testing.T) {
	m := NewJWTManager(testConfig())
	userID := uuid.New()

	token, expiresAt, err := m.Generate(userID, "ana@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 5*time.Second)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, "test-issuer", claims.Issuer)

	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, userID, id)
}

// TestJWTManager_Validate тестирует отклонение плохих токенов
func TestJWTManager_Validate(t *testing.T) {
	m := NewJWTManager(testConfig())
	token, _, err := m.Generate(uuid.New(), "ana@example.com")
	require.NoError(t, err)

	otherSecret := testConfig()
	otherSecret.JWTSecret = "another-secret"
	otherIssuer := testConfig()
	otherIssuer.Issuer = "someone-else"

	expired := NewJWTManager(testConfig())
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, _, err := expired.Generate(uuid.New(), "old@example.com")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": uuid.NewString()}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name    string
		manager *JWTManager
		token   string
		wantErr error
	}{
		{name: "error - garbage", manager: m, token: "not-a-token", wantErr: ErrInvalidToken},
		{name: "error - wrong secret", manager: NewJWTManager(otherSecret), token: token, wantErr: ErrInvalidToken},
		{name: "error - wrong issuer", manager: NewJWTManager(otherIssuer), token: token, wantErr: ErrInvalidToken},
		{name: "error - expired", manager: m, token: expiredToken, wantErr: ErrExpiredToken},
		{name: "error - alg none", manager: m, token: noneToken, wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.manager.Validate(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestClaims_UserID тестирует разбор subject
func TestClaims_UserID(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "nope"}}
	_, err := c.UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)

	c.Subject = uuid.Nil.String()
	_, err = c.UserID()
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// TestPasswordHasher тестирует хеширование паролей
func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, h.Verify("correct horse", hash))
	assert.False(t, h.Verify("wrong horse", hash))

	other, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "соль разная")
}
