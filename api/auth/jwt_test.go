package auth

import (
	"testing"
	"time"

	"github.com/sahelys/sahelys-backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testUser() *models.User {
	return &models.User{
		ID:    primitive.NewObjectID(),
		Email: "worker@sahelys.bf",
		Role:  models.UserRoleEmployee,
	}
}

func TestGenerateAndVerifyToken(t *testing.T) {
	manager := NewJWTManager("test-secret", "HS256", time.Hour)
	user := testUser()

	token, err := manager.GenerateToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, models.UserRoleEmployee, claims.Role)
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	manager := NewJWTManager("secret-a", "HS256", time.Hour)
	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)

	other := NewJWTManager("secret-b", "HS256", time.Hour)
	_, err = other.VerifyToken(token)
	assert.Error(t, err)
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", "HS256", -time.Minute)
	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = manager.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", "HS256", time.Hour)
	_, err := manager.VerifyToken("not.a.token")
	assert.Error(t, err)
}

func TestAlgorithmFallback(t *testing.T) {
	manager := NewJWTManager("test-secret", "ES256", time.Hour)
	token, err := manager.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = manager.VerifyToken(token)
	assert.NoError(t, err)
}
