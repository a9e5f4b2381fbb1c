package utils

import (
	"testing"
	"time"

	"shorts-autopost/domain/model"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateToken(t *testing.T) {
	tokenString, err := GenerateToken("scheduler", model.ScopeRun, time.Hour, "secret")
	require.NoError(t, err)

	claims := &model.TriggerClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "scheduler", claims.Subject)
	assert.Equal(t, model.ScopeRun, claims.Scope)
	assert.Greater(t, claims.ExpiresAt, time.Now().Unix())
}

func TestGenerateToken_NoExpiry(t *testing.T) {
	tokenString, err := GenerateToken("scheduler", model.ScopeRun, 0, "secret")
	require.NoError(t, err)

	claims := &model.TriggerClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)
	assert.Zero(t, claims.ExpiresAt)
}
