package utils

import (
	"time"

	"shorts-autopost/domain/model"
	"shorts-autopost/infrastructure/logger"

	"github.com/golang-jwt/jwt"
)

func GetCurrentTime() time.Time {
	return time.Now().UTC()
}

// GenerateToken signs a trigger token for the HTTP API. A zero ttl produces a
// token without expiry.
func GenerateToken(subject, scope string, ttl time.Duration, secretKey string) (string, error) {
	now := GetCurrentTime()
	claims := model.TriggerClaims{
		Scope: scope,
		StandardClaims: jwt.StandardClaims{
			Subject:  subject,
			IssuedAt: now.Unix(),
		},
	}
	if ttl != 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secretKey))
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while generate token")
		return "", err
	}
	return tokenString, nil
}
