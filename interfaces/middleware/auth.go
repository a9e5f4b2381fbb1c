package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"shorts-autopost/domain/dto"
	"shorts-autopost/domain/model"
	"shorts-autopost/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Auth validates the HS256 bearer token and requires scope in its claims
func Auth(secretKey, scope string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		res := dto.Res{ResponseCode: "401", ResponseMessage: "Unauthorized"}

		if secretKey == "" {
			logger.GetLogger().Error("SECRET_KEY is not configured, rejecting request")
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		authorization := ctx.Request.Header.Get("Authorization")
		auth := strings.Split(authorization, "Bearer ")
		if len(auth) != 2 || auth[1] == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		claims, token, err := getClaim(auth[1], secretKey)
		if err != nil || token == nil || !token.Valid {
			res.ResponseMessage = abortMessage(err)
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, res)
			return
		}

		if claims.Scope != scope {
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.Res{ResponseCode: "403", ResponseMessage: "Forbidden"})
			return
		}

		ctx.Set("subject", claims.Subject)
		ctx.Next()
	}
}

func abortMessage(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return "That's not even a token"
		} else if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			// Token is either expired or not active yet
			return "Timing is everything"
		}
		return fmt.Sprintf("Couldn't handle this token:%v", err)
	}
	return "Unauthorized"
}

func getClaim(tokenString, secretKey string) (*model.TriggerClaims, *jwt.Token, error) {
	claims := &model.TriggerClaims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return []byte(secretKey), nil
		},
	)
	return claims, token, err
}
