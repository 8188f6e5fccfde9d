package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"creator-dashboard/domain/dto"
	"creator-dashboard/domain/model"
	"creator-dashboard/infrastructure/configuration"
)

// Auth validates the Bearer JWT and stores the authenticated user name
// on the gin context for the route layer.
func Auth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorization := ctx.Request.Header.Get("Authorization")
		if authorization == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Unauthorized)
			return
		}
		auth := strings.Split(authorization, "Bearer ")
		if len(auth) != 2 {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Unauthorized)
			return
		}

		userClaims, token, err := getClaim(auth[1], configuration.C.App.SecretKey)
		if err != nil || !token.Valid || userClaims.UserName == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, unauthorizedBody(err))
			return
		}

		ctx.Set("user_name", userClaims.UserName)
		ctx.Next()
	}
}

func unauthorizedBody(err error) dto.ErrorResponse {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		if ve.Errors&jwt.ValidationErrorMalformed != 0 {
			return dto.Unauthorized.WithDetail(0, "malformed token")
		}
		if ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0 {
			return dto.Unauthorized.WithDetail(0, "token expired or not yet valid")
		}
	}
	return dto.Unauthorized
}

func getClaim(raw, secretKey string) (model.UserClaims, *jwt.Token, error) {
	var userClaims model.UserClaims
	token, err := jwt.ParseWithClaims(
		raw,
		&userClaims,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
	)
	return userClaims, token, err
}
