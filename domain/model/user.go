package model

import "github.com/golang-jwt/jwt"

// UserClaims are the JWT claims carried by dashboard sessions. UserName
// doubles as the owner key for every cached record.
type UserClaims struct {
	UserName string `json:"user_name"`
	jwt.StandardClaims
}
