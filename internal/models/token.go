package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims carries the authenticated user identity inside access tokens.
type JWTClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
