package models

import "github.com/golang-jwt/jwt/v5"

// Claims представляет поля JWT: sub (email), role, iat, exp.
// Роль в токене носит справочный характер; авторизация всегда берет роль из БД.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenClaims is the closed claim set handed to the codec.
type TokenClaims struct {
	Subject string
	Role    string
}
