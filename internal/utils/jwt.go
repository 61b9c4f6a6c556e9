// internal/utils/jwt.go
package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const tokenIssuer = "bizdir"

type JWTClaims struct {
	UserID         string `json:"user_id"`
	Email          string `json:"email"`
	UserType       string `json:"user_type"`
	SessionVersion int    `json:"session_version"`
	jwt.RegisteredClaims
}

// RefreshClaims carries only what is needed to reissue an access token.
type RefreshClaims struct {
	SessionVersion int `json:"session_version"`
	jwt.RegisteredClaims
}

var jwtSecret = []byte("your-secret-key-change-in-production")

func SetJWTSecret(secret string) {
	jwtSecret = []byte(secret)
}

func registered(userID uuid.UUID, ttlHours int) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(ttlHours) * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    tokenIssuer,
		Subject:   userID.String(),
		ID:        uuid.NewString(),
	}
}

func GenerateJWT(userID uuid.UUID, email, userType string, sessionVersion, ttlHours int) (string, error) {
	claims := JWTClaims{
		UserID:           userID.String(),
		Email:            email,
		UserType:         userType,
		SessionVersion:   sessionVersion,
		RegisteredClaims: registered(userID, ttlHours),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return jwtSecret, nil
}

func ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.Issuer == tokenIssuer {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

func GenerateRefreshToken(userID uuid.UUID, sessionVersion, ttlHours int) (string, error) {
	claims := RefreshClaims{
		SessionVersion:   sessionVersion,
		RegisteredClaims: registered(userID, ttlHours),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateRefreshToken(tokenString string) (*RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RefreshClaims{}, keyFunc)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*RefreshClaims); ok && token.Valid && claims.Issuer == tokenIssuer {
		return claims, nil
	}

	return nil, errors.New("invalid refresh token")
}
