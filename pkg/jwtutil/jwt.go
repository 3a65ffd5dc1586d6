package jwtutil

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var secret = []byte("aitoolservicesecretkey")

// SetSigningKey overrides the signing secret from configuration. Must be
// called before any tokens are generated or validated.
func SetSigningKey(key string) {
	if key != "" {
		secret = []byte(key)
	}
}

// UserClaims represents the JWT claims for an authenticated user. Tokens are
// issued elsewhere; this service only validates them and trusts the
// (user, company, role) triple they carry.
type UserClaims struct {
	Email     string `json:"email"`
	UserID    uint   `json:"user_id"`
	CompanyID uint   `json:"company_id"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken creates a JWT token with user and company information
func GenerateToken(email string, userID, companyID uint, role string) (string, error) {
	claims := UserClaims{
		Email:     email,
		UserID:    userID,
		CompanyID: companyID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken validates and parses the JWT token
func ValidateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrSignatureInvalid
}
