package middleware

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer identifies the service that issues all access tokens.
const TokenIssuer = "Nyumbani"

// TokenClaims is the subset of claims the billing service relies on.
type TokenClaims struct {
	UserID         string
	OrganizationID string
	Role           string
}

// ValidateToken checks the token's signature and standard claims and
// extracts the identity claims. Any deviation returns a descriptive error.
func ValidateToken(tokenString string, publicKey *rsa.PublicKey) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, errors.New("missing expiration claim")
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, jwt.ErrTokenExpired
	}

	iss, ok := claims["iss"].(string)
	if !ok {
		return nil, errors.New("missing issuer claim")
	}
	if iss != TokenIssuer {
		return nil, errors.New("invalid token issuer")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("missing subject claim")
	}

	out := &TokenClaims{UserID: sub}
	if org, ok := claims["org"].(string); ok {
		out.OrganizationID = org
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	return out, nil
}
