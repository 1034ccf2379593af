package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CartCookieName = "cart"

type cartClaims struct {
	Token string `json:"token"`
	jwt.RegisteredClaims
}

// SignCartToken produces the cookie value carrying a cart token.
func SignCartToken(token string, maxAge time.Duration) (string, error) {
	now := time.Now()
	return sign(cartClaims{
		Token: token,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(maxAge)),
		},
	}, cartCookieSecret)
}

// ParseCartToken returns the cart token from a cookie value. Tampered or
// expired values fail with ErrInvalidToken.
func ParseCartToken(value string) (string, error) {
	claims := &cartClaims{}
	if err := parse(value, claims, cartCookieSecret); err != nil {
		return "", err
	}
	if claims.Token == "" {
		return "", ErrInvalidToken
	}
	return claims.Token, nil
}
