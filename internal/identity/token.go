package identity

import (
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

// parseAccessToken verifies a provider access token locally. GoTrue signs
// access tokens with HS256 using the project JWT secret, and the claims
// carry the account id and email, so no round trip is needed.
func (c *Client) parseAccessToken(accessToken string) (*User, error) {
	token, err := jwt.Parse(accessToken, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, &Error{Status: http.StatusUnauthorized, Message: "unexpected token signing method"}
		}
		return []byte(c.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "invalid token claims"}
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, &Error{Status: http.StatusUnauthorized, Message: "token missing subject claim"}
	}

	user := &User{ID: sub}
	if email, ok := claims["email"].(string); ok {
		user.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		user.Role = role
	}
	if aud, ok := claims["aud"].(string); ok {
		user.Aud = aud
	}
	return user, nil
}
