package utils

import (
	"errors"
	"time"

	"ambulink/config"
	"ambulink/models"

	"github.com/golang-jwt/jwt"
)

const defaultTokenTTL = 24 * time.Hour

const devSecret = "ambulink-dev-secret"

var (
	errInvalidToken = errors.New("invalid token")
	// ErrMissingJWTSecret is returned in production when JWT_SECRET is unset.
	ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in production")
)

// CheckJWTSecret fails when tokens would be signed with the development key
// in production.
func CheckJWTSecret() error {
	if config.AppConfig.JWTSecret == "" && config.IsProduction() {
		return ErrMissingJWTSecret
	}
	return nil
}

func secretKey() ([]byte, error) {
	if err := CheckJWTSecret(); err != nil {
		return nil, err
	}
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = devSecret
	}
	return []byte(secret), nil
}

// GenerateToken creates a signed HS256 token for the given account.
func GenerateToken(user *models.User, duration time.Duration) (string, error) {
	if duration <= 0 {
		duration = defaultTokenTTL
	}
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"role":  string(user.Role),
		"email": user.Email,
		"name":  user.Name,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	key, err := secretKey()
	if err != nil {
		return "", err
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secretKey()
	})
}

// ActorFromToken validates a token and returns the caller it identifies.
func ActorFromToken(tokenString string) (models.Actor, error) {
	token, err := ValidateToken(tokenString)
	if err != nil {
		return models.Actor{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return models.Actor{}, errInvalidToken
	}

	sub, _ := claims["sub"].(string)
	role, _ := claims["role"].(string)
	if sub == "" || !models.Role(role).Valid() {
		return models.Actor{}, errInvalidToken
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return models.Actor{ID: sub, Role: models.Role(role), Email: email, Name: name}, nil
}
