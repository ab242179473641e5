package utils

import (
	"errors"
	"os"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
)

const refreshTokenTTL = 7 * 24 * time.Hour

var (
	configuredSecret string
	accessTokenTTL   = 15 * time.Minute
)

// ConfigureJWT sets the signing secret and access token lifetime for the
// process. Config calls it once at startup so Doppler-resolved secrets are
// what tokens get signed with; until then the environment fallback applies.
func ConfigureJWT(secret string, expirationHours int) {
	configuredSecret = secret
	if expirationHours > 0 {
		accessTokenTTL = time.Duration(expirationHours) * time.Hour
	}
}

// Claims represents the JWT claims
type Claims struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	IsAdmin bool      `json:"is_admin"`
	jwt.StandardClaims
}

// TokenPair represents an access and refresh token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // seconds
	TokenType    string `json:"token_type"`
}

// getJWTSecret returns the configured JWT secret, falling back to the
// environment and then a default for development
func getJWTSecret() string {
	if configuredSecret != "" {
		return configuredSecret
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	// Default secret for development only
	return "partnerly_development_jwt_secret_key"
}

func signedToken(userID uuid.UUID, email string, isAdmin bool, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:  userID,
		Email:   email,
		IsAdmin: isAdmin,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(getJWTSecret()))
}

// GenerateTokenPair creates access and refresh tokens
func GenerateTokenPair(userID uuid.UUID, email string, isAdmin bool) (TokenPair, error) {
	accessToken, err := signedToken(userID, email, isAdmin, accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := signedToken(userID, email, isAdmin, refreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(accessTokenTTL.Seconds()),
		TokenType:    "Bearer",
	}, nil
}

// ValidateToken validates a JWT token and returns the claims
func ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(getJWTSecret()), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("failed to parse token claims")
	}
	return claims, nil
}
