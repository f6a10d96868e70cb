package util

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ferdian3456/rosterbridge/internal/constant"
	"github.com/ferdian3456/rosterbridge/internal/model"

	"github.com/golang-jwt/jwt/v5"
)

var (
	BearerPrefix            = "Bearer "
	TokenIssuer             = "github.com/ferdian3456/rosterbridge"
	AccessTokenDuration     = 15 * time.Minute
	ErrInvalidSigningMethod = errors.New("invalid token signing method")
)

// GenerateAccessToken signs a token for a platform user id. Tokens are normally issued by
// the identity service; this is used by tooling and tests.
func GenerateAccessToken(userId string, jwtSecretKey string) (string, error) {
	if jwtSecretKey == "" {
		return "", errors.New("jwt secret key is not configured")
	}

	now := time.Now().UTC()
	claims := &model.Claims{
		UserId: userId,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    TokenIssuer,
			Subject:   fmt.Sprintf("user:%s", userId),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(jwtSecretKey))
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// ValidateAccessToken validates a bearer header and returns the platform user id it was issued for
func ValidateAccessToken(authHeader string, jwtSecretKey string) (string, error) {
	if jwtSecretKey == "" {
		return "", errors.New("jwt secret key is not configured")
	}

	tokenString, err := extractBearerToken(authHeader)
	if err != nil {
		return "", err
	}

	token, err := jwt.ParseWithClaims(tokenString, &model.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return []byte(jwtSecretKey), nil
	})

	if err != nil {
		return "", handleParseError(err)
	}

	claims, ok := token.Claims.(*model.Claims)
	if !ok || !token.Valid || claims.UserId == "" {
		return "", &model.AppError{
			Code:    constant.ERR_UNATHORIZED_ERROR,
			Message: "Authentication token is invalid",
			Param:   "accessToken",
		}
	}

	return claims.UserId, nil
}

// extractBearerToken extracts the token from "Bearer <token>" format
func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", &model.AppError{
			Code:    constant.ERR_UNATHORIZED_ERROR,
			Message: "No authentication token is provided",
			Param:   "accessToken",
		}
	}

	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", &model.AppError{
			Code:    constant.ERR_UNATHORIZED_ERROR,
			Message: "Authentication token format is not match",
			Param:   "accessToken",
		}
	}

	token := strings.TrimPrefix(authHeader, BearerPrefix)
	if token == "" {
		return "", &model.AppError{
			Code:    constant.ERR_UNATHORIZED_ERROR,
			Message: "Authentication token is empty",
			Param:   "accessToken",
		}
	}

	return token, nil
}

func handleParseError(err error) error {
	message := "Authentication token is invalid"

	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		message = "Authentication token is malformed"
	case errors.Is(err, jwt.ErrTokenExpired):
		message = "Authentication token is expired"
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		message = "Authentication token is not valid yet"
	case errors.Is(err, ErrInvalidSigningMethod):
		message = "Authentication token has invalid signing method"
	}

	return &model.AppError{
		Code:    constant.ERR_UNATHORIZED_ERROR,
		Message: message,
		Param:   "accessToken",
	}
}
