package model

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the platform user id of the caller.
type Claims struct {
	UserId string `json:"userId"`
	jwt.RegisteredClaims
}
