package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/oakhaven/contracts/internal/model"
)

var ErrInvalidToken = errors.New("invalid access token")

// Principal is the authenticated caller: its location determines which
// commit rules apply to the contracts it edits.
type Principal struct {
	UserID       string
	LocationID   string
	LocationType model.NeedType
	Role         string
}

type Parser struct {
	secret []byte
}

func NewParser(secret string) *Parser {
	return &Parser{secret: []byte(secret)}
}

type claims struct {
	jwt.RegisteredClaims
	LocationID   string `json:"location_id"`
	LocationType string `json:"location_type"`
	Role         string `json:"role"`
}

func (p *Parser) Parse(tokenString string) (Principal, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, ErrInvalidToken
	}
	return Principal{
		UserID:       c.Subject,
		LocationID:   c.LocationID,
		LocationType: model.NeedType(c.LocationType),
		Role:         c.Role,
	}, nil
}
