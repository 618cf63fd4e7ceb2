// Package auth issues and verifies the id tokens handed to seated players.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid id token")

// Claims identifies one seat in one game.
type Claims struct {
	PlayerID string
	GameID   string
	Color    string
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs an HS256 token for playerID seated as color in gameID.
func (i *Issuer) Issue(playerID, gameID, color string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   playerID,
		"game":  gameID,
		"color": color,
		"iat":   now.Unix(),
		"exp":   now.Add(i.ttl).Unix(),
	})
	ss, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign id token: %w", err)
	}
	return ss, nil
}

// Verify checks signature, algorithm and expiry and returns the seat claims.
func (i *Issuer) Verify(tokenStr string) (Claims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	sub, _ := claims["sub"].(string)
	game, _ := claims["game"].(string)
	color, _ := claims["color"].(string)
	if sub == "" || game == "" || color == "" {
		return Claims{}, fmt.Errorf("%w: missing claims", ErrInvalidToken)
	}
	return Claims{PlayerID: sub, GameID: game, Color: color}, nil
}
