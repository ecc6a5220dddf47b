package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidTicket = errors.New("invalid session ticket")

// TicketClaims bind a websocket client to the session it may resume.
type TicketClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

type TicketIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewTicketIssuer(secret string, ttl time.Duration) *TicketIssuer {
	return &TicketIssuer{secret: []byte(secret), ttl: ttl}
}

// GenerateTicket creates a signed ticket for the session.
func (ti *TicketIssuer) GenerateTicket(sessionID string) (string, error) {
	now := time.Now()
	claims := &TicketClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// ValidateTicket checks the signature and expiry and returns the claims
func (ti *TicketIssuer) ValidateTicket(tokenString string) (*TicketClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TicketClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return ti.secret, nil
	})
	if err != nil {
		return nil, errors.Join(ErrInvalidTicket, err)
	}

	if claims, ok := token.Claims.(*TicketClaims); ok && token.Valid && claims.SessionID != "" {
		return claims, nil
	}

	return nil, ErrInvalidTicket
}
