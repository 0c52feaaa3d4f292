package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brightkatongo/learn-hub/internal/config"
)

// ReferenceCodeLength is the number of digits in a payment reference
// code, the short token a payer keys into the USSD menu.
const ReferenceCodeLength = 8

// ReferenceGenerator draws numeric reference codes from an explicit
// random source so tests can substitute a deterministic one.
type ReferenceGenerator struct {
	source io.Reader
}

// NewReferenceGenerator creates a generator backed by the given random
// source. Pass crypto/rand.Reader in production.
func NewReferenceGenerator(source io.Reader) *ReferenceGenerator {
	if source == nil {
		source = rand.Reader
	}
	return &ReferenceGenerator{source: source}
}

// Generate draws an 8-digit numeric code uniformly at random. Uniqueness
// against existing transactions is the caller's responsibility.
func (g *ReferenceGenerator) Generate() (string, error) {
	buf := make([]byte, ReferenceCodeLength)
	digits := make([]byte, ReferenceCodeLength)
	for i := 0; i < ReferenceCodeLength; {
		if _, err := io.ReadFull(g.source, buf[:1]); err != nil {
			return "", fmt.Errorf("read random source: %w", err)
		}
		// Rejection sampling keeps the digit distribution uniform.
		if buf[0] >= 250 {
			continue
		}
		digits[i] = '0' + buf[0]%10
		i++
	}
	return string(digits), nil
}

// RenderTemplate substitutes {placeholder} tokens in an SMS template.
func RenderTemplate(template string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for key, value := range vars {
		pairs = append(pairs, "{"+key+"}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// GenerateJWT generates a signed bearer token for a user.
func GenerateJWT(userID string, role string, cfg *config.Config) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Second * time.Duration(cfg.JWT.ExpiresIn)).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.JWT.Secret))
}

// ValidateJWT parses and validates a bearer token, returning its claims.
func ValidateJWT(tokenString string, cfg *config.Config) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(cfg.JWT.Secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
