package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/baseplate/persons/config"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

type Service struct {
	jwt      *config.JWTConfig
	operator *config.OperatorConfig
	now      func() time.Time
}

func NewService(jwtCfg *config.JWTConfig, operator *config.OperatorConfig) *Service {
	return &Service{jwt: jwtCfg, operator: operator, now: time.Now}
}

type JWTClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken exchanges the operator credentials for a signed token.
func (s *Service) IssueToken(req *TokenRequest) (*TokenResponse, error) {
	if s.operator.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	// Both checks always run.
	usernameOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(s.operator.Username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword([]byte(s.operator.PasswordHash), []byte(req.Password))
	if !usernameOK || passwordErr != nil {
		return nil, ErrInvalidCredentials
	}

	expiresAt := s.now().Add(s.jwt.ExpirationDuration())
	token, err := s.generateToken(req.Username, expiresAt)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{Token: token, ExpiresAt: expiresAt}, nil
}

func (s *Service) generateToken(username string, expiresAt time.Time) (string, error) {
	claims := JWTClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwt.Secret))
}

func (s *Service) ValidateToken(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwt.Secret), nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, ErrUnauthorized
}

// HashPassword produces the value expected in OPERATOR_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
