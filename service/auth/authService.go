package authsvc

import (
	"crypto/subtle"
	"errors"

	jwtutil "github.com/arzeeee/libloan/util/jwt"
)

var ErrInvalidKey = errors.New("invalid api key")

// Service exchanges the configured admin API key for a short-lived staff
// token. There is no user table in this system; write access is a single
// shared credential.
type Service interface {
	Token(apiKey string) (string, error)
}

type service struct {
	adminKey string
	secret   string
}

func New(adminKey, secret string) Service {
	return &service{adminKey: adminKey, secret: secret}
}

func (s *service) Token(apiKey string) (string, error) {
	if s.adminKey == "" || s.secret == "" {
		return "", ErrInvalidKey
	}
	if subtle.ConstantTimeCompare([]byte(apiKey), []byte(s.adminKey)) != 1 {
		return "", ErrInvalidKey
	}
	return jwtutil.Issue(s.secret, "staff", "staff", 24)
}
