package service

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordEncoder turns an accepted password into its stored form.
type PasswordEncoder interface {
	Encode(password string) (string, error)
}

// PlainPasswordEncoder stores the password as given.
// Credentials are not hashed unless BcryptPasswordEncoder is configured.
type PlainPasswordEncoder struct{}

func (PlainPasswordEncoder) Encode(password string) (string, error) {
	return password, nil
}

type BcryptPasswordEncoder struct {
	Cost int
}

func (e BcryptPasswordEncoder) Encode(password string) (string, error) {
	cost := e.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// NewPasswordEncoder resolves the encoder name used in configuration.
func NewPasswordEncoder(name string) (PasswordEncoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "plain":
		return PlainPasswordEncoder{}, nil
	case "bcrypt":
		return BcryptPasswordEncoder{}, nil
	default:
		return nil, fmt.Errorf("unknown password encoder %q", name)
	}
}
