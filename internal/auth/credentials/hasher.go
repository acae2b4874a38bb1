package credentials

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	HashVersionBcrypt = "bcrypt"
)

var ErrPasswordTooShort = errors.New("password too short")

// HashPassword hashes a plaintext password using bcrypt at the given cost.
// A cost of zero selects bcrypt.DefaultCost.
func HashPassword(password string, cost int) (hash string, version string, err error) {
	if len(password) < 8 {
		return "", "", ErrPasswordTooShort
	}

	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", "", err
	}

	return string(bytes), HashVersionBcrypt, nil
}

// VerifyPassword compares plaintext password with stored hash.
func VerifyPassword(hash string, password string) error {
	return bcrypt.CompareHashAndPassword(
		[]byte(hash),
		[]byte(password),
	)
}

// Pair is one accepted email/password combination. The plaintext
// password is not retained.
type Pair struct {
	email string
	hash  string
}

func NewPair(email, password string, cost int) (*Pair, error) {
	if strings.TrimSpace(email) == "" {
		return nil, errors.New("credentials: email is required")
	}

	hash, _, err := HashPassword(password, cost)
	if err != nil {
		return nil, err
	}

	return &Pair{email: email, hash: hash}, nil
}

// Email returns the accepted email address.
func (p *Pair) Email() string {
	return p.email
}

// Match reports whether email and password are exactly the stored pair.
func (p *Pair) Match(email, password string) bool {
	if email != p.email {
		return false
	}
	return VerifyPassword(p.hash, password) == nil
}
