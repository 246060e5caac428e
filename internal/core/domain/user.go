package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID        string
	FullName  string
	Email     string
	Phone     string
	Password  string
	Budget    decimal.Decimal
	CreatedAt time.Time
}

// A Session is the authenticated user. Token is the user ID,
// the user API has no real tokens.
type Session struct {
	User  User
	Token string
}

func NewSession(u User) Session {
	return Session{User: u, Token: u.ID}
}
