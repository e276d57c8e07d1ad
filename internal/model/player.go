package model

import (
	"regexp"
	"strings"
	"time"
)

// DefaultStartingCurrency is the balance a newly registered player receives
const DefaultStartingCurrency int64 = 2000

// PlayerID is a stable surrogate identifier for a player within an event
type PlayerID string

// Player is a registrant of a single event date
type Player struct {
	ID           PlayerID  `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Secret       string    `json:"secret"`
	Currency     int64     `json:"currency"`
	Note         string    `json:"note"`
	RegisteredAt time.Time `json:"registered_at"`
}

// PlayerDraft holds the registration form input for a new player
type PlayerDraft struct {
	Name   string
	Age    int
	Secret string
	Email  string
	Phone  string
}

// emailPattern accepts a basic local@domain.tld shape
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s.]+$`)

// Normalize returns a copy with surrounding whitespace trimmed
func (d PlayerDraft) Normalize() PlayerDraft {
	return PlayerDraft{
		Name:   strings.TrimSpace(d.Name),
		Age:    d.Age,
		Secret: strings.TrimSpace(d.Secret),
		Email:  strings.TrimSpace(d.Email),
		Phone:  strings.TrimSpace(d.Phone),
	}
}

// Validate checks required fields and the email shape.
// The draft is expected to be normalized.
func (d PlayerDraft) Validate() error {
	switch {
	case d.Name == "":
		return NewValidationError("name", "is required")
	case d.Age < 0:
		return NewValidationError("age", "must not be negative")
	case d.Secret == "":
		return NewValidationError("secret", "is required")
	case d.Email == "":
		return NewValidationError("email", "is required")
	case !emailPattern.MatchString(d.Email):
		return NewValidationError("email", "must look like name@domain.tld")
	case d.Phone == "":
		return NewValidationError("phone", "is required")
	}
	return nil
}

// sameEmail compares emails trimmed and case-insensitively
func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
