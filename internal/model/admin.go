package model

import "time"

// Admin is an account allowed to manage event ledgers
type Admin struct {
	Username     string    `json:"username"`      // login username (immutable)
	PasswordHash string    `json:"password_hash"` // bcrypt hash
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
