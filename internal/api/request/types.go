package request

import "github.com/mcoot/eventledger/internal/model"

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterPlayerRequest is the public registration form
type RegisterPlayerRequest struct {
	Name   string `json:"name"`
	Age    *int   `json:"age"`
	Secret string `json:"secret"`
	Email  string `json:"email"`
	Phone  string `json:"phone"`
}

// Draft converts the form into a model draft. A missing age is reported
// by validation as negative.
func (r RegisterPlayerRequest) Draft() model.PlayerDraft {
	age := -1
	if r.Age != nil {
		age = *r.Age
	}
	return model.PlayerDraft{
		Name:   r.Name,
		Age:    age,
		Secret: r.Secret,
		Email:  r.Email,
		Phone:  r.Phone,
	}
}

// RenamePlayerRequest is the request body for renaming a player
type RenamePlayerRequest struct {
	Name string `json:"name"`
}

// NoteRequest sets a player note
type NoteRequest struct {
	Note string `json:"note"`
}

// EventNotesRequest sets the event-level notes
type EventNotesRequest struct {
	Notes string `json:"notes"`
}

// TransferRequest moves delta between a player and the pot
type TransferRequest struct {
	Delta *int64 `json:"delta"`
}

// AmountRequest carries a positive amount for deduct, credit and funding
type AmountRequest struct {
	Amount int64 `json:"amount"`
}
