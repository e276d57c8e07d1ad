package model

import (
	"strings"
	"time"
)

// EventDateLayout is the ISO-8601 calendar date format used as record key
const EventDateLayout = "2006-01-02"

// EventDate identifies an event record (YYYY-MM-DD)
type EventDate string

// ParseEventDate validates and canonicalizes a YYYY-MM-DD string
func ParseEventDate(s string) (EventDate, error) {
	t, err := time.Parse(EventDateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", NewValidationError("date", "must be a calendar date in YYYY-MM-DD form")
	}
	return EventDate(t.Format(EventDateLayout)), nil
}

// EventRecord is the per-date aggregate of players, pot and notes
type EventRecord struct {
	Date      EventDate `json:"date"`
	Players   []Player  `json:"players"`
	Pot       int64     `json:"currency_pot"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewEventRecord creates an empty record for a date
func NewEventRecord(date EventDate, now time.Time) *EventRecord {
	return &EventRecord{
		Date:      date,
		Players:   []Player{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the record
func (r *EventRecord) Clone() *EventRecord {
	c := *r
	c.Players = make([]Player, len(r.Players))
	copy(c.Players, r.Players)
	return &c
}

// Total returns the sum of all player balances plus the pot
func (r *EventRecord) Total() int64 {
	total := r.Pot
	for _, p := range r.Players {
		total += p.Currency
	}
	return total
}

// IndexOf returns the position of the player with id, or -1
func (r *EventRecord) IndexOf(id PlayerID) int {
	for i, p := range r.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Player returns the player at index
func (r *EventRecord) Player(index int) (*Player, error) {
	if index < 0 || index >= len(r.Players) {
		return nil, ErrPlayerNotFound
	}
	return &r.Players[index], nil
}

// HasEmail reports whether any player already registered with email
func (r *EventRecord) HasEmail(email string) bool {
	for _, p := range r.Players {
		if sameEmail(p.Email, email) {
			return true
		}
	}
	return false
}
