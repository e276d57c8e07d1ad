package model

import "time"

// ChangeType identifies the kind of ledger mutation
type ChangeType string

const (
	// Roster changes
	ChangeEventCreated     ChangeType = "event_created"
	ChangePlayerRegistered ChangeType = "player_registered"
	ChangePlayerRenamed    ChangeType = "player_renamed"
	ChangePlayerRemoved    ChangeType = "player_removed"

	// Currency changes
	ChangeCurrencyTransferred ChangeType = "currency_transferred"
	ChangePotFunded           ChangeType = "pot_funded"

	// Notes
	ChangeEventAnnotated  ChangeType = "event_annotated"
	ChangePlayerAnnotated ChangeType = "player_annotated"
)

// Change describes a committed mutation of an event record
type Change struct {
	Type      ChangeType `json:"type"`
	Date      EventDate  `json:"date"`
	PlayerID  PlayerID   `json:"player_id,omitempty"` // Empty for event-level changes
	Timestamp time.Time  `json:"timestamp"`

	// Snapshot of the record after the change
	Pot          int64 `json:"currency_pot"`
	Total        int64 `json:"total"`
	TotalPlayers int   `json:"total_players"`

	Transfer *TransferResult `json:"transfer,omitempty"`
}

// NewChange builds a Change from the committed record
func NewChange(t ChangeType, record *EventRecord, playerID PlayerID) Change {
	return Change{
		Type:         t,
		Date:         record.Date,
		PlayerID:     playerID,
		Timestamp:    record.UpdatedAt,
		Pot:          record.Pot,
		Total:        record.Total(),
		TotalPlayers: len(record.Players),
	}
}
