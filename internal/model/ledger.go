package model

import (
	"math"
	"strings"
	"time"
)

// TransferResult describes a completed movement between a player and the pot
type TransferResult struct {
	PlayerID     PlayerID `json:"player_id"`
	Delta        int64    `json:"delta"`
	PlayerBefore int64    `json:"player_before"`
	PlayerAfter  int64    `json:"player_after"`
	PotBefore    int64    `json:"pot_before"`
	PotAfter     int64    `json:"pot_after"`
}

// Register validates draft and appends a new player with the starting balance.
// Emails must be unique within the record (trimmed, case-insensitive).
func (r *EventRecord) Register(id PlayerID, draft PlayerDraft, startingCurrency int64, now time.Time) (Player, error) {
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return Player{}, err
	}
	if id == "" {
		return Player{}, NewValidationError("id", "is required")
	}
	if startingCurrency < 0 {
		return Player{}, NewValidationError("currency", "starting balance must not be negative")
	}
	if startingCurrency > math.MaxInt64-r.Total() {
		return Player{}, NewValidationError("currency", "would overflow the event total")
	}
	if r.HasEmail(draft.Email) {
		return Player{}, ErrDuplicateEmail
	}

	player := Player{
		ID:           id,
		Name:         draft.Name,
		Age:          draft.Age,
		Email:        draft.Email,
		Phone:        draft.Phone,
		Secret:       draft.Secret,
		Currency:     startingCurrency,
		Note:         "",
		RegisteredAt: now,
	}
	r.Players = append(r.Players, player)
	r.UpdatedAt = now
	return player, nil
}

// Transfer moves currency between the player at index and the pot.
// A positive delta credits the player from the pot, a negative delta
// deducts from the player into the pot. Both checks run before either
// balance changes, so a rejected transfer leaves the record untouched.
func (r *EventRecord) Transfer(index int, delta int64, now time.Time) (TransferResult, error) {
	player, err := r.Player(index)
	if err != nil {
		return TransferResult{}, err
	}

	if delta > 0 && delta > r.Pot {
		return TransferResult{}, ErrInsufficientPot
	}
	// Currency is never negative, so -player.Currency cannot overflow
	if delta < 0 && delta < -player.Currency {
		return TransferResult{}, ErrInsufficientBalance
	}

	result := TransferResult{
		PlayerID:     player.ID,
		Delta:        delta,
		PlayerBefore: player.Currency,
		PotBefore:    r.Pot,
	}

	player.Currency += delta
	r.Pot -= delta

	result.PlayerAfter = player.Currency
	result.PotAfter = r.Pot
	if delta != 0 {
		r.UpdatedAt = now
	}
	return result, nil
}

// Rename overwrites the display name of the player at index.
// Names are display data only and need not be unique.
func (r *EventRecord) Rename(index int, newName string, now time.Time) (Player, error) {
	player, err := r.Player(index)
	if err != nil {
		return Player{}, err
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return Player{}, NewValidationError("name", "is required")
	}
	player.Name = newName
	r.UpdatedAt = now
	return *player, nil
}

// Remove deletes the player at index and returns it
func (r *EventRecord) Remove(index int, now time.Time) (Player, error) {
	player, err := r.Player(index)
	if err != nil {
		return Player{}, err
	}
	removed := *player
	r.Players = append(r.Players[:index], r.Players[index+1:]...)
	r.UpdatedAt = now
	return removed, nil
}

// AnnotationTarget selects the note that Annotate overwrites
type AnnotationTarget struct {
	index    int
	isPlayer bool
}

// EventTarget addresses the event-level note
func EventTarget() AnnotationTarget {
	return AnnotationTarget{}
}

// PlayerTarget addresses the note of the player at index
func PlayerTarget(index int) AnnotationTarget {
	return AnnotationTarget{index: index, isPlayer: true}
}

// Annotate overwrites the selected note; an empty text clears it
func (r *EventRecord) Annotate(target AnnotationTarget, text string, now time.Time) error {
	if !target.isPlayer {
		r.Notes = text
		r.UpdatedAt = now
		return nil
	}
	player, err := r.Player(target.index)
	if err != nil {
		return err
	}
	player.Note = text
	r.UpdatedAt = now
	return nil
}

// FundPot adds new currency to the pot. It is the only operation that
// changes the record total.
func (r *EventRecord) FundPot(amount int64, now time.Time) error {
	if amount <= 0 {
		return NewValidationError("amount", "must be positive")
	}
	if amount > math.MaxInt64-r.Total() {
		return NewValidationError("amount", "would overflow the event total")
	}
	r.Pot += amount
	r.UpdatedAt = now
	return nil
}
