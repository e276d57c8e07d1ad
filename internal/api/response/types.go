package response

import (
	"time"

	"github.com/mcoot/eventledger/internal/model"
	"github.com/mcoot/eventledger/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Age          int       `json:"age"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Secret       string    `json:"secret"`
	Currency     int64     `json:"currency"`
	Note         string    `json:"note"`
	RegisteredAt time.Time `json:"registered_at"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:           string(p.ID),
		Name:         p.Name,
		Age:          p.Age,
		Email:        p.Email,
		Phone:        p.Phone,
		Secret:       p.Secret,
		Currency:     p.Currency,
		Note:         p.Note,
		RegisteredAt: p.RegisteredAt,
	}
}

// Event is a full ledger for one date, with the dashboard totals
type Event struct {
	Date         string    `json:"date"`
	Players      []Player  `json:"players"`
	CurrencyPot  int64     `json:"currency_pot"`
	TotalPlayers int       `json:"total_players"`
	Total        int64     `json:"total"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// EventFromModel converts a model.EventRecord
func EventFromModel(r *model.EventRecord) Event {
	players := make([]Player, len(r.Players))
	for i, p := range r.Players {
		players[i] = PlayerFromModel(p)
	}
	return Event{
		Date:         string(r.Date),
		Players:      players,
		CurrencyPot:  r.Pot,
		TotalPlayers: len(r.Players),
		Total:        r.Total(),
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// EventList lists known event dates
type EventList struct {
	Dates []string `json:"dates"`
}

// EventListFromModel converts a list of dates
func EventListFromModel(dates []model.EventDate) EventList {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = string(d)
	}
	return EventList{Dates: out}
}

// Transfer is the outcome of a currency movement
type Transfer struct {
	PlayerID     string `json:"player_id"`
	Delta        int64  `json:"delta"`
	PlayerBefore int64  `json:"player_before"`
	PlayerAfter  int64  `json:"player_after"`
	PotBefore    int64  `json:"pot_before"`
	PotAfter     int64  `json:"pot_after"`
}

// TransferFromModel converts a model.TransferResult
func TransferFromModel(t model.TransferResult) Transfer {
	return Transfer{
		PlayerID:     string(t.PlayerID),
		Delta:        t.Delta,
		PlayerBefore: t.PlayerBefore,
		PlayerAfter:  t.PlayerAfter,
		PotBefore:    t.PotBefore,
		PotAfter:     t.PotAfter,
	}
}

// AuthResponse is the response for the login endpoint
type AuthResponse struct {
	Username     string    `json:"username"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Username:     s.Username,
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Health is the health check body
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
