package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case Event:
		o.printEvent(v)
	case EventList:
		o.printEventList(v)
	case TransferResult:
		o.printTransfer(v)
	case AuthResult:
		o.printAuthResult(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
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

// Event response type
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

// EventList response type
type EventList struct {
	Dates []string `json:"dates"`
}

// TransferResult response type
type TransferResult struct {
	PlayerID     string `json:"player_id"`
	Delta        int64  `json:"delta"`
	PlayerBefore int64  `json:"player_before"`
	PlayerAfter  int64  `json:"player_after"`
	PotBefore    int64  `json:"pot_before"`
	PotAfter     int64  `json:"pot_after"`
}

// AuthResult is the login response
type AuthResult struct {
	Username     string    `json:"username"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (o *Output) printPlayer(p Player) {
	fmt.Printf("Player: %s (%s)\n", p.Name, p.ID)
	fmt.Printf("Age: %d\n", p.Age)
	fmt.Printf("Email: %s\n", p.Email)
	fmt.Printf("Phone: %s\n", p.Phone)
	fmt.Printf("Currency: %d\n", p.Currency)
	if p.Note != "" {
		fmt.Printf("Note: %s\n", p.Note)
	}
}

func (o *Output) printEvent(e Event) {
	fmt.Printf("Event: %s\n", e.Date)
	fmt.Printf("Pot: %d\n", e.CurrencyPot)
	fmt.Printf("Total: %d\n", e.Total)
	if e.Notes != "" {
		fmt.Printf("Notes: %s\n", e.Notes)
	}
	fmt.Printf("Players (%d):\n", e.TotalPlayers)
	if len(e.Players) == 0 {
		return
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "  ID\tNAME\tCURRENCY\tNOTE")
	for _, p := range e.Players {
		_, _ = fmt.Fprintf(tw, "  %s\t%s\t%d\t%s\n", p.ID, p.Name, p.Currency, p.Note)
	}
	_ = tw.Flush()
}

func (o *Output) printEventList(l EventList) {
	if len(l.Dates) == 0 {
		fmt.Println("No events")
		return
	}
	for _, d := range l.Dates {
		fmt.Println(d)
	}
}

func (o *Output) printTransfer(t TransferResult) {
	fmt.Printf("Player %s: %d -> %d\n", t.PlayerID, t.PlayerBefore, t.PlayerAfter)
	fmt.Printf("Pot: %d -> %d\n", t.PotBefore, t.PotAfter)
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("Logged in as %s\n", a.Username)
	fmt.Printf("Session expires: %s\n", a.ExpiresAt.Local().Format(time.RFC1123))
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Storage: %s\n", h.Storage)
}
