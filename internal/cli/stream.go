package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newStreamCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stream <date>",
		Short: "Stream live ledger changes for an event",
		Long: `Connect to the event's SSE endpoint and print ledger changes as they happen.

Each change arrives as an event-updated message carrying the change type
(player_registered, currency_transferred, pot_funded and so on) with the new pot and totals.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// sseEventUpdated names ledger change messages on the stream
const sseEventUpdated = "event-updated"

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(date string, jsonOutput bool) error {
	url := strings.TrimSuffix(cfg.ServerURL, "/") + eventPath(date) + "/stream"

	// Create request
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	// Set up cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	req = req.WithContext(ctx)

	// Make request
	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Printf("Connected to event %s\n", date)
	}

	// Parse SSE stream
	scanner := bufio.NewScanner(resp.Body)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "event: ") {
			currentEvent = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		} else if line == "" {
			// End of event
			if currentEvent != "" {
				data := strings.Join(dataLines, "\n")
				printEvent(currentEvent, data, jsonOutput)
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil {
		// Context cancellation is expected
		if ctx.Err() != nil {
			if !jsonOutput {
				fmt.Println("\nDisconnected")
			}
			return nil
		}
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

// ledgerChange is the payload of an event-updated message
type ledgerChange struct {
	Type         string          `json:"type"`
	PlayerID     string          `json:"player_id"`
	Pot          int64           `json:"currency_pot"`
	Total        int64           `json:"total"`
	TotalPlayers int             `json:"total_players"`
	Transfer     *TransferResult `json:"transfer"`
}

func printEvent(event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := SSEEvent{
			Time:  now,
			Event: event,
			Data:  data,
		}
		jsonData, _ := json.Marshal(evt)
		fmt.Println(string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	fmt.Printf("[%s] %s\n", timestamp, describeEvent(event, data))
}

// describeEvent renders a one-line summary of an SSE message
func describeEvent(event, data string) string {
	var change ledgerChange
	if event != sseEventUpdated || json.Unmarshal([]byte(data), &change) != nil {
		return event + ": " + strings.ReplaceAll(data, "\n", " ")
	}

	var b strings.Builder
	b.WriteString(change.Type)
	if change.PlayerID != "" {
		fmt.Fprintf(&b, " %s", change.PlayerID)
	}
	if t := change.Transfer; t != nil {
		fmt.Fprintf(&b, " %+d (%d -> %d)", t.Delta, t.PlayerBefore, t.PlayerAfter)
	}
	fmt.Fprintf(&b, " | pot %d, total %d, players %d", change.Pot, change.Total, change.TotalPlayers)
	return b.String()
}
