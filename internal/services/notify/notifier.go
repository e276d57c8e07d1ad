// Package notify delivers registration confirmations.
package notify

import (
	"context"
	"log/slog"

	"github.com/mcoot/eventledger/internal/model"
)

// Notifier is told about successful registrations. Implementations may be
// slow or fail; callers treat delivery as best effort.
type Notifier interface {
	RegistrationConfirmed(ctx context.Context, date model.EventDate, player model.Player) error
}

// LogNotifier records confirmations in the structured log instead of
// sending mail
type LogNotifier struct {
	logger *slog.Logger
}

// Ensure LogNotifier implements Notifier
var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With(slog.String("component", "notify"))}
}

func (n *LogNotifier) RegistrationConfirmed(ctx context.Context, date model.EventDate, player model.Player) error {
	n.logger.InfoContext(ctx, "registration confirmed",
		slog.String("date", string(date)),
		slog.String("player_id", string(player.ID)),
		slog.String("email", player.Email),
		slog.Int64("currency", player.Currency))
	return nil
}
