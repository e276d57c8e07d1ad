// Package ledger runs the load, validate, mutate, save cycle for event
// records and fans out the resulting changes.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/eventledger/internal/datelock"
	"github.com/mcoot/eventledger/internal/dependencies/clock"
	"github.com/mcoot/eventledger/internal/dependencies/random"
	"github.com/mcoot/eventledger/internal/model"
	"github.com/mcoot/eventledger/internal/services/notify"
	"github.com/mcoot/eventledger/internal/storage"
)

const (
	// PlayerIDLength is the length of the random part of a player id
	PlayerIDLength = 12
	// PlayerIDPrefix marks generated player ids
	PlayerIDPrefix = "p_"

	notifyTimeout = 10 * time.Second
)

// Publisher receives every committed change
type Publisher interface {
	Publish(change model.Change)
}

// Config holds configuration for the ledger service
type Config struct {
	StartingCurrency int64
}

// DefaultConfig returns default ledger configuration
func DefaultConfig() Config {
	return Config{StartingCurrency: model.DefaultStartingCurrency}
}

// Service owns all mutations of event records
type Service struct {
	storage   storage.Storage
	locks     *datelock.Locker
	clock     clock.Clock
	random    random.Random
	notifier  notify.Notifier
	publisher Publisher
	logger    *slog.Logger
	cfg       Config

	notifications sync.WaitGroup
}

// New creates a new ledger Service. notifier and publisher may be nil.
func New(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	notifier notify.Notifier,
	publisher Publisher,
	logger *slog.Logger,
	cfg Config,
) *Service {
	return &Service{
		storage:   storage,
		locks:     datelock.New(),
		clock:     clock,
		random:    random,
		notifier:  notifier,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "ledger")),
		cfg:       cfg,
	}
}

// Wait blocks until in-flight registration notifications have finished
func (s *Service) Wait() {
	s.notifications.Wait()
}

// update serializes a mutation of one date and commits it through storage.
// When create is set a missing record is started empty. The returned flag
// reports whether the record was created by this call.
func (s *Service) update(ctx context.Context, date model.EventDate, create bool, fn func(r *model.EventRecord, now time.Time) error) (*model.EventRecord, bool, error) {
	if err := checkDate(date); err != nil {
		return nil, false, err
	}

	unlock := s.locks.Lock(date)
	defer unlock()

	now := s.clock.Now()
	var fresh *model.EventRecord
	var newRecord func() *model.EventRecord
	if create {
		newRecord = func() *model.EventRecord {
			fresh = model.NewEventRecord(date, now)
			return fresh
		}
	}

	created := false
	record, err := s.storage.UpdateEvent(ctx, date, newRecord, func(r *model.EventRecord) error {
		created = r == fresh
		return fn(r, now)
	})
	if err != nil {
		return nil, false, err
	}
	return record, created, nil
}

func (s *Service) publish(change model.Change) {
	if s.publisher != nil {
		s.publisher.Publish(change)
	}
}

func checkDate(date model.EventDate) error {
	_, err := model.ParseEventDate(string(date))
	return err
}

func indexOf(r *model.EventRecord, id model.PlayerID) (int, error) {
	idx := r.IndexOf(id)
	if idx < 0 {
		return -1, model.ErrPlayerNotFound
	}
	return idx, nil
}

// CreateEvent makes sure a record exists for date. It is idempotent; the
// flag reports whether this call created it.
func (s *Service) CreateEvent(ctx context.Context, date model.EventDate) (*model.EventRecord, bool, error) {
	if err := checkDate(date); err != nil {
		return nil, false, err
	}

	existing, err := s.storage.GetEvent(ctx, date)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, model.ErrEventNotFound) {
		return nil, false, err
	}

	record, created, err := s.update(ctx, date, true, func(r *model.EventRecord, now time.Time) error {
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.InfoContext(ctx, "event created", slog.String("date", string(date)))
		s.publish(model.NewChange(model.ChangeEventCreated, record, ""))
	}
	return record, created, nil
}

// GetEvent returns the record for date
func (s *Service) GetEvent(ctx context.Context, date model.EventDate) (*model.EventRecord, error) {
	if err := checkDate(date); err != nil {
		return nil, err
	}
	return s.storage.GetEvent(ctx, date)
}

// ListEventDates returns every known event date in ascending order
func (s *Service) ListEventDates(ctx context.Context) ([]model.EventDate, error) {
	return s.storage.ListEventDates(ctx)
}

// Register adds a player to the event on date, creating the record if
// needed. The confirmation is sent in the background.
func (s *Service) Register(ctx context.Context, date model.EventDate, draft model.PlayerDraft) (model.Player, error) {
	var player model.Player
	record, created, err := s.update(ctx, date, true, func(r *model.EventRecord, now time.Time) error {
		id := s.newPlayerID(r)
		p, err := r.Register(id, draft, s.cfg.StartingCurrency, now)
		if err != nil {
			return err
		}
		player = p
		return nil
	})
	if err != nil {
		return model.Player{}, err
	}

	if created {
		s.publish(model.NewChange(model.ChangeEventCreated, record, ""))
	}
	s.logger.InfoContext(ctx, "player registered",
		slog.String("date", string(date)),
		slog.String("player_id", string(player.ID)),
		slog.Int("total_players", len(record.Players)))
	s.publish(model.NewChange(model.ChangePlayerRegistered, record, player.ID))
	s.notifyRegistered(ctx, date, player)

	return player, nil
}

// newPlayerID generates an id not yet used in r
func (s *Service) newPlayerID(r *model.EventRecord) model.PlayerID {
	for {
		id := model.PlayerID(PlayerIDPrefix + s.random.String(PlayerIDLength, random.LowerAlphanumeric))
		if r.IndexOf(id) < 0 {
			return id
		}
	}
}

func (s *Service) notifyRegistered(ctx context.Context, date model.EventDate, player model.Player) {
	if s.notifier == nil {
		return
	}

	// Detach from the request so the confirmation outlives it
	ctx = context.WithoutCancel(ctx)
	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()

		if err := s.notifier.RegistrationConfirmed(ctx, date, player); err != nil {
			s.logger.WarnContext(ctx, "registration confirmation failed",
				slog.String("date", string(date)),
				slog.String("player_id", string(player.ID)),
				slog.Any("error", err))
		}
	}()
}

// Transfer moves delta between the player and the pot. Positive credits
// the player, negative deducts into the pot, zero changes nothing.
func (s *Service) Transfer(ctx context.Context, date model.EventDate, playerID model.PlayerID, delta int64) (model.TransferResult, error) {
	var result model.TransferResult
	record, _, err := s.update(ctx, date, false, func(r *model.EventRecord, now time.Time) error {
		idx, err := indexOf(r, playerID)
		if err != nil {
			return err
		}
		result, err = r.Transfer(idx, delta, now)
		return err
	})
	if err != nil {
		s.logger.DebugContext(ctx, "transfer rejected",
			slog.String("date", string(date)),
			slog.String("player_id", string(playerID)),
			slog.Int64("delta", delta),
			slog.Any("error", err))
		return model.TransferResult{}, err
	}

	s.logger.InfoContext(ctx, "currency transferred",
		slog.String("date", string(date)),
		slog.String("player_id", string(playerID)),
		slog.Int64("delta", delta),
		slog.Int64("pot", result.PotAfter))

	change := model.NewChange(model.ChangeCurrencyTransferred, record, playerID)
	change.Transfer = &result
	s.publish(change)
	return result, nil
}

// Deduct moves a positive amount from the player into the pot
func (s *Service) Deduct(ctx context.Context, date model.EventDate, playerID model.PlayerID, amount int64) (model.TransferResult, error) {
	if amount <= 0 {
		return model.TransferResult{}, model.NewValidationError("amount", "must be positive")
	}
	return s.Transfer(ctx, date, playerID, -amount)
}

// Credit moves a positive amount from the pot to the player
func (s *Service) Credit(ctx context.Context, date model.EventDate, playerID model.PlayerID, amount int64) (model.TransferResult, error) {
	if amount <= 0 {
		return model.TransferResult{}, model.NewValidationError("amount", "must be positive")
	}
	return s.Transfer(ctx, date, playerID, amount)
}

// Rename changes a player's display name
func (s *Service) Rename(ctx context.Context, date model.EventDate, playerID model.PlayerID, newName string) (model.Player, error) {
	var player model.Player
	record, _, err := s.update(ctx, date, false, func(r *model.EventRecord, now time.Time) error {
		idx, err := indexOf(r, playerID)
		if err != nil {
			return err
		}
		player, err = r.Rename(idx, newName, now)
		return err
	})
	if err != nil {
		return model.Player{}, err
	}

	s.logger.InfoContext(ctx, "player renamed",
		slog.String("date", string(date)),
		slog.String("player_id", string(playerID)))
	s.publish(model.NewChange(model.ChangePlayerRenamed, record, playerID))
	return player, nil
}

// Remove deletes a player together with their balance
func (s *Service) Remove(ctx context.Context, date model.EventDate, playerID model.PlayerID) (model.Player, error) {
	var removed model.Player
	record, _, err := s.update(ctx, date, false, func(r *model.EventRecord, now time.Time) error {
		idx, err := indexOf(r, playerID)
		if err != nil {
			return err
		}
		removed, err = r.Remove(idx, now)
		return err
	})
	if err != nil {
		return model.Player{}, err
	}

	s.logger.InfoContext(ctx, "player removed",
		slog.String("date", string(date)),
		slog.String("player_id", string(playerID)),
		slog.Int64("forfeited", removed.Currency))
	s.publish(model.NewChange(model.ChangePlayerRemoved, record, playerID))
	return removed, nil
}

// AnnotatePlayer overwrites a player's note
func (s *Service) AnnotatePlayer(ctx context.Context, date model.EventDate, playerID model.PlayerID, text string) (model.Player, error) {
	var player model.Player
	record, _, err := s.update(ctx, date, false, func(r *model.EventRecord, now time.Time) error {
		idx, err := indexOf(r, playerID)
		if err != nil {
			return err
		}
		if err := r.Annotate(model.PlayerTarget(idx), text, now); err != nil {
			return err
		}
		player = r.Players[idx]
		return nil
	})
	if err != nil {
		return model.Player{}, err
	}

	s.publish(model.NewChange(model.ChangePlayerAnnotated, record, playerID))
	return player, nil
}

// AnnotateEvent overwrites the event-level note
func (s *Service) AnnotateEvent(ctx context.Context, date model.EventDate, text string) (*model.EventRecord, error) {
	record, _, err := s.update(ctx, date, false, func(r *model.EventRecord, now time.Time) error {
		return r.Annotate(model.EventTarget(), text, now)
	})
	if err != nil {
		return nil, err
	}

	s.publish(model.NewChange(model.ChangeEventAnnotated, record, ""))
	return record, nil
}

// FundPot adds new currency to the pot, raising the record total
func (s *Service) FundPot(ctx context.Context, date model.EventDate, amount int64) (*model.EventRecord, error) {
	record, _, err := s.update(ctx, date, false, func(r *model.EventRecord, now time.Time) error {
		return r.FundPot(amount, now)
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "pot funded",
		slog.String("date", string(date)),
		slog.Int64("amount", amount),
		slog.Int64("total", record.Total()))
	s.publish(model.NewChange(model.ChangePotFunded, record, ""))
	return record, nil
}
