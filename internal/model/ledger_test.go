package model

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type LedgerSuite struct {
	suite.Suite
	now    time.Time
	record *EventRecord
}

func TestLedgerSuite(t *testing.T) {
	suite.Run(t, new(LedgerSuite))
}

func (s *LedgerSuite) SetupTest() {
	s.now = time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	s.record = NewEventRecord("2025-05-01", s.now)
}

func (s *LedgerSuite) draft(name, email string) PlayerDraft {
	return PlayerDraft{
		Name:   name,
		Age:    30,
		Secret: "likes cats",
		Email:  email,
		Phone:  "555-0100",
	}
}

func (s *LedgerSuite) register(id, name, email string) Player {
	p, err := s.record.Register(PlayerID(id), s.draft(name, email), DefaultStartingCurrency, s.now)
	s.Require().NoError(err)
	return p
}

// Register tests

func (s *LedgerSuite) TestRegisterDefaults() {
	p := s.register("p1", "Alice", "alice@example.com")

	s.Equal(DefaultStartingCurrency, p.Currency)
	s.Equal(int64(2000), p.Currency)
	s.Equal("", p.Note)
	s.Equal(PlayerID("p1"), p.ID)
	s.Equal(s.now, p.RegisteredAt)
	s.Len(s.record.Players, 1)
}

func (s *LedgerSuite) TestRegisterKeepsInsertionOrder() {
	s.register("p1", "Alice", "alice@example.com")
	s.register("p2", "Bob", "bob@example.com")
	s.register("p3", "Carol", "carol@example.com")

	names := []string{}
	for _, p := range s.record.Players {
		names = append(names, p.Name)
	}
	s.Equal([]string{"Alice", "Bob", "Carol"}, names)
}

func (s *LedgerSuite) TestRegisterTrimsInput() {
	d := s.draft("  Alice  ", " alice@example.com ")
	p, err := s.record.Register("p1", d, DefaultStartingCurrency, s.now)
	s.Require().NoError(err)
	s.Equal("Alice", p.Name)
	s.Equal("alice@example.com", p.Email)
}

func (s *LedgerSuite) TestRegisterEmptyEmailFails() {
	_, err := s.record.Register("p1", s.draft("Alice", ""), DefaultStartingCurrency, s.now)

	s.ErrorIs(err, ErrValidation)
	s.Empty(s.record.Players)
}

func (s *LedgerSuite) TestRegisterRequiredFields() {
	tests := []struct {
		field  string
		mutate func(*PlayerDraft)
	}{
		{"name", func(d *PlayerDraft) { d.Name = "   " }},
		{"age", func(d *PlayerDraft) { d.Age = -1 }},
		{"secret", func(d *PlayerDraft) { d.Secret = "" }},
		{"email", func(d *PlayerDraft) { d.Email = "" }},
		{"phone", func(d *PlayerDraft) { d.Phone = "" }},
	}

	for _, tt := range tests {
		s.Run(tt.field, func() {
			d := s.draft("Alice", "alice@example.com")
			tt.mutate(&d)

			_, err := s.record.Register("p1", d, DefaultStartingCurrency, s.now)
			s.Require().ErrorIs(err, ErrValidation)

			var ve *ValidationError
			s.Require().ErrorAs(err, &ve)
			s.Equal(tt.field, ve.Field)
			s.Empty(s.record.Players)
		})
	}
}

func (s *LedgerSuite) TestRegisterZeroAgeAllowed() {
	d := s.draft("Baby", "baby@example.com")
	d.Age = 0

	_, err := s.record.Register("p1", d, DefaultStartingCurrency, s.now)
	s.NoError(err)
}

func (s *LedgerSuite) TestRegisterMalformedEmail() {
	for _, email := range []string{"alice", "alice@", "@example.com", "alice@example", "al ice@example.com"} {
		_, err := s.record.Register("p1", s.draft("Alice", email), DefaultStartingCurrency, s.now)
		s.ErrorIs(err, ErrValidation, email)
	}
	s.Empty(s.record.Players)
}

func (s *LedgerSuite) TestRegisterDuplicateEmailCaseInsensitive() {
	s.register("p1", "Alice", "alice@example.com")

	_, err := s.record.Register("p2", s.draft("Alice Two", "  ALICE@Example.com "), DefaultStartingCurrency, s.now)

	s.ErrorIs(err, ErrDuplicateEmail)
	s.Len(s.record.Players, 1)
}

func (s *LedgerSuite) TestRegisterCustomStartingCurrency() {
	p, err := s.record.Register("p1", s.draft("Alice", "alice@example.com"), 500, s.now)
	s.Require().NoError(err)
	s.Equal(int64(500), p.Currency)
}

func (s *LedgerSuite) TestRegisterStartingCurrencyOverflowingTotal() {
	s.register("a", "A", "a@example.com")
	before := s.record.Clone()

	_, err := s.record.Register("b", s.draft("B", "b@example.com"), math.MaxInt64, s.now)

	s.ErrorIs(err, ErrValidation)
	s.Equal(before, s.record)

	// Exactly filling the remaining headroom is allowed
	p, err := s.record.Register("c", s.draft("C", "c@example.com"), math.MaxInt64-DefaultStartingCurrency, s.now)
	s.Require().NoError(err)
	s.Equal(int64(math.MaxInt64-DefaultStartingCurrency), p.Currency)
	s.Equal(int64(math.MaxInt64), s.record.Total())
}

// Transfer tests

func (s *LedgerSuite) TestTransferScenario() {
	s.register("a", "A", "a@example.com")
	s.Require().Equal(int64(0), s.record.Pot)

	result, err := s.record.Transfer(0, -500, s.now)
	s.Require().NoError(err)
	s.Equal(int64(1500), s.record.Players[0].Currency)
	s.Equal(int64(500), s.record.Pot)
	s.Equal(TransferResult{
		PlayerID:     "a",
		Delta:        -500,
		PlayerBefore: 2000,
		PlayerAfter:  1500,
		PotBefore:    0,
		PotAfter:     500,
	}, result)

	_, err = s.record.Transfer(0, -2000, s.now)
	s.ErrorIs(err, ErrInsufficientBalance)
	s.Equal(int64(1500), s.record.Players[0].Currency)
	s.Equal(int64(500), s.record.Pot)

	_, err = s.record.Transfer(0, 500, s.now)
	s.Require().NoError(err)
	s.Equal(int64(2000), s.record.Players[0].Currency)
	s.Equal(int64(0), s.record.Pot)
}

func (s *LedgerSuite) TestTransferInsufficientPotLeavesState() {
	s.register("a", "A", "a@example.com")
	_, _ = s.record.Transfer(0, -100, s.now)
	before := s.record.Clone()

	_, err := s.record.Transfer(0, 101, s.now)

	s.ErrorIs(err, ErrInsufficientPot)
	s.Equal(before, s.record)
}

func (s *LedgerSuite) TestTransferMinInt64DeltaRejected() {
	s.register("a", "A", "a@example.com")
	_, _ = s.record.Transfer(0, -100, s.now)
	before := s.record.Clone()

	_, err := s.record.Transfer(0, math.MinInt64, s.now.Add(time.Hour))

	s.ErrorIs(err, ErrInsufficientBalance)
	s.Equal(before, s.record)
	s.GreaterOrEqual(s.record.Players[0].Currency, int64(0))
	s.GreaterOrEqual(s.record.Pot, int64(0))
}

func (s *LedgerSuite) TestTransferMaxInt64DeltaRejected() {
	s.register("a", "A", "a@example.com")
	before := s.record.Clone()

	_, err := s.record.Transfer(0, math.MaxInt64, s.now)

	s.ErrorIs(err, ErrInsufficientPot)
	s.Equal(before, s.record)
}

func (s *LedgerSuite) TestTransferExactBalanceAllowed() {
	s.register("a", "A", "a@example.com")

	_, err := s.record.Transfer(0, -2000, s.now)
	s.Require().NoError(err)
	s.Equal(int64(0), s.record.Players[0].Currency)
	s.Equal(int64(2000), s.record.Pot)

	_, err = s.record.Transfer(0, 2000, s.now)
	s.Require().NoError(err)
	s.Equal(int64(0), s.record.Pot)
}

func (s *LedgerSuite) TestTransferZeroIsNoop() {
	s.register("a", "A", "a@example.com")
	before := s.record.Clone()

	result, err := s.record.Transfer(0, 0, s.now.Add(time.Hour))
	s.Require().NoError(err)
	s.Equal(int64(0), result.Delta)
	s.Equal(before, s.record)
}

func (s *LedgerSuite) TestTransferUnknownIndex() {
	s.register("a", "A", "a@example.com")

	_, err := s.record.Transfer(1, -1, s.now)
	s.ErrorIs(err, ErrPlayerNotFound)
	_, err = s.record.Transfer(-1, -1, s.now)
	s.ErrorIs(err, ErrPlayerNotFound)
}

func (s *LedgerSuite) TestTransferConservesTotalAndStaysNonNegative() {
	for i := 0; i < 4; i++ {
		s.register(fmt.Sprintf("p%d", i), fmt.Sprintf("P%d", i), fmt.Sprintf("p%d@example.com", i))
	}
	s.Require().NoError(s.record.FundPot(300, s.now))
	initial := s.record.Total()

	// Deterministic pseudo-random sequence including rejected transfers
	deltas := []int64{-700, 250, -2500, 1200, -30, 999, -1999, 4000, -1, 17, -600, 600}
	for step, delta := range deltas {
		idx := step % len(s.record.Players)
		_, _ = s.record.Transfer(idx, delta, s.now)

		s.Equal(initial, s.record.Total(), "step %d", step)
		s.GreaterOrEqual(s.record.Pot, int64(0))
		for _, p := range s.record.Players {
			s.GreaterOrEqual(p.Currency, int64(0))
		}
	}
}

// Rename tests

func (s *LedgerSuite) TestRename() {
	s.register("a", "A", "a@example.com")

	p, err := s.record.Rename(0, "Alpha", s.now)
	s.Require().NoError(err)
	s.Equal("Alpha", p.Name)
	s.Equal("Alpha", s.record.Players[0].Name)
}

func (s *LedgerSuite) TestRenameEmptyFails() {
	s.register("a", "A", "a@example.com")

	_, err := s.record.Rename(0, "  ", s.now)
	s.ErrorIs(err, ErrValidation)
	s.Equal("A", s.record.Players[0].Name)
}

func (s *LedgerSuite) TestRenameAllowsDuplicateNames() {
	s.register("a", "A", "a@example.com")
	s.register("b", "B", "b@example.com")

	_, err := s.record.Rename(1, "A", s.now)
	s.NoError(err)
}

// Remove tests

func (s *LedgerSuite) TestRemoveIsPositionalWithDuplicateNames() {
	s.register("first", "Sam", "sam1@example.com")
	s.register("second", "Sam", "sam2@example.com")
	_, err := s.record.Transfer(1, -250, s.now)
	s.Require().NoError(err)

	removed, err := s.record.Remove(0, s.now)
	s.Require().NoError(err)

	s.Equal(PlayerID("first"), removed.ID)
	s.Require().Len(s.record.Players, 1)
	s.Equal(PlayerID("second"), s.record.Players[0].ID)
	s.Equal("Sam", s.record.Players[0].Name)
	s.Equal(int64(1750), s.record.Players[0].Currency)
}

func (s *LedgerSuite) TestRemoveUnknownIndex() {
	_, err := s.record.Remove(0, s.now)
	s.ErrorIs(err, ErrPlayerNotFound)
}

// Annotate tests

func (s *LedgerSuite) TestAnnotateEventAndPlayer() {
	s.register("a", "A", "a@example.com")

	s.Require().NoError(s.record.Annotate(EventTarget(), "bring snacks", s.now))
	s.Require().NoError(s.record.Annotate(PlayerTarget(0), "late arrival", s.now))

	s.Equal("bring snacks", s.record.Notes)
	s.Equal("late arrival", s.record.Players[0].Note)

	s.Require().NoError(s.record.Annotate(PlayerTarget(0), "", s.now))
	s.Equal("", s.record.Players[0].Note)
}

func (s *LedgerSuite) TestAnnotateUnknownPlayer() {
	err := s.record.Annotate(PlayerTarget(3), "x", s.now)
	s.ErrorIs(err, ErrPlayerNotFound)
}

// Pot funding and helpers

func (s *LedgerSuite) TestFundPot() {
	s.Require().NoError(s.record.FundPot(1000, s.now))
	s.Equal(int64(1000), s.record.Pot)

	s.ErrorIs(s.record.FundPot(0, s.now), ErrValidation)
	s.ErrorIs(s.record.FundPot(-5, s.now), ErrValidation)
	s.ErrorIs(s.record.FundPot(math.MinInt64, s.now), ErrValidation)
	s.Equal(int64(1000), s.record.Pot)
}

func (s *LedgerSuite) TestFundPotRejectsOverflow() {
	s.Require().NoError(s.record.FundPot(1, s.now))
	before := s.record.Clone()

	err := s.record.FundPot(math.MaxInt64, s.now.Add(time.Hour))

	s.ErrorIs(err, ErrValidation)
	s.Equal(before, s.record)
}

func (s *LedgerSuite) TestFundPotLeavesHeadroomForPlayerBalances() {
	s.register("a", "A", "a@example.com")

	// Total may reach MaxInt64 but never exceed it
	s.ErrorIs(s.record.FundPot(math.MaxInt64-DefaultStartingCurrency+1, s.now), ErrValidation)
	s.Require().NoError(s.record.FundPot(math.MaxInt64-DefaultStartingCurrency, s.now))
	s.Equal(int64(math.MaxInt64), s.record.Total())

	// Moving the whole pot to the player cannot overflow their balance
	_, err := s.record.Transfer(0, s.record.Pot, s.now)
	s.Require().NoError(err)
	s.Equal(int64(math.MaxInt64), s.record.Players[0].Currency)
	s.Equal(int64(0), s.record.Pot)

	_, err = s.record.Transfer(0, math.MinInt64, s.now)
	s.ErrorIs(err, ErrInsufficientBalance)
	s.Equal(int64(math.MaxInt64), s.record.Players[0].Currency)
}

func (s *LedgerSuite) TestCloneIsDeep() {
	s.register("a", "A", "a@example.com")

	c := s.record.Clone()
	c.Players[0].Currency = 1
	c.Pot = 99

	s.Equal(int64(2000), s.record.Players[0].Currency)
	s.Equal(int64(0), s.record.Pot)
}

func (s *LedgerSuite) TestIndexOf() {
	s.register("a", "A", "a@example.com")
	s.register("b", "B", "b@example.com")

	s.Equal(1, s.record.IndexOf("b"))
	s.Equal(-1, s.record.IndexOf("zzz"))
}
