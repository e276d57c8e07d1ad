// Package storagetest provides a conformance suite run against every
// storage backend.
package storagetest

import (
	"context"
	"errors"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/eventledger/internal/model"
	"github.com/mcoot/eventledger/internal/storage"
)

// Suite exercises the storage.Storage contract.
// Backends embed it and set Storage in their SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

var testTime = time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleRecord(date model.EventDate) *model.EventRecord {
	record := model.NewEventRecord(date, testTime)
	record.Pot = 250
	record.Notes = "bring snacks"
	record.Players = []model.Player{
		{
			ID:           "p_alice",
			Name:         "Alice",
			Age:          31,
			Email:        "alice@example.com",
			Phone:        "555-0100",
			Secret:       "likes cats",
			Currency:     1750,
			Note:         "early",
			RegisteredAt: testTime,
		},
		{
			ID:           "p_bob",
			Name:         "Bob",
			Age:          29,
			Email:        "bob@example.com",
			Phone:        "555-0101",
			Secret:       "hates cats",
			Currency:     2000,
			RegisteredAt: testTime,
		},
	}
	return record
}

// Event tests

func (s *Suite) TestSaveAndGetEvent() {
	record := sampleRecord("2025-05-01")

	err := s.Storage.SaveEvent(s.Ctx, record)
	s.Require().NoError(err)

	retrieved, err := s.Storage.GetEvent(s.Ctx, "2025-05-01")
	s.Require().NoError(err)
	s.Equal(record.Date, retrieved.Date)
	s.Equal(record.Pot, retrieved.Pot)
	s.Equal(record.Notes, retrieved.Notes)
	s.Require().Len(retrieved.Players, 2)
	s.Equal(record.Players[0].ID, retrieved.Players[0].ID)
	s.Equal(record.Players[0].Currency, retrieved.Players[0].Currency)
	s.Equal(record.Players[0].Note, retrieved.Players[0].Note)
	s.Equal(record.Players[1].Email, retrieved.Players[1].Email)
	s.True(record.Players[0].RegisteredAt.Equal(retrieved.Players[0].RegisteredAt))
}

func (s *Suite) TestGetEventNotFound() {
	_, err := s.Storage.GetEvent(s.Ctx, "1999-01-01")
	s.ErrorIs(err, model.ErrEventNotFound)
}

func (s *Suite) TestGetEventIsIdempotent() {
	s.Require().NoError(s.Storage.SaveEvent(s.Ctx, sampleRecord("2025-05-01")))

	first, err := s.Storage.GetEvent(s.Ctx, "2025-05-01")
	s.Require().NoError(err)
	second, err := s.Storage.GetEvent(s.Ctx, "2025-05-01")
	s.Require().NoError(err)

	s.Equal(first, second)
}

func (s *Suite) TestGetEventReturnsCopy() {
	s.Require().NoError(s.Storage.SaveEvent(s.Ctx, sampleRecord("2025-05-01")))

	retrieved, _ := s.Storage.GetEvent(s.Ctx, "2025-05-01")
	retrieved.Pot = 0
	retrieved.Players[0].Currency = 0

	again, err := s.Storage.GetEvent(s.Ctx, "2025-05-01")
	s.Require().NoError(err)
	s.Equal(int64(250), again.Pot)
	s.Equal(int64(1750), again.Players[0].Currency)
}

func (s *Suite) TestSaveEventOverwrites() {
	record := sampleRecord("2025-05-01")
	s.Require().NoError(s.Storage.SaveEvent(s.Ctx, record))

	record.Players = record.Players[:1]
	record.Pot = 0
	s.Require().NoError(s.Storage.SaveEvent(s.Ctx, record))

	retrieved, err := s.Storage.GetEvent(s.Ctx, "2025-05-01")
	s.Require().NoError(err)
	s.Len(retrieved.Players, 1)
	s.Equal(int64(0), retrieved.Pot)
}

func (s *Suite) TestListEventDatesSorted() {
	for _, d := range []model.EventDate{"2025-06-01", "2025-05-01", "2024-12-31"} {
		s.Require().NoError(s.Storage.SaveEvent(s.Ctx, sampleRecord(d)))
	}

	dates, err := s.Storage.ListEventDates(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.EventDate{"2024-12-31", "2025-05-01", "2025-06-01"}, dates)
}

func (s *Suite) TestListEventDatesEmpty() {
	dates, err := s.Storage.ListEventDates(s.Ctx)
	s.Require().NoError(err)
	s.Empty(dates)
}

// UpdateEvent tests

func (s *Suite) TestUpdateEventAppliesMutation() {
	s.Require().NoError(s.Storage.SaveEvent(s.Ctx, sampleRecord("2025-05-01")))

	updated, err := s.Storage.UpdateEvent(s.Ctx, "2025-05-01", nil, func(r *model.EventRecord) error {
		_, err := r.Transfer(0, -750, testTime)
		return err
	})
	s.Require().NoError(err)
	s.Equal(int64(1000), updated.Pot)

	retrieved, err := s.Storage.GetEvent(s.Ctx, "2025-05-01")
	s.Require().NoError(err)
	s.Equal(int64(1000), retrieved.Pot)
	s.Equal(int64(1000), retrieved.Players[0].Currency)
}

func (s *Suite) TestUpdateEventFailureLeavesStoredState() {
	s.Require().NoError(s.Storage.SaveEvent(s.Ctx, sampleRecord("2025-05-01")))
	boom := errors.New("boom")

	_, err := s.Storage.UpdateEvent(s.Ctx, "2025-05-01", nil, func(r *model.EventRecord) error {
		r.Pot = 999999
		r.Players[0].Currency = 0
		return boom
	})
	s.ErrorIs(err, boom)

	retrieved, err := s.Storage.GetEvent(s.Ctx, "2025-05-01")
	s.Require().NoError(err)
	s.Equal(int64(250), retrieved.Pot)
	s.Equal(int64(1750), retrieved.Players[0].Currency)
}

func (s *Suite) TestUpdateEventMissingWithoutCreate() {
	called := false
	_, err := s.Storage.UpdateEvent(s.Ctx, "2025-05-01", nil, func(r *model.EventRecord) error {
		called = true
		return nil
	})
	s.ErrorIs(err, model.ErrEventNotFound)
	s.False(called)
}

func (s *Suite) TestUpdateEventCreatesLazily() {
	newRecord := func() *model.EventRecord { return model.NewEventRecord("2025-05-01", testTime) }

	updated, err := s.Storage.UpdateEvent(s.Ctx, "2025-05-01", newRecord, func(r *model.EventRecord) error {
		_, err := r.Register("p_new", model.PlayerDraft{
			Name: "New", Age: 20, Secret: "s", Email: "new@example.com", Phone: "1",
		}, model.DefaultStartingCurrency, testTime)
		return err
	})
	s.Require().NoError(err)
	s.Len(updated.Players, 1)

	dates, err := s.Storage.ListEventDates(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.EventDate{"2025-05-01"}, dates)
}

func (s *Suite) TestUpdateEventFailedCreateIsNotPersisted() {
	newRecord := func() *model.EventRecord { return model.NewEventRecord("2025-05-01", testTime) }

	_, err := s.Storage.UpdateEvent(s.Ctx, "2025-05-01", newRecord, func(r *model.EventRecord) error {
		return model.ErrValidation
	})
	s.ErrorIs(err, model.ErrValidation)

	_, err = s.Storage.GetEvent(s.Ctx, "2025-05-01")
	s.ErrorIs(err, model.ErrEventNotFound)
}

// Admin tests

func (s *Suite) TestSaveAndGetAdmin() {
	admin := &model.Admin{
		Username:     "gom",
		PasswordHash: "hash123",
		CreatedAt:    testTime,
		UpdatedAt:    testTime,
	}

	err := s.Storage.SaveAdmin(s.Ctx, admin)
	s.Require().NoError(err)

	retrieved, err := s.Storage.GetAdminByUsername(s.Ctx, "gom")
	s.Require().NoError(err)
	s.Equal(admin.Username, retrieved.Username)
	s.Equal(admin.PasswordHash, retrieved.PasswordHash)
}

func (s *Suite) TestGetAdminNotFound() {
	_, err := s.Storage.GetAdminByUsername(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrAdminNotFound)
}
