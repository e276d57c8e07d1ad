package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/mcoot/eventledger/internal/model"
	"github.com/mcoot/eventledger/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	events map[model.EventDate]*model.EventRecord
	admins map[string]*model.Admin
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		events: make(map[model.EventDate]*model.EventRecord),
		admins: make(map[string]*model.Admin),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Event operations

func (s *Storage) GetEvent(ctx context.Context, date model.EventDate) (*model.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.events[date]
	if !ok {
		return nil, model.ErrEventNotFound
	}
	return record.Clone(), nil
}

func (s *Storage) SaveEvent(ctx context.Context, record *model.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[record.Date] = record.Clone()
	return nil
}

func (s *Storage) ListEventDates(ctx context.Context) ([]model.EventDate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dates := make([]model.EventDate, 0, len(s.events))
	for date := range s.events {
		dates = append(dates, date)
	}
	slices.Sort(dates)
	return dates, nil
}

func (s *Storage) UpdateEvent(ctx context.Context, date model.EventDate, newRecord func() *model.EventRecord, fn storage.UpdateFunc) (*model.EventRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var working *model.EventRecord
	if existing, ok := s.events[date]; ok {
		working = existing.Clone()
	} else if newRecord != nil {
		working = newRecord()
	} else {
		return nil, model.ErrEventNotFound
	}

	if err := fn(working); err != nil {
		return nil, err
	}

	s.events[date] = working.Clone()
	return working, nil
}

// Admin operations

func (s *Storage) SaveAdmin(ctx context.Context, admin *model.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *admin
	s.admins[admin.Username] = &stored
	return nil
}

func (s *Storage) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	admin, ok := s.admins[username]
	if !ok {
		return nil, model.ErrAdminNotFound
	}
	result := *admin
	return &result, nil
}
