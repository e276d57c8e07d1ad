package storage

import (
	"context"

	"github.com/mcoot/eventledger/internal/model"
)

// UpdateFunc mutates an event record in place.
// Returning an error aborts the update and nothing is persisted.
type UpdateFunc func(record *model.EventRecord) error

// Storage defines the interface for data persistence
type Storage interface {
	// Event operations
	GetEvent(ctx context.Context, date model.EventDate) (*model.EventRecord, error)
	SaveEvent(ctx context.Context, record *model.EventRecord) error
	ListEventDates(ctx context.Context) ([]model.EventDate, error)

	// UpdateEvent loads the record for date, applies fn and saves the result
	// as one atomic read-modify-write. If the record does not exist it is
	// created from newRecord when newRecord is non-nil, otherwise
	// model.ErrEventNotFound is returned.
	UpdateEvent(ctx context.Context, date model.EventDate, newRecord func() *model.EventRecord, fn UpdateFunc) (*model.EventRecord, error)

	// Admin operations
	SaveAdmin(ctx context.Context, admin *model.Admin) error
	GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error)
}
