package redis

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/eventledger/internal/model"
	"github.com/mcoot/eventledger/internal/storage"
)

// ErrTooManyRetries is returned when an optimistic update keeps conflicting
var ErrTooManyRetries = errors.New("event update retries exhausted")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, model.WrapStorage("ping", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxUpdateRetries <= 0 {
		cfg.MaxUpdateRetries = DefaultConfig().MaxUpdateRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// getter is satisfied by both *redis.Client and *redis.Tx
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Event operations

func (s *Storage) GetEvent(ctx context.Context, date model.EventDate) (*model.EventRecord, error) {
	record, err := loadEvent(ctx, s.client, date)
	if err != nil {
		return nil, model.WrapStorage("get event", err)
	}
	return record, nil
}

func (s *Storage) SaveEvent(ctx context.Context, record *model.EventRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return model.WrapStorage("save event", err)
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, eventKey(record.Date), data, 0)
	pipe.SAdd(ctx, eventIndexKey(), string(record.Date))
	_, err = pipe.Exec(ctx)
	return model.WrapStorage("save event", err)
}

func (s *Storage) ListEventDates(ctx context.Context) ([]model.EventDate, error) {
	members, err := s.client.SMembers(ctx, eventIndexKey()).Result()
	if err != nil {
		return nil, model.WrapStorage("list events", err)
	}

	dates := make([]model.EventDate, len(members))
	for i, m := range members {
		dates[i] = model.EventDate(m)
	}
	slices.Sort(dates)
	return dates, nil
}

// UpdateEvent runs fn inside a WATCH/MULTI transaction on the event key.
// If another client writes the key before EXEC the whole cycle is retried
// against the fresh record, so concurrent writers never lose updates.
func (s *Storage) UpdateEvent(ctx context.Context, date model.EventDate, newRecord func() *model.EventRecord, fn storage.UpdateFunc) (*model.EventRecord, error) {
	key := eventKey(date)
	var result *model.EventRecord

	txf := func(tx *redis.Tx) error {
		record, err := loadEvent(ctx, tx, date)
		if errors.Is(err, model.ErrEventNotFound) && newRecord != nil {
			record = newRecord()
		} else if err != nil {
			return err
		}

		if err := fn(record); err != nil {
			return err
		}

		data, err := json.Marshal(record)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.SAdd(ctx, eventIndexKey(), string(date))
			return nil
		})
		if err != nil {
			return err
		}

		result = record
		return nil
	}

	for attempt := 0; attempt < s.cfg.MaxUpdateRetries; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, model.WrapStorage("update event", err)
	}
	return nil, model.WrapStorage("update event", ErrTooManyRetries)
}

func loadEvent(ctx context.Context, g getter, date model.EventDate) (*model.EventRecord, error) {
	data, err := g.Get(ctx, eventKey(date)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrEventNotFound
		}
		return nil, err
	}

	var record model.EventRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, err
	}
	if record.Players == nil {
		record.Players = []model.Player{}
	}
	return &record, nil
}

// Admin operations

func (s *Storage) SaveAdmin(ctx context.Context, admin *model.Admin) error {
	data, err := json.Marshal(admin)
	if err != nil {
		return model.WrapStorage("save admin", err)
	}
	return model.WrapStorage("save admin", s.client.Set(ctx, adminKey(admin.Username), data, 0).Err())
}

func (s *Storage) GetAdminByUsername(ctx context.Context, username string) (*model.Admin, error) {
	data, err := s.client.Get(ctx, adminKey(username)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAdminNotFound
		}
		return nil, model.WrapStorage("get admin", err)
	}

	var admin model.Admin
	if err := json.Unmarshal(data, &admin); err != nil {
		return nil, model.WrapStorage("get admin", err)
	}
	return &admin, nil
}
