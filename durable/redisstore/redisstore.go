// Package redisstore is the Redis backend of the durable store.
//
// A facility is a hash at mensa:facility:<key> holding its record id and
// display name, where <key> is the cache key of the (facility, language)
// pair. Days are JSON strings at mensa:day:<record id>:<date>.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cloud.google.com/go/civil"
	"github.com/Keksclan/goMensaSquirrel/cache"
	"github.com/Keksclan/goMensaSquirrel/meal"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"go.trai.ch/zerr"
)

// Store implements durable.Store on Redis. Unlike a cache it does not fail
// soft: connection errors are returned to the caller.
type Store struct {
	rdb    *redis.Client
	dayTTL time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithDayTTL expires stored days after ttl. Zero keeps them forever.
func WithDayTTL(ttl time.Duration) Option {
	return func(s *Store) { s.dayTTL = ttl }
}

// New creates a Store for the Redis server at addr.
func New(addr, password string, db int, opts ...Option) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return NewWithClient(rdb, opts...)
}

// NewWithClient uses an existing client. Close closes it.
func NewWithClient(rdb *redis.Client, opts ...Option) *Store {
	s := &Store{rdb: rdb}
	for _, o := range opts {
		o(s)
	}
	return s
}

func facilityKey(facility, lang string) string {
	return "mensa:facility:" + cache.Key(facility, lang)
}

func dayKey(recordID string, date civil.Date) string {
	return "mensa:day:" + recordID + ":" + date.String()
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// UpsertFacility assigns a ULID record id on first insert and keeps it on
// later upserts. The display name is always overwritten.
func (s *Store) UpsertFacility(ctx context.Context, facility, lang, name string) (string, error) {
	key := facilityKey(facility, lang)
	var id *redis.StringCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSetNX(ctx, key, "id", ulid.Make().String())
		p.HSet(ctx, key, "name", name)
		id = p.HGet(ctx, key, "id")
		return nil
	})
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "redis upsert facility"), "key", key)
	}
	return id.Val(), nil
}

func (s *Store) UpsertDay(ctx context.Context, recordID string, day meal.Day) error {
	b, err := json.Marshal(day)
	if err != nil {
		return zerr.Wrap(err, "redis encode day")
	}
	key := dayKey(recordID, day.Date)
	if err := s.rdb.Set(ctx, key, b, s.dayTTL).Err(); err != nil {
		return zerr.With(zerr.Wrap(err, "redis upsert day"), "key", key)
	}
	return nil
}

func (s *Store) FindFacility(ctx context.Context, facility, lang string) (string, bool, error) {
	key := facilityKey(facility, lang)
	id, err := s.rdb.HGet(ctx, key, "id").Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, zerr.With(zerr.Wrap(err, "redis find facility"), "key", key)
	}
	return id, true, nil
}

func (s *Store) FindDay(ctx context.Context, recordID string, date civil.Date) (meal.Day, bool, error) {
	key := dayKey(recordID, date)
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return meal.Day{}, false, nil
	}
	if err != nil {
		return meal.Day{}, false, zerr.With(zerr.Wrap(err, "redis find day"), "key", key)
	}
	var day meal.Day
	if err := json.Unmarshal(b, &day); err != nil {
		return meal.Day{}, false, zerr.With(zerr.Wrap(err, "redis decode day"), "key", key)
	}
	return day, true, nil
}

// Close closes the underlying Redis client.
func (s *Store) Close(context.Context) error {
	return s.rdb.Close()
}
