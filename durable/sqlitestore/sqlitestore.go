// Package sqlitestore is the embedded SQLite backend of the durable store.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"cloud.google.com/go/civil"
	"github.com/Keksclan/goMensaSquirrel/meal"
	"github.com/oklog/ulid/v2"
	"go.trai.ch/zerr"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS facilities (
	id        TEXT PRIMARY KEY,
	facility  TEXT NOT NULL,
	lang      TEXT NOT NULL,
	name      TEXT NOT NULL,
	UNIQUE (facility, lang)
);

CREATE TABLE IF NOT EXISTS days (
	facility_id TEXT NOT NULL REFERENCES facilities(id),
	date        TEXT NOT NULL,
	body        TEXT NOT NULL,
	PRIMARY KEY (facility_id, date)
);
`

// Store implements durable.Store on a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, zerr.Wrap(err, "create db dir")
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, zerr.Wrap(err, "open db")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, zerr.With(zerr.Wrap(err, "migrate"), "path", path)
	}
	return &Store{db: db}, nil
}

func (s *Store) UpsertFacility(ctx context.Context, facility, lang, name string) (string, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO facilities (id, facility, lang, name) VALUES (?, ?, ?, ?)
		ON CONFLICT (facility, lang) DO UPDATE SET name = excluded.name
		RETURNING id`,
		ulid.Make().String(), facility, lang, name).Scan(&id)
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "sqlite upsert facility"), "facility", facility)
	}
	return id, nil
}

func (s *Store) UpsertDay(ctx context.Context, recordID string, day meal.Day) error {
	body, err := json.Marshal(day)
	if err != nil {
		return zerr.Wrap(err, "sqlite encode day")
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO days (facility_id, date, body) VALUES (?, ?, ?)
		ON CONFLICT (facility_id, date) DO UPDATE SET body = excluded.body`,
		recordID, day.Date.String(), string(body))
	if err != nil {
		return zerr.With(zerr.Wrap(err, "sqlite upsert day"), "date", day.Date.String())
	}
	return nil
}

func (s *Store) FindFacility(ctx context.Context, facility, lang string) (string, bool, error) {
	var id string
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM facilities WHERE facility = ? AND lang = ?`, facility, lang).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, zerr.With(zerr.Wrap(err, "sqlite find facility"), "facility", facility)
	}
	return id, true, nil
}

func (s *Store) FindDay(ctx context.Context, recordID string, date civil.Date) (meal.Day, bool, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM days WHERE facility_id = ? AND date = ?`, recordID, date.String()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return meal.Day{}, false, nil
	}
	if err != nil {
		return meal.Day{}, false, zerr.With(zerr.Wrap(err, "sqlite find day"), "date", date.String())
	}
	var day meal.Day
	if err := json.Unmarshal([]byte(body), &day); err != nil {
		return meal.Day{}, false, zerr.With(zerr.Wrap(err, "sqlite decode day"), "date", date.String())
	}
	return day, true, nil
}

func (s *Store) Close(context.Context) error {
	return s.db.Close()
}
