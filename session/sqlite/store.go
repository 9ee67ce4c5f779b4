// Package sqlite provides a SQLite-backed session store.
package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/babymonitor/go-monitor-client/session"
)

var _ session.Store = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS session_fields (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);`

const upsertField = `
INSERT INTO session_fields (key, value) VALUES (?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value;`

// Store persists the installation's Session in a single SQLite table keyed
// by field name. Every Update and Clear is one transaction, so readers never
// observe a partially applied merge.
type Store struct {
	sqlDB    *sql.DB
	logger   zerolog.Logger
	watchers *session.Watchers

	// mu serializes writers so the cached snapshot and the broadcast order
	// match the commit order.
	mu      sync.Mutex
	current session.Session
}

// Open opens (creating if needed) the session database at path.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("[sqlite.Open] storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "[sqlite.Open] open db")
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "[sqlite.Open] ping db")
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, errors.Wrap(err, "[sqlite.Open] create schema")
	}

	s := &Store{
		sqlDB:    sqlDB,
		logger:   logger,
		watchers: session.NewWatchers(logger),
	}
	current, err := s.load(context.Background())
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	s.current = current
	return s, nil
}

// Close closes the database handle. Active watchers are not closed; callers
// stop them through their stop functions.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Read returns the current Session, substituting defaults for unset fields.
func (s *Store) Read(ctx context.Context) (session.Session, error) {
	return s.load(ctx)
}

func (s *Store) load(ctx context.Context) (session.Session, error) {
	if err := ctx.Err(); err != nil {
		return session.Session{}, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT key, value FROM session_fields`)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "[Store.Read] query fields")
	}
	defer func() { _ = rows.Close() }()

	current := session.Defaults()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return session.Session{}, errors.Wrap(err, "[Store.Read] scan field")
		}
		applyField(&current, key, value)
	}
	if err := rows.Err(); err != nil {
		return session.Session{}, errors.Wrap(err, "[Store.Read] iterate fields")
	}
	return current, nil
}

// Watch subscribes to committed snapshots, starting with the current value.
func (s *Store) Watch(ctx context.Context) (<-chan session.Session, func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	ch, stop := s.watchers.Subscribe(s.current)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		stop()
	}()
	return ch, stop, nil
}

// Update merges the given fields in a single transaction.
func (s *Store) Update(ctx context.Context, fields session.Fields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if fields.IsZero() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "[Store.Update] begin tx")
	}
	for _, kv := range encodeFields(fields) {
		if _, err := tx.ExecContext(ctx, upsertField, kv.key, kv.value); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "[Store.Update] upsert %s", kv.key)
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "[Store.Update] commit")
	}

	s.current = fields.Apply(s.current)
	s.watchers.Broadcast(s.current)
	return nil
}

// Clear resets every field to its default in a single transaction.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM session_fields`); err != nil {
		return errors.Wrap(err, "[Store.Clear] delete fields")
	}
	s.current = session.Defaults()
	s.watchers.Broadcast(s.current)
	return nil
}

type fieldKV struct {
	key   string
	value string
}

func encodeFields(fields session.Fields) []fieldKV {
	var kvs []fieldKV
	if fields.IsLoggedIn != nil {
		kvs = append(kvs, fieldKV{session.KeyIsLoggedIn, strconv.FormatBool(*fields.IsLoggedIn)})
	}
	if fields.UserID != nil {
		kvs = append(kvs, fieldKV{session.KeyUserID, *fields.UserID})
	}
	if fields.Username != nil {
		kvs = append(kvs, fieldKV{session.KeyUsername, *fields.Username})
	}
	if fields.Email != nil {
		kvs = append(kvs, fieldKV{session.KeyEmail, *fields.Email})
	}
	if fields.DisplayName != nil {
		kvs = append(kvs, fieldKV{session.KeyDisplayName, *fields.DisplayName})
	}
	if fields.AccessToken != nil {
		kvs = append(kvs, fieldKV{session.KeyAccessToken, *fields.AccessToken})
	}
	if fields.RefreshToken != nil {
		kvs = append(kvs, fieldKV{session.KeyRefreshToken, *fields.RefreshToken})
	}
	if fields.DeviceID != nil {
		kvs = append(kvs, fieldKV{session.KeyDeviceID, *fields.DeviceID})
	}
	if fields.ServerURL != nil {
		kvs = append(kvs, fieldKV{session.KeyServerURL, *fields.ServerURL})
	}
	return kvs
}

func applyField(s *session.Session, key, value string) {
	switch key {
	case session.KeyIsLoggedIn:
		s.IsLoggedIn = value == "true"
	case session.KeyUserID:
		s.UserID = value
	case session.KeyUsername:
		s.Username = value
	case session.KeyEmail:
		s.Email = value
	case session.KeyDisplayName:
		s.DisplayName = value
	case session.KeyAccessToken:
		s.AccessToken = value
	case session.KeyRefreshToken:
		s.RefreshToken = value
	case session.KeyDeviceID:
		s.DeviceID = value
	case session.KeyServerURL:
		s.ServerURL = value
	}
}
