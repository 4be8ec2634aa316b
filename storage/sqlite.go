package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradejournal/id"
)

const DefaultPollInterval = 500 * time.Millisecond

type SQLiteOptions struct {
	// PollInterval is how often the store looks for writes made by other
	// instances. Zero means DefaultPollInterval.
	PollInterval time.Duration
	Logger       *zap.Logger
}

// SQLite is an instance on a SQLite database file. Every process (or
// goroutine) that opens the same file is a separate instance and sees the
// others' writes through OnExternalChange.
type SQLite struct {
	db     *sql.DB
	origin string
	log    *zap.Logger
	subs   subscribers

	// serialises writes from this instance
	wmu sync.Mutex

	lastRev int64
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
}

var _ Store = (*SQLite)(nil)

func NewSQLite(path string, opts SQLiteOptions) (*SQLite, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	poll := opts.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	var last sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(rev) FROM kv`).Scan(&last); err != nil {
		db.Close()
		return nil, fmt.Errorf("read revision: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &SQLite{
		db:      db,
		origin:  id.New(),
		log:     log.With(zap.String("store", path)),
		lastRev: last.Int64,
		cancel:  cancel,
	}

	s.wg.Add(1)
	go s.watch(ctx, poll)
	return s, nil
}

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}

// Origin identifies this instance in the kv table.
func (s *SQLite) Origin() string { return s.origin }

func (s *SQLite) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, err
	}
	if value == nil {
		return nil, false, nil
	}
	return value, true, nil
}

func (s *SQLite) Set(key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	return s.put(key, value)
}

func (s *SQLite) Delete(key string) error {
	return s.put(key, nil)
}

func (s *SQLite) put(key string, value []byte) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO kv (key, value, rev, origin, updated)
		VALUES (?, ?, (SELECT COALESCE(MAX(rev), 0) + 1 FROM kv), ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			rev = excluded.rev,
			origin = excluded.origin,
			updated = excluded.updated`,
		key, value, s.origin, time.Now().UTC(),
	)
	return err
}

func (s *SQLite) OnExternalChange(key string, fn ChangeFunc) func() {
	return s.subs.add(key, fn)
}

type kvRow struct {
	key    string
	value  []byte
	rev    int64
	origin string
}

func (s *SQLite) watch(ctx context.Context, every time.Duration) {
	defer s.wg.Done()

	t := time.NewTicker(every)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		rows, err := s.changesSince(ctx, s.lastRev)
		if err != nil {
			if ctx.Err() == nil {
				s.log.Warn("poll changes", zap.Error(err))
			}
			continue
		}
		for _, r := range rows {
			s.lastRev = r.rev
			if r.origin == s.origin {
				continue
			}
			s.log.Debug("external change", zap.String("key", r.key), zap.Int64("rev", r.rev))
			s.subs.notify(r.key, r.value, r.value != nil)
		}
	}
}

func (s *SQLite) changesSince(ctx context.Context, rev int64) ([]kvRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value, rev, origin
		FROM kv
		WHERE rev > ?
		ORDER BY rev ASC`, rev)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []kvRow
	for rows.Next() {
		var r kvRow
		if err := rows.Scan(&r.key, &r.value, &r.rev, &r.origin); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Close stops change polling and closes the database.
func (s *SQLite) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		s.subs.clear()
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}
