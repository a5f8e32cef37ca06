/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package history keeps a bounded SQLite log of settled update checks.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/Sunoo/homebridge-plugin-update-check/pkg/logger"
	"github.com/Sunoo/homebridge-plugin-update-check/pkg/models"
	_ "modernc.org/sqlite" // pure Go driver registered as "sqlite"
)

// DefaultMaxEntries bounds the table; older rows are pruned on insert.
const DefaultMaxEntries = 500

var (
	// ErrNoHistory is returned by Last when nothing has been recorded.
	ErrNoHistory = errors.New("no check history")

	errEmptyPath = errors.New("history path is empty")
)

const schema = `
CREATE TABLE IF NOT EXISTS checks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	source      TEXT    NOT NULL,
	outdated    INTEGER NOT NULL,
	packages    TEXT    NOT NULL DEFAULT '[]',
	error       TEXT    NOT NULL DEFAULT '',
	started_at  INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS checks_started_at ON checks (started_at);
`

// Store records check outcomes. It satisfies poller.Recorder.
type Store struct {
	db         *sql.DB
	path       string
	maxEntries int
	logger     logger.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithMaxEntries overrides DefaultMaxEntries. Non-positive values disable pruning.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		s.maxEntries = n
	}
}

func WithLogger(log logger.Logger) Option {
	return func(s *Store) {
		s.logger = log
	}
}

// Open creates or opens the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if path == "" {
		return nil, errEmptyPath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", buildDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping history db: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}

	s := &Store{
		db:         db,
		path:       path,
		maxEntries: DefaultMaxEntries,
		logger:     logger.NewTestLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.logger.Debug().Str("path", path).Msg("Opened check history")

	return s, nil
}

func buildDSN(path string) string {
	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(path),
	}

	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "busy_timeout(3000)")
	u.RawQuery = q.Encode()

	return u.String()
}

// Record inserts outcome and prunes rows beyond the configured maximum.
func (s *Store) Record(ctx context.Context, outcome *models.CheckOutcome) error {
	if outcome == nil {
		return nil
	}

	packages := outcome.Packages
	if packages == nil {
		packages = []string{}
	}

	encoded, err := json.Marshal(packages)
	if err != nil {
		return fmt.Errorf("encode packages: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO checks (source, outdated, packages, error, started_at, duration_ns)
		VALUES (?, ?, ?, ?, ?, ?)
	`, outcome.Source, outcome.Count, string(encoded), outcome.Error,
		outcome.StartedAt.UnixNano(), int64(outcome.Duration))
	if err != nil {
		return fmt.Errorf("insert check: %w", err)
	}

	if s.maxEntries <= 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM checks
		WHERE id NOT IN (SELECT id FROM checks ORDER BY id DESC LIMIT ?)
	`, s.maxEntries)
	if err != nil {
		return fmt.Errorf("prune checks: %w", err)
	}

	return nil
}

// Last returns the most recent outcome or ErrNoHistory.
func (s *Store) Last(ctx context.Context) (*models.CheckOutcome, error) {
	recent, err := s.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}

	if len(recent) == 0 {
		return nil, ErrNoHistory
	}

	return recent[0], nil
}

// LastSuccess returns the most recent outcome without an error, or ErrNoHistory.
func (s *Store) LastSuccess(ctx context.Context) (*models.CheckOutcome, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT source, outdated, packages, error, started_at, duration_ns
		FROM checks
		WHERE error = ''
		ORDER BY id DESC
		LIMIT 1
	`)

	outcome, err := scanOutcome(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoHistory
	}

	return outcome, err
}

// Recent returns up to limit outcomes, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]*models.CheckOutcome, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, outdated, packages, error, started_at, duration_ns
		FROM checks
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query checks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []*models.CheckOutcome

	for rows.Next() {
		outcome, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}

		out = append(out, outcome)
	}

	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOutcome(row scanner) (*models.CheckOutcome, error) {
	var (
		outcome   models.CheckOutcome
		packages  string
		startedAt int64
		duration  int64
	)

	if err := row.Scan(&outcome.Source, &outcome.Count, &packages, &outcome.Error, &startedAt, &duration); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}

		return nil, fmt.Errorf("scan check: %w", err)
	}

	if err := json.Unmarshal([]byte(packages), &outcome.Packages); err != nil {
		return nil, fmt.Errorf("decode packages: %w", err)
	}

	if len(outcome.Packages) == 0 {
		outcome.Packages = nil
	}

	outcome.StartedAt = time.Unix(0, startedAt).UTC()
	outcome.Duration = time.Duration(duration)

	return &outcome, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Close() error {
	return s.db.Close()
}
