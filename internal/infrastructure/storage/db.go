package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"PizzaScanner/internal/ports"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// dayLayout is how calendar dates are stored in every table.
	dayLayout = "2006-01-02"
)

// Schema creates all tables. It is safe to run repeatedly.
const Schema = `
CREATE TABLE IF NOT EXISTS menu_days (
	day                 TEXT NOT NULL,
	date_label          TEXT NOT NULL,
	raw_ingredient_line TEXT NOT NULL,
	ingredients         TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_menu_days_date_label ON menu_days (date_label);
CREATE INDEX IF NOT EXISTS idx_menu_days_day ON menu_days (day);

CREATE TABLE IF NOT EXISTS ingredient_occurrences (
	day  TEXT NOT NULL,
	name TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ingredient_occurrences_day ON ingredient_occurrences (day);
CREATE INDEX IF NOT EXISTS idx_ingredient_occurrences_name ON ingredient_occurrences (name);

CREATE TABLE IF NOT EXISTS ingredient_statistics (
	ingredient       TEXT PRIMARY KEY,
	occurrence_count INTEGER NOT NULL,
	percentage       DOUBLE PRECISION NOT NULL
);
`

// Options describe how to reach the database.
type Options struct {
	Driver       string
	DSN          string
	MaxOpenConns int
}

// Open connects, tunes the pool and pings the database.
func Open(ctx context.Context, opts Options) (*sql.DB, error) {
	if opts.Driver != DriverPostgres && opts.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := sql.Open(opts.Driver, opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxIdleConns(maxOpen)
	if opts.Driver == DriverSQLite {
		// every new connection to an in-memory sqlite DSN is a fresh database
		maxOpen = 1
	} else {
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	db.SetMaxOpenConns(maxOpen)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type conn struct {
	run runner
	sb  sq.StatementBuilderType
}

// Store hands out repositories sharing one database handle.
type Store struct {
	db *sql.DB
	sb sq.StatementBuilderType
}

var _ ports.Transactor = (*Store)(nil)

// New wraps db; driver selects the placeholder format.
func New(db *sql.DB, driver string) *Store {
	var format sq.PlaceholderFormat = sq.Question
	if driver == DriverPostgres {
		format = sq.Dollar
	}
	return &Store{db: db, sb: sq.StatementBuilder.PlaceholderFormat(format)}
}

// Migrate creates missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close releases the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) conn() conn {
	return conn{run: s.db, sb: s.sb}
}

// Menus returns the menu day repository.
func (s *Store) Menus() *MenuRepository {
	return &MenuRepository{c: s.conn()}
}

// Ingredients returns the ingredient occurrence repository.
func (s *Store) Ingredients() *IngredientRepository {
	return &IngredientRepository{c: s.conn()}
}

// Statistics returns the ingredient statistic repository.
func (s *Store) Statistics() *StatisticRepository {
	return &StatisticRepository{c: s.conn()}
}

// WithinTx runs fn with menu and ingredient repositories bound to one transaction.
// The transaction commits only if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, w ports.MenuWriter) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	c := conn{run: tx, sb: s.sb}
	err = fn(ctx, ports.MenuWriter{
		Menus:       &MenuRepository{c: c},
		Ingredients: &IngredientRepository{c: c},
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func dayKey(t time.Time) string {
	return t.UTC().Format(dayLayout)
}

func dayKeys(dates []time.Time) []string {
	keys := make([]string, 0, len(dates))
	seen := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		key := dayKey(d)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	return keys
}

func parseDay(key string) (time.Time, error) {
	t, err := time.Parse(dayLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored day %q: %w", key, err)
	}
	return t, nil
}

func affected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
