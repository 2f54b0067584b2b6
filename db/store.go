package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrNotFound is returned when a key has no row.
var ErrNotFound = errors.New("not found")

// Setting keys in the settings table.
const (
	KeyChatter      = "chatter"
	KeyAbundance    = "abundance"
	KeyCrossSection = "cross_section"
	KeyCosmoH0      = "cosmo_h0"
	KeyCosmoQ0      = "cosmo_q0"
	KeyCosmoLambda0 = "cosmo_lambda0"
)

const upsertSetting = `
	INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`

// DefaultSettings are the values a fresh database is seeded with.
var DefaultSettings = map[string]string{
	KeyChatter:      "10",
	KeyAbundance:    "angr",
	KeyCrossSection: "vern",
	KeyCosmoH0:      "70",
	KeyCosmoQ0:      "0",
	KeyCosmoLambda0: "0.73",
}

// Store provides typed access to the settings tables.
type Store struct {
	db *Database
}

// NewStore wraps an open Database.
func NewStore(db *Database) *Store {
	return &Store{db: db}
}

func (s *Store) conn() (*sql.DB, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	conn := s.db.DB()
	if conn == nil {
		return nil, fmt.Errorf("database connection is closed")
	}
	return conn, nil
}

// Ping checks that the underlying database is reachable.
func (s *Store) Ping() error {
	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.db.Ping()
}

// Setting returns the value stored under key.
func (s *Store) Setting(ctx context.Context, key string) (string, error) {
	conn, err := s.conn()
	if err != nil {
		return "", err
	}
	var value string
	err = conn.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("setting %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %q: %w", key, err)
	}
	return value, nil
}

// PutSetting inserts or replaces a setting.
func (s *Store) PutSetting(ctx context.Context, key, value string) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, upsertSetting, key, value); err != nil {
		return fmt.Errorf("failed to write setting %q: %w", key, err)
	}
	return nil
}

// PutSettings writes every entry of values in one transaction: either all
// of them are stored or none is.
func (s *Store) PutSettings(ctx context.Context, values map[string]string) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range slices.Sorted(maps.Keys(values)) {
		if _, err := tx.ExecContext(ctx, upsertSetting, key, values[key]); err != nil {
			return fmt.Errorf("failed to write setting %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// AbundanceTables lists the known abundance table names.
func (s *Store) AbundanceTables(ctx context.Context) ([]string, error) {
	return s.names(ctx, `SELECT DISTINCT name FROM abundance_tables ORDER BY name`)
}

// CrossSectionTables lists the known cross-section table names.
func (s *Store) CrossSectionTables(ctx context.Context) ([]string, error) {
	return s.names(ctx, `SELECT name FROM cross_section_tables ORDER BY name`)
}

func (s *Store) names(ctx context.Context, query string) ([]string, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Abundances returns a table's values indexed by Z-1.
func (s *Store) Abundances(ctx context.Context, table string) ([]float64, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx,
		`SELECT z, value FROM abundance_tables WHERE name = ? ORDER BY z`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to read abundance table %q: %w", table, err)
	}
	defer rows.Close()

	var values []float64
	for rows.Next() {
		var z int
		var v float64
		if err := rows.Scan(&z, &v); err != nil {
			return nil, fmt.Errorf("failed to scan abundance: %w", err)
		}
		for len(values) < z-1 {
			values = append(values, 0)
		}
		values = append(values, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("abundance table %q: %w", table, ErrNotFound)
	}
	return values, nil
}

// XFLT returns the XFLT keywords of one spectrum.
func (s *Store) XFLT(ctx context.Context, spectrum int) (map[string]float64, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, `SELECT key, value FROM xflt WHERE spectrum = ?`, spectrum)
	if err != nil {
		return nil, fmt.Errorf("failed to read xflt for spectrum %d: %w", spectrum, err)
	}
	defer rows.Close()

	values := make(map[string]float64)
	for rows.Next() {
		var key string
		var v float64
		if err := rows.Scan(&key, &v); err != nil {
			return nil, fmt.Errorf("failed to scan xflt: %w", err)
		}
		values[key] = v
	}
	return values, rows.Err()
}

// ReplaceXFLT swaps the keywords of one spectrum for values.
func (s *Store) ReplaceXFLT(ctx context.Context, spectrum int, values map[string]float64) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM xflt WHERE spectrum = ?`, spectrum); err != nil {
		return fmt.Errorf("failed to clear xflt for spectrum %d: %w", spectrum, err)
	}
	for key, v := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO xflt (spectrum, key, value) VALUES (?, ?, ?)`, spectrum, key, v); err != nil {
			return fmt.Errorf("failed to write xflt %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// XFLTValue returns one XFLT keyword.
func (s *Store) XFLTValue(ctx context.Context, spectrum int, key string) (float64, error) {
	conn, err := s.conn()
	if err != nil {
		return 0, err
	}
	var v float64
	err = conn.QueryRowContext(ctx,
		`SELECT value FROM xflt WHERE spectrum = ? AND key = ?`, spectrum, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("xflt %q for spectrum %d: %w", key, spectrum, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read xflt %q: %w", key, err)
	}
	return v, nil
}

// ClearXFLT removes the keywords of every spectrum.
func (s *Store) ClearXFLT(ctx context.Context) error {
	return s.exec(ctx, `DELETE FROM xflt`)
}

// ModelString returns one entry of the model string database.
func (s *Store) ModelString(ctx context.Context, key string) (string, error) {
	conn, err := s.conn()
	if err != nil {
		return "", err
	}
	var v string
	err = conn.QueryRowContext(ctx, `SELECT value FROM model_strings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("model string %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read model string %q: %w", key, err)
	}
	return v, nil
}

// PutModelString inserts or replaces a model string.
func (s *Store) PutModelString(ctx context.Context, key, value string) error {
	return s.exec(ctx, `
		INSERT INTO model_strings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
}

// ModelStrings returns the whole model string database.
func (s *Store) ModelStrings(ctx context.Context) (map[string]string, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := conn.QueryContext(ctx, `SELECT key, value FROM model_strings`)
	if err != nil {
		return nil, fmt.Errorf("failed to read model strings: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, v string
		if err := rows.Scan(&key, &v); err != nil {
			return nil, fmt.Errorf("failed to scan model string: %w", err)
		}
		values[key] = v
	}
	return values, rows.Err()
}

// ClearModelStrings empties the model string database.
func (s *Store) ClearModelStrings(ctx context.Context) error {
	return s.exec(ctx, `DELETE FROM model_strings`)
}

// Keyword returns one entry of the keyword database.
func (s *Store) Keyword(ctx context.Context, key string) (float64, error) {
	conn, err := s.conn()
	if err != nil {
		return 0, err
	}
	var v float64
	err = conn.QueryRowContext(ctx, `SELECT value FROM keywords WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("keyword %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read keyword %q: %w", key, err)
	}
	return v, nil
}

// PutKeyword inserts or replaces a keyword.
func (s *Store) PutKeyword(ctx context.Context, key string, value float64) error {
	return s.exec(ctx, `
		INSERT INTO keywords (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
}

// ClearKeywords empties the keyword database.
func (s *Store) ClearKeywords(ctx context.Context) error {
	return s.exec(ctx, `DELETE FROM keywords`)
}

// Reset restores DefaultSettings and empties the XFLT, model string and
// keyword tables. Abundance and cross-section tables are untouched.
func (s *Store) Reset(ctx context.Context) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{`DELETE FROM xflt`, `DELETE FROM model_strings`, `DELETE FROM keywords`} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("failed to reset: %w", err)
		}
	}
	for key, value := range DefaultSettings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
			key, value); err != nil {
			return fmt.Errorf("failed to reset setting %q: %w", key, err)
		}
	}
	return tx.Commit()
}

func (s *Store) exec(ctx context.Context, query string, args ...interface{}) error {
	conn, err := s.conn()
	if err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to execute statement: %w", err)
	}
	return nil
}
