package db

import (
	"context"
	"fmt"
	"time"
)

// CallRecord is one model evaluation in call_history.
type CallRecord struct {
	ID           int64         `json:"id"`
	CallID       string        `json:"call_id"`
	Model        string        `json:"model"`
	Convention   string        `json:"convention"`
	Bins         int           `json:"bins"`
	Spectrum     int           `json:"spectrum"`
	Status       string        `json:"status"` // "success" or "error"
	ErrorMessage string        `json:"error_message,omitempty"`
	Duration     time.Duration `json:"duration"`
	CreatedAt    time.Time     `json:"created_at"`
}

// InsertCall appends a record and returns its row id.
func (s *Store) InsertCall(ctx context.Context, rec CallRecord) (int64, error) {
	conn, err := s.conn()
	if err != nil {
		return 0, err
	}
	query := `
		INSERT INTO call_history (
			call_id, model, convention, bins, spectrum, status, error_message, duration_us
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := conn.ExecContext(ctx, query,
		rec.CallID, rec.Model, rec.Convention, rec.Bins, rec.Spectrum,
		rec.Status, nullString(rec.ErrorMessage), rec.Duration.Microseconds())
	if err != nil {
		return 0, fmt.Errorf("failed to insert call record: %w", err)
	}
	return res.LastInsertId()
}

// RecentCalls returns up to limit records, newest first.
func (s *Store) RecentCalls(ctx context.Context, limit int) ([]CallRecord, error) {
	conn, err := s.conn()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := conn.QueryContext(ctx, `
		SELECT id, call_id, model, convention, bins, spectrum, status,
		       COALESCE(error_message, ''), duration_us, created_at
		FROM call_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query call history: %w", err)
	}
	defer rows.Close()

	var records []CallRecord
	for rows.Next() {
		var rec CallRecord
		var us int64
		if err := rows.Scan(&rec.ID, &rec.CallID, &rec.Model, &rec.Convention, &rec.Bins,
			&rec.Spectrum, &rec.Status, &rec.ErrorMessage, &us, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan call record: %w", err)
		}
		rec.Duration = time.Duration(us) * time.Microsecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountCalls returns the number of rows in call_history.
func (s *Store) CountCalls(ctx context.Context) (int64, error) {
	conn, err := s.conn()
	if err != nil {
		return 0, err
	}
	var n int64
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM call_history`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count call history: %w", err)
	}
	return n, nil
}

// HistoryWriteHandler persists queued CallRecords through s. Errors go to
// onError when it is non-nil.
func HistoryWriteHandler(s *Store, onError func(error)) WriteHandler[CallRecord] {
	return func(op WriteOperation[CallRecord]) error {
		_, err := s.InsertCall(context.Background(), op.Data)
		if err != nil && onError != nil {
			onError(err)
		}
		return err
	}
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
