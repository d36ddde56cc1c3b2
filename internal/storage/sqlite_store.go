package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store, err := NewSQLiteStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// PutTrigger upserts by identifier: re-registering the same identifier
// replaces the row instead of duplicating it.
func (s *SQLiteStore) PutTrigger(ctx context.Context, in Trigger) error {
	meta, err := encodeMeta(in.Meta)
	if err != nil {
		return err
	}
	created := in.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO triggers (id, fire_at, title, body, kind, meta, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			fire_at = excluded.fire_at,
			title = excluded.title,
			body = excluded.body,
			kind = excluded.kind,
			meta = excluded.meta`,
		in.ID, mustTime(in.FireAt), in.Title, in.Body, in.Kind, meta, mustTime(created),
	)
	return err
}

func (s *SQLiteStore) GetTrigger(ctx context.Context, id string) (Trigger, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, fire_at, title, body, kind, meta, created_at
		FROM triggers WHERE id = ?`, id)
	item, err := scanTrigger(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Trigger{}, ErrNotFound
		}
		return Trigger{}, err
	}
	return item, nil
}

func (s *SQLiteStore) DeleteTrigger(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM triggers WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (s *SQLiteStore) ListTriggerIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM triggers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if scanErr := rows.Scan(&id); scanErr != nil {
			return nil, scanErr
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListTriggers(ctx context.Context) ([]Trigger, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, fire_at, title, body, kind, meta, created_at
		FROM triggers ORDER BY fire_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Trigger, 0)
	for rows.Next() {
		item, scanErr := scanTrigger(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, error) {
	row := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (s *SQLiteStore) PutSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func encodeMeta(meta map[string]string) (string, error) {
	if len(meta) == 0 {
		return "{}", nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("encode trigger meta: %w", err)
	}
	return string(raw), nil
}

func decodeMeta(raw string) (map[string]string, error) {
	if raw == "" || raw == "{}" {
		return nil, nil
	}
	meta := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, fmt.Errorf("decode trigger meta: %w", err)
	}
	return meta, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrigger(s scanner) (Trigger, error) {
	var out Trigger
	var fireAt string
	var meta string
	var created string
	if err := s.Scan(&out.ID, &fireAt, &out.Title, &out.Body, &out.Kind, &meta, &created); err != nil {
		return Trigger{}, err
	}
	at, err := parseRequiredTime(fireAt)
	if err != nil {
		return Trigger{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Trigger{}, err
	}
	decoded, err := decodeMeta(meta)
	if err != nil {
		return Trigger{}, err
	}
	out.FireAt = at
	out.CreatedAt = createdAt
	out.Meta = decoded
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
