// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/platform/dberr"
)

// SQLite is the relational document adapter.
//
// Each record is one row in the documents table (kind, id, slug, data);
// id allocation rides an UPSERT against the id_counters table, so it is
// atomic under concurrent writers. The schema is managed by golang-migrate
// (see data/migrations). Turso/libSQL serves the same file format.
type SQLite[T entity.Model] struct {
	db      *sql.DB
	kind    string
	factory func() T
}

// NewSQLite constructs an adapter for one entity kind over a shared handle.
func NewSQLite[T entity.Model](db *sql.DB, kind string, factory func() T) *SQLite[T] {
	return &SQLite[T]{db: db, kind: kind, factory: factory}
}

// GetAll implements [entity.Adapter], in ascending id order.
func (s *SQLite[T]) GetAll(ctx context.Context) ([]T, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM documents WHERE kind = ? ORDER BY id ASC`, s.kind)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query %s: %w", s.kind, err)
	}
	defer rows.Close()

	var records []T
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sqlite: scan %s: %w", s.kind, err)
		}

		record, err := s.decode(raw)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// GetByID implements [entity.Adapter].
func (s *SQLite[T]) GetByID(ctx context.Context, id int) (T, error) {
	var zero T
	var raw []byte

	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE kind = ? AND id = ?`, s.kind, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, dberr.ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("sqlite: get %s/%d: %w", s.kind, id, err)
	}

	return s.decode(raw)
}

// GetBySlug implements [entity.Adapter].
func (s *SQLite[T]) GetBySlug(ctx context.Context, slug string) (T, error) {
	var zero T
	if slug == "" {
		return zero, dberr.ErrNotFound
	}

	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE kind = ? AND slug = ?`, s.kind, slug).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, dberr.ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("sqlite: get %s by slug: %w", s.kind, err)
	}

	return s.decode(raw)
}

// Create implements [entity.Adapter].
func (s *SQLite[T]) Create(ctx context.Context, record T) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("sqlite: encode record: %w", err)
	}

	meta := record.EntityMeta()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (kind, id, slug, data) VALUES (?, ?, NULLIF(?, ''), ?)`,
		s.kind, meta.ID, meta.Slug, raw)
	if err != nil {
		return fmt.Errorf("sqlite: insert %s/%d: %w", s.kind, meta.ID, err)
	}

	return nil
}

// Update implements [entity.Adapter].
func (s *SQLite[T]) Update(ctx context.Context, id int, record T) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("sqlite: encode record: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE documents SET slug = NULLIF(?, ''), data = ? WHERE kind = ? AND id = ?`,
		record.EntityMeta().Slug, raw, s.kind, id)
	if err != nil {
		return fmt.Errorf("sqlite: update %s/%d: %w", s.kind, id, err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// Delete implements [entity.Adapter].
func (s *SQLite[T]) Delete(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE kind = ? AND id = ?`, s.kind, id)
	if err != nil {
		return fmt.Errorf("sqlite: delete %s/%d: %w", s.kind, id, err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return dberr.ErrNotFound
	}

	return nil
}

// NextID implements [entity.Adapter] with an atomic counter UPSERT.
func (s *SQLite[T]) NextID(ctx context.Context) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO id_counters (kind, last_id) VALUES (?, 1)
		ON CONFLICT (kind) DO UPDATE SET last_id = last_id + 1
		RETURNING last_id`, s.kind).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("sqlite: allocate id for %s: %w", s.kind, err)
	}

	return id, nil
}

// Backup implements [entity.Adapter].
func (s *SQLite[T]) Backup(ctx context.Context) ([]byte, error) {
	snapshot := memorySnapshot{NextID: s.counter(ctx)}

	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM documents WHERE kind = ? ORDER BY id ASC`, s.kind)
	if err != nil {
		return nil, fmt.Errorf("sqlite: backup %s: %w", s.kind, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sqlite: backup scan %s: %w", s.kind, err)
		}
		snapshot.Records = append(snapshot.Records, json.RawMessage(raw))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return json.Marshal(snapshot)
}

// Restore implements [entity.Adapter]. Runs in one transaction: the kind's
// rows are replaced wholesale and the counter resumes from the snapshot's
// high-water mark.
func (s *SQLite[T]) Restore(ctx context.Context, data []byte) error {
	var snapshot memorySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("sqlite: decode snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin restore: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM documents WHERE kind = ?`, s.kind); err != nil {
		return fmt.Errorf("sqlite: clear %s: %w", s.kind, err)
	}

	lastID := snapshot.NextID
	for _, raw := range snapshot.Records {
		record, err := s.decode(raw)
		if err != nil {
			return err
		}

		meta := record.EntityMeta()
		if meta.ID > lastID {
			lastID = meta.ID
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (kind, id, slug, data) VALUES (?, ?, NULLIF(?, ''), ?)`,
			s.kind, meta.ID, meta.Slug, []byte(raw)); err != nil {
			return fmt.Errorf("sqlite: restore %s/%d: %w", s.kind, meta.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO id_counters (kind, last_id) VALUES (?, ?)
		ON CONFLICT (kind) DO UPDATE SET last_id = excluded.last_id`,
		s.kind, lastID); err != nil {
		return fmt.Errorf("sqlite: restore counter for %s: %w", s.kind, err)
	}

	return tx.Commit()
}

// counter reads the kind's current high-water mark, zero if unused.
func (s *SQLite[T]) counter(ctx context.Context) int {
	var id int
	_ = s.db.QueryRowContext(ctx,
		`SELECT last_id FROM id_counters WHERE kind = ?`, s.kind).Scan(&id)
	return id
}

// decode unmarshals a stored document into a fresh record.
func (s *SQLite[T]) decode(raw []byte) (T, error) {
	record := s.factory()
	if err := json.Unmarshal(raw, record); err != nil {
		var zero T
		return zero, fmt.Errorf("sqlite: decode %s record: %w", s.kind, err)
	}
	return record, nil
}
