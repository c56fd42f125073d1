// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

/*
Package storage provides the concrete [entity.Adapter] implementations:
an in-memory reference store, a SQLite document store, and a Redis
key-value blob store.

All three persist whole records as JSON documents keyed by id, maintain a
slug index, and own an atomic id counter. Records handed out are always
fresh decodes, so callers never alias adapter-internal state.
*/
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/platform/dberr"
)

// memorySnapshot is the backup document format shared by the adapters.
type memorySnapshot struct {
	NextID  int               `json:"next_id"`
	Records []json.RawMessage `json:"records"`
}

// Memory is the in-memory reference adapter.
//
// A mutex guards the record map and the monotonic id counter; the counter
// only moves forward, so ids are never reused even after Delete.
type Memory[T entity.Model] struct {
	factory func() T

	mu      sync.RWMutex
	records map[int][]byte
	lastID  int
}

// NewMemory constructs an empty in-memory adapter. The factory allocates
// fresh zero records for JSON decoding.
func NewMemory[T entity.Model](factory func() T) *Memory[T] {
	return &Memory[T]{
		factory: factory,
		records: make(map[int][]byte),
	}
}

// GetAll implements [entity.Adapter]. Records come back in ascending id
// order so repeated queries are deterministic.
func (m *Memory[T]) GetAll(ctx context.Context) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	records := make([]T, 0, len(ids))
	for _, id := range ids {
		record, err := m.decode(m.records[id])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// GetByID implements [entity.Adapter].
func (m *Memory[T]) GetByID(ctx context.Context, id int) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	raw, ok := m.records[id]
	if !ok {
		var zero T
		return zero, dberr.ErrNotFound
	}

	return m.decode(raw)
}

// GetBySlug implements [entity.Adapter].
func (m *Memory[T]) GetBySlug(ctx context.Context, slug string) (T, error) {
	var zero T
	if slug == "" {
		return zero, dberr.ErrNotFound
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, raw := range m.records {
		record, err := m.decode(raw)
		if err != nil {
			return zero, err
		}
		if record.EntityMeta().Slug == slug {
			return record, nil
		}
	}

	return zero, dberr.ErrNotFound
}

// Create implements [entity.Adapter].
func (m *Memory[T]) Create(ctx context.Context, record T) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("memory: encode record: %w", err)
	}

	id := record.EntityMeta().ID

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[id] = raw
	return nil
}

// Update implements [entity.Adapter].
func (m *Memory[T]) Update(ctx context.Context, id int, record T) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("memory: encode record: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return dberr.ErrNotFound
	}

	m.records[id] = raw
	return nil
}

// Delete implements [entity.Adapter]. The id counter is untouched, so the
// removed id is never handed out again.
func (m *Memory[T]) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return dberr.ErrNotFound
	}

	delete(m.records, id)
	return nil
}

// NextID implements [entity.Adapter] with a mutex-guarded monotonic counter.
func (m *Memory[T]) NextID(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastID++
	return m.lastID, nil
}

// Backup implements [entity.Adapter].
func (m *Memory[T]) Backup(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]int, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	snapshot := memorySnapshot{NextID: m.lastID}
	for _, id := range ids {
		snapshot.Records = append(snapshot.Records, json.RawMessage(m.records[id]))
	}

	return json.Marshal(snapshot)
}

// Restore implements [entity.Adapter]. The previous contents are replaced
// wholesale; the counter resumes from the snapshot's high-water mark.
func (m *Memory[T]) Restore(ctx context.Context, data []byte) error {
	var snapshot memorySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("memory: decode snapshot: %w", err)
	}

	records := make(map[int][]byte, len(snapshot.Records))
	lastID := snapshot.NextID

	for _, raw := range snapshot.Records {
		record, err := m.decode(raw)
		if err != nil {
			return err
		}
		id := record.EntityMeta().ID
		records[id] = raw
		if id > lastID {
			lastID = id
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = records
	m.lastID = lastID
	return nil
}

// decode unmarshals a stored document into a fresh record.
func (m *Memory[T]) decode(raw []byte) (T, error) {
	record := m.factory()
	if err := json.Unmarshal(raw, record); err != nil {
		var zero T
		return zero, fmt.Errorf("memory: decode record: %w", err)
	}
	return record, nil
}
