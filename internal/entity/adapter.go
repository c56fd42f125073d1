// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package entity

import "context"

// Adapter is the pluggable storage contract every backing store implements.
//
// Implementations persist and retrieve whole records; all query logic
// (filtering, search, sorting, pagination) lives in [Repository]. Missing
// records are reported as [dberr.ErrNotFound], never as a nil record with
// a nil error.
//
// # Concurrency
//
// Adapters must provide their own consistency guarantees: id allocation via
// NextID must be atomic under concurrent writers (mutex-guarded counter,
// SQL auto-increment, Redis INCR). The repository never derives ids by
// scanning existing records.
type Adapter[T Model] interface {
	// GetAll returns every stored record, including soft-deleted ones.
	GetAll(ctx context.Context) ([]T, error)

	// GetByID returns the record with the given id.
	GetByID(ctx context.Context, id int) (T, error)

	// GetBySlug returns the record with the given non-empty slug.
	GetBySlug(ctx context.Context, slug string) (T, error)

	// Create persists a record whose id and timestamps the caller has
	// already assigned.
	Create(ctx context.Context, record T) error

	// Update replaces the stored record with the given id.
	Update(ctx context.Context, id int, record T) error

	// Delete physically removes the record with the given id.
	Delete(ctx context.Context, id int) error

	// NextID atomically allocates the next record id. Allocated ids are
	// never reused, even after Delete.
	NextID(ctx context.Context) (int, error)

	// Backup serializes the adapter's full contents.
	Backup(ctx context.Context) ([]byte, error)

	// Restore replaces the adapter's contents from a Backup payload.
	Restore(ctx context.Context, data []byte) error
}
