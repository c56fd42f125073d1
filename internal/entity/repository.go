// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package entity

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/evkarin/lumen/internal/platform/apperr"
	"github.com/evkarin/lumen/internal/platform/dberr"
	"github.com/evkarin/lumen/internal/platform/validate"
	"github.com/evkarin/lumen/pkg/pagination"
	"github.com/evkarin/lumen/pkg/slug"
)

// FieldFunc resolves a record's field value by name. It must cover every
// field used in filters and sort keys, falling back to [MetaField] for the
// base-record fields.
type FieldFunc[T Model] func(record T, name string) (value any, ok bool)

// Descriptor describes one entity type to the generic repository: how to
// resolve named fields, which fields full-text search covers, and where
// auto-derived slugs come from.
type Descriptor[T Model] struct {
	// Name is the human-readable resource name used in error messages.
	Name string

	// Field resolves named fields for filtering and sorting.
	Field FieldFunc[T]

	// SearchFields lists the scalar string fields covered by free-text search.
	SearchFields []string

	// SearchSetFields lists the string-set fields covered by free-text search.
	SearchSetFields []string

	// Title extracts the title-like field slugs are derived from.
	// Nil disables slug derivation for the entity type.
	Title func(record T) string
}

// ListOptions carries the query pipeline parameters for [Repository.List].
// The zero value means: first page, default limit, sorted by created_at
// descending, active records only.
type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string // "asc" or "desc"
	Filters   []Filter
	Search    string

	// IncludeInactive also returns soft-deleted records.
	IncludeInactive bool
}

// normalized fills in the documented defaults.
func (o ListOptions) normalized() ListOptions {
	if o.Page < 1 {
		o.Page = pagination.DefaultPage
	}
	if o.Limit < 1 {
		o.Limit = pagination.DefaultLimit
	}
	if o.SortBy == "" {
		o.SortBy = "created_at"
	}
	if o.SortOrder != "asc" {
		o.SortOrder = "desc"
	}
	return o
}

// Repository is the generic query/validation layer wrapping one storage
// adapter for one entity type.
//
// All operations are synchronous and run to completion per call. The
// repository holds no mutable state of its own; the adapter is the single
// point of shared state and provides its own consistency guarantees.
type Repository[T Model] struct {
	store  Adapter[T]
	desc   Descriptor[T]
	schema validate.Schema[T]
	logger *slog.Logger
}

// NewRepository wires a repository from its adapter, descriptor, and
// validation schema.
func NewRepository[T Model](store Adapter[T], desc Descriptor[T], schema validate.Schema[T], logger *slog.Logger) *Repository[T] {
	return &Repository[T]{
		store:  store,
		desc:   desc,
		schema: schema,
		logger: logger,
	}
}

// Store exposes the underlying adapter for backup/restore orchestration.
func (r *Repository[T]) Store() Adapter[T] { return r.store }

// Name returns the descriptor's resource name.
func (r *Repository[T]) Name() string { return r.desc.Name }

// # Query Pipeline

// List runs the fixed query pipeline: load → filter → search → sort →
// paginate. Soft-deleted records are excluded unless IncludeInactive is set.
//
// The returned metadata's Total is the match count before pagination, so
// concatenating every page reconstructs the full result set.
func (r *Repository[T]) List(ctx context.Context, opts ListOptions) ([]T, pagination.Meta, error) {
	opts = opts.normalized()

	matched, err := r.collect(ctx, opts)
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	r.sortRecords(matched, opts.SortBy, opts.SortOrder)

	total := len(matched)
	meta := pagination.NewMeta(opts.Page, opts.Limit, total)

	offset := (opts.Page - 1) * opts.Limit
	if offset >= total {
		return []T{}, meta, nil
	}

	end := offset + opts.Limit
	if end > total {
		end = total
	}

	return matched[offset:end], meta, nil
}

// Active returns every active record, unfiltered and unsorted. Domain
// aggregations (tag indexes, stats) build on it.
func (r *Repository[T]) Active(ctx context.Context) ([]T, error) {
	return r.collect(ctx, ListOptions{})
}

// Count returns the number of active records matching the filters.
func (r *Repository[T]) Count(ctx context.Context, filters ...Filter) (int, error) {
	matched, err := r.collect(ctx, ListOptions{Filters: filters})
	if err != nil {
		return 0, err
	}
	return len(matched), nil
}

// Search is sugar for List with a free-text query.
func (r *Repository[T]) Search(ctx context.Context, query string, opts ListOptions) ([]T, pagination.Meta, error) {
	opts.Search = query
	return r.List(ctx, opts)
}

// collect loads all records and applies the filter and search stages.
func (r *Repository[T]) collect(ctx context.Context, opts ListOptions) ([]T, error) {
	records, err := r.store.GetAll(ctx)
	if err != nil {
		return nil, dberr.Wrap(err, "list_"+r.desc.Name)
	}

	var matched []T
	for _, record := range records {
		if !opts.IncludeInactive && !record.EntityMeta().IsActive {
			continue
		}
		if !matchesAll(record, r.desc.Field, opts.Filters) {
			continue
		}
		if opts.Search != "" && !r.matchesSearch(record, opts.Search) {
			continue
		}
		matched = append(matched, record)
	}

	return matched, nil
}

// matchesSearch reports whether the query appears, case-insensitively, in
// any designated searchable field.
func (r *Repository[T]) matchesSearch(record T, query string) bool {
	needle := strings.ToLower(query)

	for _, name := range r.desc.SearchFields {
		if value, ok := r.desc.Field(record, name); ok {
			if s, ok := value.(string); ok && strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
	}

	for _, name := range r.desc.SearchSetFields {
		if value, ok := r.desc.Field(record, name); ok {
			if set, ok := value.([]string); ok {
				for _, s := range set {
					if strings.Contains(strings.ToLower(s), needle) {
						return true
					}
				}
			}
		}
	}

	return false
}

// sortRecords orders records by the named field. The sort is stable: ties
// keep their relative encounter order, so repeated calls with identical
// inputs produce identical output order.
func (r *Repository[T]) sortRecords(records []T, sortBy, order string) {
	desc := order == "desc"

	sort.SliceStable(records, func(i, j int) bool {
		a, aok := r.desc.Field(records[i], sortBy)
		b, bok := r.desc.Field(records[j], sortBy)
		if !aok || !bok {
			return false
		}

		cmp := compareValues(a, b)
		if desc {
			return cmp > 0
		}
		return cmp < 0
	})
}

// compareValues orders two field values of the same natural type.
// Unknown or mismatched types compare as equal.
func compareValues(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
		}
	case int:
		if bv, ok := b.(int); ok {
			return av - bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case !av && bv:
				return -1
			case av && !bv:
				return 1
			}
			return 0
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case *time.Time:
		if bv, ok := b.(*time.Time); ok {
			switch {
			case av == nil && bv == nil:
				return 0
			case av == nil:
				return -1
			case bv == nil:
				return 1
			}
			return av.Compare(*bv)
		}
	}
	return 0
}

// # Lookups

// Get returns the active record with the given id.
func (r *Repository[T]) Get(ctx context.Context, id int) (T, error) {
	var zero T

	record, err := r.store.GetByID(ctx, id)
	if err != nil {
		return zero, r.notFound(err)
	}
	if !record.EntityMeta().IsActive {
		return zero, apperr.NotFound(r.desc.Name)
	}

	return record, nil
}

// GetBySlug returns the active record with the given slug.
func (r *Repository[T]) GetBySlug(ctx context.Context, slugValue string) (T, error) {
	var zero T

	record, err := r.store.GetBySlug(ctx, slugValue)
	if err != nil {
		return zero, r.notFound(err)
	}
	if !record.EntityMeta().IsActive {
		return zero, apperr.NotFound(r.desc.Name)
	}

	return record, nil
}

// # Mutations

// Create validates the candidate against the schema, then assigns identity
// (adapter-allocated id, timestamps, active flag, derived slug) and
// persists it. On any validation failure the storage adapter is never
// touched.
func (r *Repository[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T

	if err := r.schema.Validate(record); err != nil {
		return zero, err
	}

	id, err := r.store.NextID(ctx)
	if err != nil {
		return zero, dberr.Wrap(err, "allocate_id_"+r.desc.Name)
	}

	now := time.Now().UTC()
	meta := record.EntityMeta()
	meta.ID = id
	meta.CreatedAt = now
	meta.UpdatedAt = now
	meta.IsActive = true

	if meta.Slug == "" && r.desc.Title != nil {
		if title := r.desc.Title(record); title != "" {
			meta.Slug = slug.Derive(title)
		}
	}

	if err := r.store.Create(ctx, record); err != nil {
		return zero, dberr.Wrap(err, "create_"+r.desc.Name)
	}

	r.logger.Info("entity_created",
		slog.String("entity", r.desc.Name),
		slog.Int("id", meta.ID),
	)

	return record, nil
}

// Update applies a shallow partial update: the patch is merged over the
// stored record, only the fields the patch carried are validated, and the
// merged result is persisted with a bumped UpdatedAt.
func (r *Repository[T]) Update(ctx context.Context, id int, patch Patch[T]) (T, error) {
	var zero T

	record, err := r.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	present := patch.Apply(record)

	if err := r.schema.ValidatePartial(record, present); err != nil {
		return zero, err
	}

	record.EntityMeta().UpdatedAt = time.Now().UTC()

	if err := r.store.Update(ctx, id, record); err != nil {
		return zero, dberr.Wrap(err, "update_"+r.desc.Name)
	}

	return record, nil
}

// Mutate runs fn against the stored record and persists the result,
// bypassing schema validation. It backs counter increments and nested
// collection edits where the caller guarantees consistency.
func (r *Repository[T]) Mutate(ctx context.Context, id int, fn func(record T) error) (T, error) {
	var zero T

	record, err := r.Get(ctx, id)
	if err != nil {
		return zero, err
	}

	if err := fn(record); err != nil {
		return zero, err
	}

	record.EntityMeta().UpdatedAt = time.Now().UTC()

	if err := r.store.Update(ctx, id, record); err != nil {
		return zero, dberr.Wrap(err, "mutate_"+r.desc.Name)
	}

	return record, nil
}

// Delete soft-deletes the record: the active flag is cleared and the record
// disappears from all default reads. The id is never reused.
func (r *Repository[T]) Delete(ctx context.Context, id int) error {
	record, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	meta := record.EntityMeta()
	meta.IsActive = false
	meta.UpdatedAt = time.Now().UTC()

	if err := r.store.Update(ctx, id, record); err != nil {
		return dberr.Wrap(err, "delete_"+r.desc.Name)
	}

	r.logger.Warn("entity_deleted",
		slog.String("entity", r.desc.Name),
		slog.Int("id", id),
	)

	return nil
}

// Purge physically removes a record, active or not. It exists for
// replace-mode imports and admin cleanup; everything else uses Delete.
func (r *Repository[T]) Purge(ctx context.Context, id int) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return r.notFound(err)
	}
	return nil
}

// notFound maps adapter errors to a resource-specific not-found message.
func (r *Repository[T]) notFound(err error) error {
	wrapped := dberr.Wrap(err, r.desc.Name)
	if ae := apperr.As(wrapped); ae != nil && ae.Code == "NOT_FOUND" {
		return apperr.NotFound(r.desc.Name)
	}
	return wrapped
}
