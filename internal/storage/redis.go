// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/platform/constants"
	"github.com/evkarin/lumen/internal/platform/dberr"
)

// Redis is the key-value blob adapter.
//
// Documents live in one hash per kind (field = id, value = JSON blob), a
// second hash maps slugs to ids, and id allocation uses INCR, which is
// atomic server-side.
type Redis[T entity.Model] struct {
	client  *redis.Client
	kind    string
	factory func() T
}

// NewRedis constructs an adapter for one entity kind over a shared client.
func NewRedis[T entity.Model](client *redis.Client, kind string, factory func() T) *Redis[T] {
	return &Redis[T]{client: client, kind: kind, factory: factory}
}

func (r *Redis[T]) docsKey() string    { return constants.RedisPrefixDocuments + r.kind }
func (r *Redis[T]) slugsKey() string   { return constants.RedisPrefixSlugs + r.kind }
func (r *Redis[T]) counterKey() string { return constants.RedisPrefixCounter + r.kind }

// GetAll implements [entity.Adapter]. Hash iteration order is arbitrary,
// so records are sorted by id before returning.
func (r *Redis[T]) GetAll(ctx context.Context) ([]T, error) {
	raw, err := r.client.HGetAll(ctx, r.docsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("redis: load %s: %w", r.kind, err)
	}

	records := make([]T, 0, len(raw))
	for _, blob := range raw {
		record, err := r.decode([]byte(blob))
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].EntityMeta().ID < records[j].EntityMeta().ID
	})

	return records, nil
}

// GetByID implements [entity.Adapter].
func (r *Redis[T]) GetByID(ctx context.Context, id int) (T, error) {
	var zero T

	blob, err := r.client.HGet(ctx, r.docsKey(), strconv.Itoa(id)).Result()
	if errors.Is(err, redis.Nil) {
		return zero, dberr.ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("redis: get %s/%d: %w", r.kind, id, err)
	}

	return r.decode([]byte(blob))
}

// GetBySlug implements [entity.Adapter] via the slug index hash.
func (r *Redis[T]) GetBySlug(ctx context.Context, slug string) (T, error) {
	var zero T
	if slug == "" {
		return zero, dberr.ErrNotFound
	}

	idStr, err := r.client.HGet(ctx, r.slugsKey(), slug).Result()
	if errors.Is(err, redis.Nil) {
		return zero, dberr.ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("redis: resolve slug %s: %w", slug, err)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil {
		return zero, fmt.Errorf("redis: corrupt slug index for %s: %w", slug, err)
	}

	return r.GetByID(ctx, id)
}

// Create implements [entity.Adapter].
func (r *Redis[T]) Create(ctx context.Context, record T) error {
	return r.write(ctx, record, "")
}

// Update implements [entity.Adapter]. A changed slug drops the old index
// entry so stale slugs never resolve.
func (r *Redis[T]) Update(ctx context.Context, id int, record T) error {
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return r.write(ctx, record, existing.EntityMeta().Slug)
}

// write persists the record blob and maintains the slug index.
func (r *Redis[T]) write(ctx context.Context, record T, previousSlug string) error {
	blob, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redis: encode record: %w", err)
	}

	meta := record.EntityMeta()

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, r.docsKey(), strconv.Itoa(meta.ID), blob)
	if previousSlug != "" && previousSlug != meta.Slug {
		pipe.HDel(ctx, r.slugsKey(), previousSlug)
	}
	if meta.Slug != "" {
		pipe.HSet(ctx, r.slugsKey(), meta.Slug, strconv.Itoa(meta.ID))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: write %s/%d: %w", r.kind, meta.ID, err)
	}

	return nil
}

// Delete implements [entity.Adapter].
func (r *Redis[T]) Delete(ctx context.Context, id int) error {
	record, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.HDel(ctx, r.docsKey(), strconv.Itoa(id))
	if slug := record.EntityMeta().Slug; slug != "" {
		pipe.HDel(ctx, r.slugsKey(), slug)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: delete %s/%d: %w", r.kind, id, err)
	}

	return nil
}

// NextID implements [entity.Adapter] with the server-side atomic INCR.
func (r *Redis[T]) NextID(ctx context.Context) (int, error) {
	id, err := r.client.Incr(ctx, r.counterKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: allocate id for %s: %w", r.kind, err)
	}
	return int(id), nil
}

// Backup implements [entity.Adapter].
func (r *Redis[T]) Backup(ctx context.Context) ([]byte, error) {
	records, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	lastID, err := r.client.Get(ctx, r.counterKey()).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis: read counter for %s: %w", r.kind, err)
	}

	snapshot := memorySnapshot{NextID: lastID}
	for _, record := range records {
		blob, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("redis: encode record: %w", err)
		}
		snapshot.Records = append(snapshot.Records, blob)
	}

	return json.Marshal(snapshot)
}

// Restore implements [entity.Adapter]. The kind's keys are replaced
// wholesale in one pipeline.
func (r *Redis[T]) Restore(ctx context.Context, data []byte) error {
	var snapshot memorySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("redis: decode snapshot: %w", err)
	}

	lastID := snapshot.NextID

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.docsKey(), r.slugsKey())

	for _, raw := range snapshot.Records {
		record, err := r.decode(raw)
		if err != nil {
			return err
		}

		meta := record.EntityMeta()
		if meta.ID > lastID {
			lastID = meta.ID
		}

		pipe.HSet(ctx, r.docsKey(), strconv.Itoa(meta.ID), []byte(raw))
		if meta.Slug != "" {
			pipe.HSet(ctx, r.slugsKey(), meta.Slug, strconv.Itoa(meta.ID))
		}
	}

	pipe.Set(ctx, r.counterKey(), lastID, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis: restore %s: %w", r.kind, err)
	}

	return nil
}

// decode unmarshals a stored document into a fresh record.
func (r *Redis[T]) decode(raw []byte) (T, error) {
	record := r.factory()
	if err := json.Unmarshal(raw, record); err != nil {
		var zero T
		return zero, fmt.Errorf("redis: decode %s record: %w", r.kind, err)
	}
	return record, nil
}
