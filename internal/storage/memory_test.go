// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package storage_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/storage"
)

type document struct {
	entity.Meta

	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
}

func newStore() *storage.Memory[*document] {
	return storage.NewMemory(func() *document { return &document{} })
}

func putDocument(t *testing.T, store *storage.Memory[*document], title, slug string) *document {
	t.Helper()
	ctx := context.Background()

	id, err := store.NextID(ctx)
	require.NoError(t, err)

	doc := &document{Title: title}
	doc.ID = id
	doc.Slug = slug
	doc.IsActive = true

	require.NoError(t, store.Create(ctx, doc))
	return doc
}

/*
TestMemory_CRUD walks the full adapter contract on the happy path.
*/
func TestMemory_CRUD(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	created := putDocument(t, store, "Morning Fog", "morning-fog")

	// 1. Lookup by id and slug
	byID, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morning Fog", byID.Title)

	bySlug, err := store.GetBySlug(ctx, "morning-fog")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	// 2. Update
	byID.Title = "Evening Fog"
	require.NoError(t, store.Update(ctx, byID.ID, byID))
	again, err := store.GetByID(ctx, byID.ID)
	require.NoError(t, err)
	assert.Equal(t, "Evening Fog", again.Title)

	// 3. Delete
	require.NoError(t, store.Delete(ctx, byID.ID))
	_, err = store.GetByID(ctx, byID.ID)
	require.Error(t, err)

	// 4. Missing records error consistently
	require.Error(t, store.Update(ctx, 999, created))
	require.Error(t, store.Delete(ctx, 999))
	_, err = store.GetBySlug(ctx, "")
	require.Error(t, err)
}

/*
TestMemory_GetAllOrdered verifies that GetAll returns ascending id order
regardless of insertion order.
*/
func TestMemory_GetAllOrdered(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	// Insert out of order by pre-allocating ids.
	idA, _ := store.NextID(ctx)
	idB, _ := store.NextID(ctx)
	idC, _ := store.NextID(ctx)

	for _, pair := range []struct {
		id    int
		title string
	}{{idC, "third"}, {idA, "first"}, {idB, "second"}} {
		doc := &document{Title: pair.title}
		doc.ID = pair.id
		require.NoError(t, store.Create(ctx, doc))
	}

	docs, err := store.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{docs[0].Title, docs[1].Title, docs[2].Title})
}

/*
TestMemory_NextID verifies monotonic allocation across deletions.
*/
func TestMemory_NextID(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	doc := putDocument(t, store, "Morning Fog", "")
	require.NoError(t, store.Delete(ctx, doc.ID))

	// The freed id is never reissued.
	next, err := store.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc.ID+1, next)
}

/*
TestMemory_NoAliasing verifies that mutating a returned record never leaks
back into the store.
*/
func TestMemory_NoAliasing(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	created := putDocument(t, store, "Morning Fog", "morning-fog")

	fetched, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	fetched.Title = "MUTATED"

	fresh, err := store.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morning Fog", fresh.Title)
}

/*
TestMemory_BackupRestore verifies the snapshot round trip: records, and the
id counter's high-water mark, survive into a fresh adapter.
*/
func TestMemory_BackupRestore(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	putDocument(t, store, "Morning Fog", "morning-fog")
	second := putDocument(t, store, "Night Rain", "night-rain")
	require.NoError(t, store.Delete(ctx, second.ID))

	snapshot, err := store.Backup(ctx)
	require.NoError(t, err)

	restored := newStore()
	require.NoError(t, restored.Restore(ctx, snapshot))

	// 1. Surviving records came across.
	docs, err := restored.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Morning Fog", docs[0].Title)

	// 2. The counter resumes past every allocated id, including the
	// deleted one's.
	next, err := restored.NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID+1, next)
}
