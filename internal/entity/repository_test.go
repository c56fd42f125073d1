// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package entity_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/platform/apperr"
	"github.com/evkarin/lumen/internal/platform/validate"
	"github.com/evkarin/lumen/internal/storage"
)

// note is the minimal test entity exercising the generic pipeline.
type note struct {
	entity.Meta

	Title  string   `json:"title"`
	Body   string   `json:"body"`
	Labels []string `json:"labels,omitempty"`
	Rating int      `json:"rating"`
}

func noteField(n *note, name string) (any, bool) {
	switch name {
	case "title":
		return n.Title, true
	case "body":
		return n.Body, true
	case "labels":
		return n.Labels, true
	case "rating":
		return n.Rating, true
	default:
		return entity.MetaField(&n.Meta, name)
	}
}

// notePatch exercises partial updates.
type notePatch struct {
	Title  *string
	Body   *string
	Rating *int
}

func (p *notePatch) Apply(n *note) map[string]bool {
	present := make(map[string]bool)
	if p.Title != nil {
		n.Title = *p.Title
		present["title"] = true
	}
	if p.Body != nil {
		n.Body = *p.Body
		present["body"] = true
	}
	if p.Rating != nil {
		n.Rating = *p.Rating
	}
	return present
}

func newNoteRepository() *entity.Repository[*note] {
	store := storage.NewMemory(func() *note { return &note{} })

	desc := entity.Descriptor[*note]{
		Name:            "Note",
		Field:           noteField,
		SearchFields:    []string{"title", "body"},
		SearchSetFields: []string{"labels"},
		Title:           func(n *note) string { return n.Title },
	}

	schema := validate.Schema[*note]{
		Entity: "Note",
		Rules: []validate.Rule[*note]{
			validate.Required("title", validate.Str(func(n *note) string { return n.Title })),
			validate.MinLength("title", 3, validate.Str(func(n *note) string { return n.Title })),
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return entity.NewRepository(store, desc, schema, logger)
}

func mustCreate(t *testing.T, repo *entity.Repository[*note], notes ...*note) {
	t.Helper()
	for _, n := range notes {
		_, err := repo.Create(context.Background(), n)
		require.NoError(t, err)
	}
}

/*
TestRepository_Create verifies identity assignment: sequential ids, UTC
timestamps, the active flag, and the derived slug.
*/
func TestRepository_Create(t *testing.T) {
	repo := newNoteRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, &note{Title: "Morning Fog"})
	require.NoError(t, err)
	second, err := repo.Create(ctx, &note{Title: "Night Rain"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.ID)
	assert.Equal(t, 2, second.ID)
	assert.Equal(t, "morning-fog", first.Slug)
	assert.True(t, first.IsActive)
	assert.False(t, first.CreatedAt.IsZero())
	assert.Equal(t, first.CreatedAt, first.UpdatedAt)
	assert.Equal(t, time.UTC, first.CreatedAt.Location())
}

/*
TestRepository_Create_RejectsInvalid verifies that validation failure leaves
the store untouched: no record and no consumed id.
*/
func TestRepository_Create_RejectsInvalid(t *testing.T) {
	repo := newNoteRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &note{Title: ""})
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)

	// The next valid create still takes id 1.
	created, err := repo.Create(ctx, &note{Title: "Morning Fog"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)
}

/*
TestRepository_List_Pipeline runs the full pipeline: filter, search, sort,
paginate.
*/
func TestRepository_List_Pipeline(t *testing.T) {
	repo := newNoteRepository()
	ctx := context.Background()

	mustCreate(t, repo,
		&note{Title: "Alpha Ridge", Body: "granite and snow", Labels: []string{"mountains"}, Rating: 3},
		&note{Title: "Beta Valley", Body: "river crossing", Labels: []string{"water"}, Rating: 5},
		&note{Title: "Gamma Ridge", Body: "foggy granite morning", Labels: []string{"mountains", "fog"}, Rating: 4},
	)

	// 1. Equals on a scalar field
	notes, meta, err := repo.List(ctx, entity.ListOptions{
		Filters: []entity.Filter{entity.Equals{Field: "rating", Value: 5}},
	})
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Beta Valley", notes[0].Title)
	assert.Equal(t, 1, meta.Total)

	// 2. Equals on a set field means membership
	notes, _, err = repo.List(ctx, entity.ListOptions{
		Filters: []entity.Filter{entity.Equals{Field: "labels", Value: "mountains"}},
	})
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	// 3. Contains is a case-insensitive substring match
	notes, _, err = repo.List(ctx, entity.ListOptions{
		Filters: []entity.Filter{entity.Contains{Field: "title", Substring: "ridge"}},
	})
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	// 4. AnyOf intersects against set fields
	notes, _, err = repo.List(ctx, entity.ListOptions{
		Filters: []entity.Filter{entity.AnyOf{Field: "labels", Values: []string{"fog", "water"}}},
	})
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	// 5. Search spans scalar and set fields
	notes, _, err = repo.List(ctx, entity.ListOptions{Search: "granite"})
	require.NoError(t, err)
	assert.Len(t, notes, 2)

	// 6. Sort ascending by rating
	notes, _, err = repo.List(ctx, entity.ListOptions{SortBy: "rating", SortOrder: "asc"})
	require.NoError(t, err)
	require.Len(t, notes, 3)
	assert.Equal(t, 3, notes[0].Rating)
	assert.Equal(t, 5, notes[2].Rating)

	// 7. A filter naming an unknown field matches nothing
	notes, _, err = repo.List(ctx, entity.ListOptions{
		Filters: []entity.Filter{entity.Equals{Field: "bogus", Value: "x"}},
	})
	require.NoError(t, err)
	assert.Empty(t, notes)
}

/*
TestRepository_List_PaginationInvariant verifies that Total reflects the
pre-pagination match count, so concatenating every page reconstructs the
full filtered set.
*/
func TestRepository_List_PaginationInvariant(t *testing.T) {
	repo := newNoteRepository()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		mustCreate(t, repo, &note{Title: "Entry Number", Rating: i})
	}

	var collected []int
	page := 1
	for {
		notes, meta, err := repo.List(ctx, entity.ListOptions{
			Page: page, Limit: 3, SortBy: "rating", SortOrder: "asc",
		})
		require.NoError(t, err)
		assert.Equal(t, 7, meta.Total)
		assert.Equal(t, 3, meta.TotalPages)

		for _, n := range notes {
			collected = append(collected, n.Rating)
		}
		if !meta.HasNext {
			break
		}
		page++
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, collected)

	// A page past the end is empty, not an error.
	notes, _, err := repo.List(ctx, entity.ListOptions{Page: 99, Limit: 3})
	require.NoError(t, err)
	assert.Empty(t, notes)
}

/*
TestRepository_List_Deterministic verifies that repeating an identical query
yields an identical result order, ties included.
*/
func TestRepository_List_Deterministic(t *testing.T) {
	repo := newNoteRepository()
	ctx := context.Background()

	// All notes tie on rating, forcing the stable sort to decide.
	for i := 0; i < 5; i++ {
		mustCreate(t, repo, &note{Title: "Tied Entry", Rating: 1})
	}

	baseline, _, err := repo.List(ctx, entity.ListOptions{SortBy: "rating", SortOrder: "asc"})
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		again, _, err := repo.List(ctx, entity.ListOptions{SortBy: "rating", SortOrder: "asc"})
		require.NoError(t, err)
		require.Len(t, again, len(baseline))
		for j := range baseline {
			assert.Equal(t, baseline[j].ID, again[j].ID)
		}
	}
}

/*
TestRepository_Update verifies partial-update semantics: only patched fields
change and only their rules run.
*/
func TestRepository_Update(t *testing.T) {
	repo := newNoteRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &note{Title: "Morning Fog", Body: "original"})
	require.NoError(t, err)

	// 1. Patch only the body: the title rule is not re-run, the title is kept.
	body := "rewritten"
	updated, err := repo.Update(ctx, created.ID, &notePatch{Body: &body})
	require.NoError(t, err)
	assert.Equal(t, "Morning Fog", updated.Title)
	assert.Equal(t, "rewritten", updated.Body)
	assert.True(t, updated.UpdatedAt.After(created.CreatedAt) || updated.UpdatedAt.Equal(created.CreatedAt))

	// 2. A patched field is validated.
	short := "ab"
	_, err = repo.Update(ctx, created.ID, &notePatch{Title: &short})
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)

	// 3. The failed patch left the record unchanged.
	current, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morning Fog", current.Title)
}

/*
TestRepository_Delete verifies soft deletion: the record vanishes from reads
but its id is never reused.
*/
func TestRepository_Delete(t *testing.T) {
	repo := newNoteRepository()
	ctx := context.Background()

	first, err := repo.Create(ctx, &note{Title: "Morning Fog"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, first.ID))

	// 1. Gone from lookups and listings.
	_, err = repo.Get(ctx, first.ID)
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "NOT_FOUND", ae.Code)

	notes, _, err := repo.List(ctx, entity.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, notes)

	// 2. Still reachable when inactive records are requested.
	notes, _, err = repo.List(ctx, entity.ListOptions{IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	// 3. The next create takes a fresh id.
	second, err := repo.Create(ctx, &note{Title: "Night Rain"})
	require.NoError(t, err)
	assert.Equal(t, first.ID+1, second.ID)

	// 4. Deleting twice reports not found.
	err = repo.Delete(ctx, first.ID)
	require.Error(t, err)
}

/*
TestRepository_GetBySlug verifies slug lookup, including the inactive case.
*/
func TestRepository_GetBySlug(t *testing.T) {
	repo := newNoteRepository()
	ctx := context.Background()

	created, err := repo.Create(ctx, &note{Title: "Morning Fog"})
	require.NoError(t, err)

	found, err := repo.GetBySlug(ctx, "morning-fog")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	require.NoError(t, repo.Delete(ctx, created.ID))
	_, err = repo.GetBySlug(ctx, "morning-fog")
	require.Error(t, err)
}

/*
TestRepository_Count verifies filtered counting over active records.
*/
func TestRepository_Count(t *testing.T) {
	repo := newNoteRepository()
	ctx := context.Background()

	mustCreate(t, repo,
		&note{Title: "Alpha Ridge", Rating: 5},
		&note{Title: "Beta Valley", Rating: 5},
		&note{Title: "Gamma Ridge", Rating: 1},
	)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = repo.Count(ctx, entity.Equals{Field: "rating", Value: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
