// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package gallery_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/gallery"
	"github.com/evkarin/lumen/internal/platform/apperr"
	"github.com/evkarin/lumen/internal/storage"
	"github.com/evkarin/lumen/pkg/pagination"
)

func newGalleryRepository() *gallery.Repository {
	store := storage.NewMemory(func() *gallery.GalleryCollection { return &gallery.GalleryCollection{} })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return gallery.NewRepository(store, logger)
}

func collection(name string, public bool, images ...*gallery.GalleryImage) *gallery.GalleryCollection {
	return &gallery.GalleryCollection{
		Name:       name,
		CoverImage: "https://images.example/covers/" + name + ".jpg",
		IsPublic:   public,
		Images:     images,
	}
}

func image(id int, tags ...string) *gallery.GalleryImage {
	return &gallery.GalleryImage{
		ID:   id,
		URL:  "https://images.example/photos/img.jpg",
		Tags: tags,
	}
}

func createCollections(t *testing.T, repo *gallery.Repository, collections ...*gallery.GalleryCollection) []*gallery.GalleryCollection {
	t.Helper()
	created := make([]*gallery.GalleryCollection, 0, len(collections))
	for _, c := range collections {
		out, err := repo.Create(context.Background(), c)
		require.NoError(t, err)
		created = append(created, out)
	}
	return created
}

/*
TestGalleryRepository_Validation verifies the collection schema, in
particular the mandatory absolute cover URL.
*/
func TestGalleryRepository_Validation(t *testing.T) {
	repo := newGalleryRepository()
	ctx := context.Background()

	_, err := repo.Create(ctx, &gallery.GalleryCollection{
		Name:       "x",
		CoverImage: "not-a-url",
	})
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "VALIDATION_ERROR", ae.Code)

	fields := make([]string, 0, len(ae.Details))
	for _, detail := range ae.Details {
		fields = append(fields, detail.Field)
	}
	// name minLength, cover_image url.
	assert.ElementsMatch(t, []string{"name", "cover_image"}, fields)
}

/*
TestGalleryRepository_ImageTagIndex verifies tag queries over the
image-level tags: collection lookup, union, and per-image matches.
*/
func TestGalleryRepository_ImageTagIndex(t *testing.T) {
	repo := newGalleryRepository()
	ctx := context.Background()

	created := createCollections(t, repo,
		collection("City Walks", true,
			image(1, "urban", "night"),
			image(2, "night"),
			image(3, "night"),
		),
		collection("Mountain Light", true,
			image(1, "mountains"),
			image(2, "mountains", "fog"),
		),
		collection("Empty Shell", true),
	)

	// 1. Collections by image tag
	byTag, err := repo.FindByImageTag(ctx, "night")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "City Walks", byTag[0].Name)

	byTag, err = repo.FindByImageTag(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, byTag)

	// 2. Sorted union of all image tags
	tags, err := repo.ImageTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fog", "mountains", "night", "urban"}, tags)

	// 3. Individual images by tag, with their collection attached
	images, err := repo.ImagesByTag(ctx, "night")
	require.NoError(t, err)
	require.Len(t, images, 3)
	for _, tagged := range images {
		assert.Equal(t, created[0].ID, tagged.CollectionID)
		assert.Equal(t, "City Walks", tagged.CollectionName)
	}
}

/*
TestGalleryRepository_ImageTagStats verifies per-image counting: a
collection whose images carry a tag three times contributes three.
*/
func TestGalleryRepository_ImageTagStats(t *testing.T) {
	repo := newGalleryRepository()
	ctx := context.Background()

	createCollections(t, repo,
		collection("City Walks", true,
			image(1, "urban", "night"),
			image(2, "night"),
			image(3, "night"),
		),
	)

	stats, err := repo.ImageTagStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"urban": 1, "night": 3}, stats)
}

/*
TestGalleryRepository_SearchExcludesImageTags verifies that free-text
search covers the collection's own text fields but not its image tags.
*/
func TestGalleryRepository_SearchExcludesImageTags(t *testing.T) {
	repo := newGalleryRepository()
	ctx := context.Background()

	tagged := collection("City Walks", true, image(1, "sunset"))
	named := collection("Sunset Sessions", true, image(1, "urban"))
	createCollections(t, repo, tagged, named)

	results, _, err := repo.Search(ctx, "sunset", entity.ListOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Sunset Sessions", results[0].Name)

	// The tag is still reachable through the dedicated tag queries.
	byTag, err := repo.FindByImageTag(ctx, "sunset")
	require.NoError(t, err)
	require.Len(t, byTag, 1)
	assert.Equal(t, "City Walks", byTag[0].Name)
}

/*
TestGalleryRepository_ImageLifecycle verifies add, update, remove, and
reorder, including id allocation and sort-order renumbering.
*/
func TestGalleryRepository_ImageLifecycle(t *testing.T) {
	repo := newGalleryRepository()
	ctx := context.Background()

	created := createCollections(t, repo, collection("City Walks", true))[0]

	// 1. AddImage allocates per-collection ids and sequential sort orders.
	first := &gallery.GalleryImage{URL: "https://images.example/a.jpg", Size: gallery.Dimensions{Width: 3000, Height: 2000}}
	updated, err := repo.AddImage(ctx, created.ID, first)
	require.NoError(t, err)
	require.Len(t, updated.Images, 1)
	assert.Equal(t, 1, updated.Images[0].ID)
	assert.Equal(t, 0, updated.Images[0].SortOrder)
	assert.InDelta(t, 1.5, updated.Images[0].Size.AspectRatio, 0.001)

	updated, err = repo.AddImage(ctx, created.ID, &gallery.GalleryImage{URL: "https://images.example/b.jpg"})
	require.NoError(t, err)
	updated, err = repo.AddImage(ctx, created.ID, &gallery.GalleryImage{URL: "https://images.example/c.jpg"})
	require.NoError(t, err)
	require.Len(t, updated.Images, 3)
	assert.Equal(t, 3, updated.Images[2].ID)

	// 2. Malformed image payloads are rejected before any mutation: empty
	// url, relative url, negative sort order.
	_, err = repo.AddImage(ctx, created.ID, &gallery.GalleryImage{})
	require.Error(t, err)
	_, err = repo.AddImage(ctx, created.ID, &gallery.GalleryImage{URL: "photos/relative.jpg"})
	require.Error(t, err)
	_, err = repo.AddImage(ctx, created.ID, &gallery.GalleryImage{
		URL:       "https://images.example/neg.jpg",
		SortOrder: -1,
	})
	require.Error(t, err)
	_, err = repo.UpdateImage(ctx, created.ID, 1, gallery.GalleryImage{})
	require.Error(t, err)
	current, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, current.Images, 3)

	// 3. UpdateImage keeps id and sort order.
	updated, err = repo.UpdateImage(ctx, created.ID, 2, gallery.GalleryImage{
		URL: "https://images.example/b2.jpg",
		Alt: "replaced",
	})
	require.NoError(t, err)
	assert.Equal(t, "replaced", updated.Images[1].Alt)
	assert.Equal(t, 2, updated.Images[1].ID)
	assert.Equal(t, 1, updated.Images[1].SortOrder)

	_, err = repo.UpdateImage(ctx, created.ID, 99, gallery.GalleryImage{URL: "https://images.example/x.jpg"})
	require.Error(t, err)

	// 4. RemoveImage renumbers the survivors densely.
	updated, err = repo.RemoveImage(ctx, created.ID, 2)
	require.NoError(t, err)
	require.Len(t, updated.Images, 2)
	assert.Equal(t, []int{0, 1}, []int{updated.Images[0].SortOrder, updated.Images[1].SortOrder})
	assert.Equal(t, []int{1, 3}, []int{updated.Images[0].ID, updated.Images[1].ID})

	// 5. After a removal, the freed image id can be reallocated: ids are
	// max+1 within the collection, not a persistent counter.
	updated, err = repo.AddImage(ctx, created.ID, &gallery.GalleryImage{URL: "https://images.example/d.jpg"})
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Images[2].ID)

	// 6. ReorderImages applies positions and re-sorts.
	updated, err = repo.ReorderImages(ctx, created.ID, []gallery.ImageOrder{
		{ImageID: 4, SortOrder: 0},
		{ImageID: 1, SortOrder: 2},
		{ImageID: 3, SortOrder: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3, 1}, []int{updated.Images[0].ID, updated.Images[1].ID, updated.Images[2].ID})

	// 7. An unknown id fails the whole reorder.
	_, err = repo.ReorderImages(ctx, created.ID, []gallery.ImageOrder{{ImageID: 42, SortOrder: 0}})
	require.Error(t, err)
}

/*
TestGalleryRepository_Visibility verifies the public-only listings and the
curated featured order.
*/
func TestGalleryRepository_Visibility(t *testing.T) {
	repo := newGalleryRepository()
	ctx := context.Background()

	second := collection("Second Feature", true)
	second.SortOrder = 2
	first := collection("First Feature", true)
	first.SortOrder = 1
	hidden := collection("Hidden Drafts", false)

	createCollections(t, repo, second, first, hidden)

	public, meta, err := repo.PublicCollections(ctx, pagination.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, public, 2)
	assert.Equal(t, 2, meta.Total)

	featured, err := repo.Featured(ctx, 10)
	require.NoError(t, err)
	require.Len(t, featured, 2)
	assert.Equal(t, "First Feature", featured[0].Name)
	assert.Equal(t, "Second Feature", featured[1].Name)
}
