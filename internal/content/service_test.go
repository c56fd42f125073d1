// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package content_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evkarin/lumen/internal/blog"
	"github.com/evkarin/lumen/internal/content"
	"github.com/evkarin/lumen/internal/gallery"
	"github.com/evkarin/lumen/internal/storage"
)

type fixture struct {
	service     *content.Service
	posts       *blog.Repository
	collections *gallery.Repository
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	posts := blog.NewRepository(
		storage.NewMemory(func() *blog.BlogPost { return &blog.BlogPost{} }), logger)
	collections := gallery.NewRepository(
		storage.NewMemory(func() *gallery.GalleryCollection { return &gallery.GalleryCollection{} }), logger)

	return &fixture{
		service:     content.NewService(posts, collections, logger),
		posts:       posts,
		collections: collections,
	}
}

func (f *fixture) addPost(t *testing.T, title string, publishedAt time.Time, tags ...string) *blog.BlogPost {
	t.Helper()
	post := &blog.BlogPost{
		Title:       title,
		Content:     "This body is comfortably past the fifty character minimum required here.",
		Category:    "travel",
		Author:      "Elena",
		Tags:        tags,
		Status:      blog.StatusPublished,
		PublishedAt: &publishedAt,
	}
	created, err := f.posts.Create(context.Background(), post)
	require.NoError(t, err)
	return created
}

func (f *fixture) addCollection(t *testing.T, name string, images ...*gallery.GalleryImage) *gallery.GalleryCollection {
	t.Helper()
	created, err := f.collections.Create(context.Background(), &gallery.GalleryCollection{
		Name:       name,
		CoverImage: "https://images.example/cover.jpg",
		Category:   "landscape",
		IsPublic:   true,
		Images:     images,
	})
	require.NoError(t, err)
	return created
}

/*
TestService_RecentContent verifies the merged feed: both sources present,
newest first, truncated to the limit.
*/
func TestService_RecentContent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addPost(t, "Older Post", time.Date(1999, time.March, 1, 0, 0, 0, 0, time.UTC))
	f.addPost(t, "Newer Post", time.Date(1999, time.August, 1, 0, 0, 0, 0, time.UTC))
	created := f.addCollection(t, "Fresh Collection")

	items, err := f.service.RecentContent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// The collection's date is its creation time (now), so it leads.
	assert.Equal(t, content.TypeCollection, items[0].Type)
	assert.Equal(t, created.ID, items[0].ID)
	assert.Equal(t, "Newer Post", items[1].Title)
	assert.Equal(t, "Older Post", items[2].Title)

	// Links point at the public routes via slugs.
	assert.Equal(t, "/gallery/fresh-collection", items[0].Link)
	assert.Equal(t, "/blog/newer-post", items[1].Link)

	// The limit truncates after the merge.
	items, err = f.service.RecentContent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, content.TypeCollection, items[0].Type)
}

/*
TestService_ContentStats verifies the cross-domain aggregate counts.
*/
func TestService_ContentStats(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addPost(t, "One", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), "mountains", "rain")
	draft := f.addPost(t, "Two", time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC), "fog")
	_, err := f.posts.BulkSetStatus(ctx, []int{draft.ID}, blog.StatusDraft)
	require.NoError(t, err)

	f.addCollection(t, "Walks",
		&gallery.GalleryImage{ID: 1, URL: "https://images.example/a.jpg", Tags: []string{"night"}},
		&gallery.GalleryImage{ID: 2, URL: "https://images.example/b.jpg", Tags: []string{"night", "rain"}},
	)

	stats, err := f.service.ContentStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.TotalPosts)
	assert.Equal(t, 1, stats.PublishedPosts)
	assert.Equal(t, 1, stats.TotalCollections)
	assert.Equal(t, 2, stats.TotalImages)
	assert.Equal(t, []string{"travel"}, stats.PostCategories)
	assert.Equal(t, []string{"fog", "mountains", "rain"}, stats.PostTags)
	assert.Equal(t, []string{"landscape"}, stats.CollectionCategories)
	assert.Equal(t, []string{"night", "rain"}, stats.ImageTags)

	// "rain" appears in both domains but only once in the union.
	assert.Equal(t, []string{"fog", "mountains", "night", "rain"}, stats.AllTags)
}

/*
TestService_ExportImport verifies the round trip: imported items are
re-validated and receive fresh identity.
*/
func TestService_ExportImport(t *testing.T) {
	source := newFixture()
	ctx := context.Background()

	source.addPost(t, "Carried Post", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	source.addCollection(t, "Carried Collection")

	doc, err := source.service.Export(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Version)
	require.Len(t, doc.Posts, 1)
	require.Len(t, doc.Collections, 1)

	// Import into a fresh deployment.
	target := newFixture()
	result, err := target.service.Import(ctx, doc, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PostsImported)
	assert.Equal(t, 1, result.CollectionsImported)
	assert.Empty(t, result.Failures)

	imported, err := target.posts.GetBySlug(ctx, "carried-post")
	require.NoError(t, err)
	assert.Equal(t, 1, imported.ID)

	// A version mismatch is rejected outright.
	doc.Version = "0.9"
	_, err = target.service.Import(ctx, doc, false)
	require.Error(t, err)
}

/*
TestService_ImportReplace verifies that replace mode clears existing data,
while invalid items are skipped and reported.
*/
func TestService_ImportReplace(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addPost(t, "Pre-existing", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))

	doc := &content.ExportDocument{
		Version: "1.0",
		Posts: []*blog.BlogPost{
			{
				Title:    "Replacement Post",
				Content:  "This body is comfortably past the fifty character minimum required here.",
				Category: "travel",
				Author:   "Elena",
				Status:   blog.StatusPublished,
			},
			{Title: "Broken Post"}, // fails validation, reported
		},
	}

	result, err := f.service.Import(ctx, doc, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.PostsImported)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "Broken Post", result.Failures[0].Title)

	// Only the replacement survived.
	posts, err := f.posts.Store().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Replacement Post", posts[0].Title)
}

/*
TestService_BackupRestore verifies exact-state restoration: ids, counters,
and soft-deleted records all come back.
*/
func TestService_BackupRestore(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	kept := f.addPost(t, "Kept Post", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC))
	dropped := f.addPost(t, "Dropped Post", time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, f.posts.Delete(ctx, dropped.ID))
	f.addCollection(t, "Kept Collection")

	doc, err := f.service.Backup(ctx)
	require.NoError(t, err)

	target := newFixture()
	require.NoError(t, target.service.Restore(ctx, doc))

	// 1. Ids preserved exactly.
	restored, err := target.posts.Get(ctx, kept.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kept Post", restored.Title)

	// 2. The soft-deleted record is back, still soft-deleted.
	_, err = target.posts.Get(ctx, dropped.ID)
	require.Error(t, err)
	all, err := target.posts.Store().GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// 3. The id counter resumes past the restored records.
	next, err := target.posts.Store().NextID(ctx)
	require.NoError(t, err)
	assert.Equal(t, dropped.ID+1, next)

	// 4. A version mismatch is rejected.
	doc.Version = "0.9"
	require.Error(t, target.service.Restore(ctx, doc))
}
