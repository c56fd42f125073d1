// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

// Package content is the cross-domain facade: the merged recent-activity
// feed, site-wide statistics, and whole-site export, import, backup, and
// restore. It owns no storage of its own and composes the blog and gallery
// repositories it is handed.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/evkarin/lumen/internal/blog"
	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/gallery"
	"github.com/evkarin/lumen/internal/platform/apperr"
	"github.com/evkarin/lumen/internal/platform/constants"
)

// Content item types in the merged feed.
const (
	TypeBlogPost   = "blog_post"
	TypeCollection = "gallery_collection"
)

type Service struct {
	posts       *blog.Repository
	collections *gallery.Repository
	logger      *slog.Logger
}

// NewService wires the facade from its two repositories.
func NewService(posts *blog.Repository, collections *gallery.Repository, logger *slog.Logger) *Service {
	return &Service{
		posts:       posts,
		collections: collections,
		logger:      logger,
	}
}

// # Recent Feed

// ContentItem is one entry of the merged feed: a published post or a public
// collection reduced to a common card shape.
type ContentItem struct {
	Type        string    `json:"type"`
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Subtitle    string    `json:"subtitle,omitempty"`
	Category    string    `json:"category,omitempty"`
	Image       string    `json:"image,omitempty"`
	Description string    `json:"description,omitempty"`
	Date        time.Time `json:"date"`
	Link        string    `json:"link"`
}

// RecentContent merges the latest published posts and public collections
// into one feed, newest first. Each source contributes at most its
// per-source quota before the merge, so one prolific side cannot starve the
// other out of the candidate set.
func (s *Service) RecentContent(ctx context.Context, limit int) ([]ContentItem, error) {
	if limit < 1 {
		limit = 10
	}

	posts, err := s.posts.Recent(ctx, constants.RecentFeedSourceLimit)
	if err != nil {
		return nil, err
	}

	collections, err := s.collections.Recent(ctx, constants.RecentFeedSourceLimit)
	if err != nil {
		return nil, err
	}

	items := make([]ContentItem, 0, len(posts)+len(collections))
	for _, post := range posts {
		items = append(items, ContentItem{
			Type:        TypeBlogPost,
			ID:          post.ID,
			Title:       post.Title,
			Subtitle:    post.Subtitle,
			Category:    post.Category,
			Image:       post.CoverImage,
			Description: blog.ExcerptOrExplicit(post),
			Date:        post.PublishDate(),
			Link:        fmt.Sprintf("/blog/%s", post.Slug),
		})
	}
	for _, collection := range collections {
		items = append(items, ContentItem{
			Type:        TypeCollection,
			ID:          collection.ID,
			Title:       collection.Name,
			Category:    collection.Category,
			Image:       collection.CoverImage,
			Description: collection.Description,
			Date:        collection.CreatedAt,
			Link:        fmt.Sprintf("/gallery/%s", collection.Slug),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.After(items[j].Date)
	})

	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// # Statistics

// Stats is the site-wide content summary.
type Stats struct {
	TotalPosts       int `json:"total_posts"`
	PublishedPosts   int `json:"published_posts"`
	TotalCollections int `json:"total_collections"`
	TotalImages      int `json:"total_images"`

	PostCategories       []string `json:"post_categories"`
	CollectionCategories []string `json:"collection_categories"`
	PostTags             []string `json:"post_tags"`
	ImageTags            []string `json:"image_tags"`

	// AllTags is the deduplicated union of PostTags and ImageTags.
	AllTags []string `json:"all_tags"`
}

// ContentStats aggregates counts and vocabularies across both domains.
// Only active records count.
func (s *Service) ContentStats(ctx context.Context) (*Stats, error) {
	posts, err := s.posts.Active(ctx)
	if err != nil {
		return nil, err
	}
	collections, err := s.collections.Active(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalPosts:       len(posts),
		TotalCollections: len(collections),
	}
	for _, post := range posts {
		if post.Status == blog.StatusPublished {
			stats.PublishedPosts++
		}
	}
	for _, collection := range collections {
		stats.TotalImages += len(collection.Images)
	}

	if stats.PostCategories, err = s.posts.Categories(ctx); err != nil {
		return nil, err
	}
	if stats.PostTags, err = s.posts.Tags(ctx); err != nil {
		return nil, err
	}
	if stats.CollectionCategories, err = s.collections.Categories(ctx); err != nil {
		return nil, err
	}
	if stats.ImageTags, err = s.collections.ImageTags(ctx); err != nil {
		return nil, err
	}
	stats.AllTags = unionTags(stats.PostTags, stats.ImageTags)

	return stats, nil
}

// unionTags merges two tag vocabularies into one sorted, deduplicated list.
func unionTags(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	var out []string
	for _, tags := range [][]string{a, b} {
		for _, tag := range tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	sort.Strings(out)
	return out
}

// # Export / Import

// ExportDocument is the portable whole-site snapshot: plain entities, no
// adapter internals, so it survives storage-driver changes.
type ExportDocument struct {
	Version     string                       `json:"version"`
	ExportedAt  time.Time                    `json:"exported_at"`
	Posts       []*blog.BlogPost             `json:"posts"`
	Collections []*gallery.GalleryCollection `json:"collections"`
}

// Export snapshots every record of both domains, soft-deleted ones
// included.
func (s *Service) Export(ctx context.Context) (*ExportDocument, error) {
	posts, err := s.posts.Store().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	collections, err := s.collections.Store().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	doc := &ExportDocument{
		Version:     constants.ExportFormatVersion,
		ExportedAt:  time.Now().UTC(),
		Posts:       posts,
		Collections: collections,
	}

	s.logger.Info("content_exported",
		slog.Int("posts", len(doc.Posts)),
		slog.Int("collections", len(doc.Collections)),
	)

	return doc, nil
}

// ImportFailure records one rejected item of an import.
type ImportFailure struct {
	Title string `json:"title"`
	Error string `json:"error"`
}

// ImportResult summarizes a best-effort import.
type ImportResult struct {
	PostsImported       int             `json:"posts_imported"`
	CollectionsImported int             `json:"collections_imported"`
	Failures            []ImportFailure `json:"failures,omitempty"`
}

// Import loads an export document through the normal create path: each
// item is validated and receives a fresh id, timestamps, and slug; incoming
// identity fields are discarded. Replace mode purges all existing records
// first. Items failing validation are skipped and reported, never aborting
// the rest.
func (s *Service) Import(ctx context.Context, doc *ExportDocument, replace bool) (*ImportResult, error) {
	if doc.Version != constants.ExportFormatVersion {
		return nil, apperr.Unprocessable(
			fmt.Sprintf("Unsupported export version %q, want %q", doc.Version, constants.ExportFormatVersion))
	}

	if replace {
		if err := s.purgeAll(ctx); err != nil {
			return nil, err
		}
	}

	result := &ImportResult{}

	for _, post := range doc.Posts {
		fresh := *post
		fresh.Meta = resetMeta(fresh.Meta)
		if _, err := s.posts.Create(ctx, &fresh); err != nil {
			result.Failures = append(result.Failures, ImportFailure{Title: post.Title, Error: err.Error()})
			continue
		}
		result.PostsImported++
	}

	for _, collection := range doc.Collections {
		fresh := *collection
		fresh.Meta = resetMeta(fresh.Meta)
		if fresh.Images == nil {
			fresh.Images = []*gallery.GalleryImage{}
		}
		if _, err := s.collections.Create(ctx, &fresh); err != nil {
			result.Failures = append(result.Failures, ImportFailure{Title: collection.Name, Error: err.Error()})
			continue
		}
		result.CollectionsImported++
	}

	s.logger.Info("content_imported",
		slog.Bool("replace", replace),
		slog.Int("posts", result.PostsImported),
		slog.Int("collections", result.CollectionsImported),
		slog.Int("failures", len(result.Failures)),
	)

	return result, nil
}

// purgeAll physically removes every record of both domains.
func (s *Service) purgeAll(ctx context.Context) error {
	posts, err := s.posts.Store().GetAll(ctx)
	if err != nil {
		return err
	}
	for _, post := range posts {
		if err := s.posts.Purge(ctx, post.ID); err != nil {
			return err
		}
	}

	collections, err := s.collections.Store().GetAll(ctx)
	if err != nil {
		return err
	}
	for _, collection := range collections {
		if err := s.collections.Purge(ctx, collection.ID); err != nil {
			return err
		}
	}

	return nil
}

// # Backup / Restore

// BackupDocument is the exact-state snapshot: opaque per-store payloads
// that reproduce record bytes, id counters, and soft-delete flags.
type BackupDocument struct {
	Version     string          `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	Posts       json.RawMessage `json:"posts"`
	Collections json.RawMessage `json:"collections"`
}

// Backup captures both stores verbatim, counters included, so a later
// Restore reproduces identical state.
func (s *Service) Backup(ctx context.Context) (*BackupDocument, error) {
	posts, err := s.posts.Store().Backup(ctx)
	if err != nil {
		return nil, err
	}
	collections, err := s.collections.Store().Backup(ctx)
	if err != nil {
		return nil, err
	}

	return &BackupDocument{
		Version:     constants.ExportFormatVersion,
		CreatedAt:   time.Now().UTC(),
		Posts:       posts,
		Collections: collections,
	}, nil
}

// Restore replaces both stores' contents with a backup's state. Unlike
// Import, nothing is re-validated and ids are preserved.
func (s *Service) Restore(ctx context.Context, doc *BackupDocument) error {
	if doc.Version != constants.ExportFormatVersion {
		return apperr.Unprocessable(
			fmt.Sprintf("Unsupported backup version %q, want %q", doc.Version, constants.ExportFormatVersion))
	}

	if err := s.posts.Store().Restore(ctx, doc.Posts); err != nil {
		return err
	}
	if err := s.collections.Store().Restore(ctx, doc.Collections); err != nil {
		return err
	}

	s.logger.Info("content_restored")
	return nil
}

// resetMeta clears identity so the create path reassigns it. Only the slug
// survives: it is data, not identity, and create falls back to deriving one
// when it is empty anyway.
func resetMeta(meta entity.Meta) entity.Meta {
	return entity.Meta{Slug: meta.Slug}
}
