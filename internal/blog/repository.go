// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package blog

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/platform/constants"
	"github.com/evkarin/lumen/pkg/pagination"
	"github.com/evkarin/lumen/pkg/slice"
)

/*
Repository layers the journal-specific queries over the generic entity
repository: category/tag/author lookups, publication-date windows,
popularity and recency feeds, related-post scoring, engagement counters,
and aggregate statistics.
*/
type Repository struct {
	*entity.Repository[*BlogPost]

	logger *slog.Logger
}

// NewRepository builds the post repository on top of a storage adapter.
func NewRepository(store entity.Adapter[*BlogPost], logger *slog.Logger) *Repository {
	return &Repository{
		Repository: entity.NewRepository(store, descriptor, schema, logger),
		logger:     logger,
	}
}

// publishedOnly restricts a query to published posts.
var publishedOnly = entity.Equals{Field: FieldStatus, Value: string(StatusPublished)}

// Create stores a new post. A post without a status starts as a draft, and
// a post arriving already published gets its publication time stamped. The
// defaults live here so every entry path (HTTP, import, seed) agrees.
func (r *Repository) Create(ctx context.Context, post *BlogPost) (*BlogPost, error) {
	if post.Status == "" {
		post.Status = StatusDraft
	}
	if post.Status == StatusPublished && post.PublishedAt == nil {
		now := time.Now().UTC()
		post.PublishedAt = &now
	}
	return r.Repository.Create(ctx, post)
}

// # Scoped Listings

// ListByCategory pages through active posts in one category.
func (r *Repository) ListByCategory(ctx context.Context, category string, params pagination.Params) ([]*BlogPost, pagination.Meta, error) {
	return r.List(ctx, entity.ListOptions{
		Page:    params.Page,
		Limit:   params.Limit,
		Filters: []entity.Filter{entity.Equals{Field: FieldCategory, Value: category}},
	})
}

// ListByTag pages through active posts carrying the tag.
func (r *Repository) ListByTag(ctx context.Context, tag string, params pagination.Params) ([]*BlogPost, pagination.Meta, error) {
	return r.List(ctx, entity.ListOptions{
		Page:    params.Page,
		Limit:   params.Limit,
		Filters: []entity.Filter{entity.Equals{Field: FieldTags, Value: tag}},
	})
}

// ListByAuthor pages through active posts by one author.
func (r *Repository) ListByAuthor(ctx context.Context, author string, params pagination.Params) ([]*BlogPost, pagination.Meta, error) {
	return r.List(ctx, entity.ListOptions{
		Page:    params.Page,
		Limit:   params.Limit,
		Filters: []entity.Filter{entity.Equals{Field: FieldAuthor, Value: author}},
	})
}

// ListByStatus pages through active posts in one lifecycle status.
func (r *Repository) ListByStatus(ctx context.Context, status Status, params pagination.Params) ([]*BlogPost, pagination.Meta, error) {
	return r.List(ctx, entity.ListOptions{
		Page:    params.Page,
		Limit:   params.Limit,
		Filters: []entity.Filter{entity.Equals{Field: FieldStatus, Value: string(status)}},
	})
}

// ListByDateRange returns active posts whose effective publication date
// falls inside [from, to], both bounds inclusive, newest first.
func (r *Repository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*BlogPost, error) {
	posts, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	matched := slice.Filter(posts, func(post *BlogPost) bool {
		date := post.PublishDate()
		return !date.Before(from) && !date.After(to)
	})

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].PublishDate().After(matched[j].PublishDate())
	})

	return matched, nil
}

// Popular returns the most-viewed published posts.
func (r *Repository) Popular(ctx context.Context, limit int) ([]*BlogPost, error) {
	posts, _, err := r.List(ctx, entity.ListOptions{
		Limit:     limit,
		SortBy:    FieldViewCount,
		SortOrder: "desc",
		Filters:   []entity.Filter{publishedOnly},
	})
	return posts, err
}

// Recent returns the latest published posts by effective publication date.
func (r *Repository) Recent(ctx context.Context, limit int) ([]*BlogPost, error) {
	posts, _, err := r.List(ctx, entity.ListOptions{
		Limit:     limit,
		SortBy:    FieldPublishedAt,
		SortOrder: "desc",
		Filters:   []entity.Filter{publishedOnly},
	})
	return posts, err
}

// # Related Posts

// Related scores every other published post against the given one and
// returns the top matches: same category scores 10, each shared tag 3, same
// author 5. Zero-score candidates rank last in storage order, so the result
// fills up to limit whenever enough published posts exist. Ties keep
// storage order, so the result is deterministic.
func (r *Repository) Related(ctx context.Context, id, limit int) ([]*BlogPost, error) {
	if limit < 1 {
		limit = constants.DefaultRelatedLimit
	}

	source, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	candidates, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	type scored struct {
		post  *BlogPost
		score int
	}

	var ranked []scored
	for _, candidate := range candidates {
		if candidate.ID == source.ID || candidate.Status != StatusPublished {
			continue
		}

		score := 0
		if candidate.Category == source.Category {
			score += 10
		}
		for _, tag := range candidate.Tags {
			if slice.Contains(source.Tags, tag) {
				score += 3
			}
		}
		if candidate.Author == source.Author {
			score += 5
		}

		ranked = append(ranked, scored{post: candidate, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return slice.Map(ranked, func(s scored) *BlogPost { return s.post }), nil
}

// # Engagement Counters

// IncrementViews bumps the post's view counter by one.
func (r *Repository) IncrementViews(ctx context.Context, id int) (*BlogPost, error) {
	return r.Mutate(ctx, id, func(post *BlogPost) error {
		post.ViewCount++
		return nil
	})
}

// IncrementLikes bumps the post's like counter by one.
func (r *Repository) IncrementLikes(ctx context.Context, id int) (*BlogPost, error) {
	return r.Mutate(ctx, id, func(post *BlogPost) error {
		post.Likes++
		return nil
	})
}

// # Aggregations

// Categories returns the distinct categories of active posts, sorted.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, func(post *BlogPost) []string {
		if post.Category == "" {
			return nil
		}
		return []string{post.Category}
	})
}

// Tags returns the distinct tags of active posts, sorted.
func (r *Repository) Tags(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, func(post *BlogPost) []string { return post.Tags })
}

// Authors returns the distinct authors of active posts, sorted.
func (r *Repository) Authors(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, func(post *BlogPost) []string {
		if post.Author == "" {
			return nil
		}
		return []string{post.Author}
	})
}

func (r *Repository) distinct(ctx context.Context, values func(*BlogPost) []string) ([]string, error) {
	posts, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	for _, post := range posts {
		for _, v := range values(post) {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}

	sort.Strings(out)
	return out, nil
}

// CategoryStats counts active posts per category.
func (r *Repository) CategoryStats(ctx context.Context) (map[string]int, error) {
	posts, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int)
	for _, post := range posts {
		if post.Category != "" {
			stats[post.Category]++
		}
	}
	return stats, nil
}

// TagStats counts active posts per tag. A post carrying a tag twice still
// counts once.
func (r *Repository) TagStats(ctx context.Context) (map[string]int, error) {
	posts, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int)
	for _, post := range posts {
		seen := make(map[string]struct{}, len(post.Tags))
		for _, tag := range post.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			stats[tag]++
		}
	}
	return stats, nil
}

// MonthlyStats counts published posts per calendar month of one year, by
// effective publication date. All twelve months are present, zeros included.
func (r *Repository) MonthlyStats(ctx context.Context, year int) (map[time.Month]int, error) {
	posts, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[time.Month]int, 12)
	for month := time.January; month <= time.December; month++ {
		stats[month] = 0
	}

	for _, post := range posts {
		if post.Status != StatusPublished {
			continue
		}
		date := post.PublishDate()
		if date.Year() == year {
			stats[date.Month()]++
		}
	}

	return stats, nil
}

// # Bulk Operations

// BulkFailure records one failed item of a bulk operation.
type BulkFailure struct {
	ID    int    `json:"id"`
	Error string `json:"error"`
}

// BulkResult summarizes a best-effort bulk operation: one item failing
// never aborts the rest.
type BulkResult struct {
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Failures  []BulkFailure `json:"failures,omitempty"`
}

// BulkSetStatus moves each listed post to the given status, best-effort.
func (r *Repository) BulkSetStatus(ctx context.Context, ids []int, status Status) (BulkResult, error) {
	result := BulkResult{Requested: len(ids)}

	for _, id := range ids {
		_, err := r.Mutate(ctx, id, func(post *BlogPost) error {
			post.Status = status
			if status == StatusPublished && post.PublishedAt == nil {
				now := time.Now().UTC()
				post.PublishedAt = &now
			}
			return nil
		})
		if err != nil {
			result.Failures = append(result.Failures, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Succeeded++
	}

	r.logger.Info("bulk_status_update",
		slog.String("status", string(status)),
		slog.Int("requested", result.Requested),
		slog.Int("succeeded", result.Succeeded),
	)

	return result, nil
}

// BulkDelete soft-deletes each listed post, best-effort.
func (r *Repository) BulkDelete(ctx context.Context, ids []int) (BulkResult, error) {
	result := BulkResult{Requested: len(ids)}

	for _, id := range ids {
		if err := r.Delete(ctx, id); err != nil {
			result.Failures = append(result.Failures, BulkFailure{ID: id, Error: err.Error()})
			continue
		}
		result.Succeeded++
	}

	return result, nil
}
