// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/platform/apperr"
	"github.com/evkarin/lumen/internal/platform/validate"
	"github.com/evkarin/lumen/pkg/pagination"
	"github.com/evkarin/lumen/pkg/slice"
)

/*
Repository layers the gallery-specific queries over the generic entity
repository. The interesting part is the image-level tag index: tags live on
images, so tag lookups fan out over every collection's image list rather
than a collection-level field.
*/
type Repository struct {
	*entity.Repository[*GalleryCollection]

	logger *slog.Logger
}

// NewRepository builds the collection repository on top of a storage adapter.
func NewRepository(store entity.Adapter[*GalleryCollection], logger *slog.Logger) *Repository {
	return &Repository{
		Repository: entity.NewRepository(store, descriptor, schema, logger),
		logger:     logger,
	}
}

// publicOnly restricts a query to publicly visible collections.
var publicOnly = entity.Equals{Field: FieldIsPublic, Value: true}

// # Scoped Listings

// ListByCategory pages through active collections in one category.
func (r *Repository) ListByCategory(ctx context.Context, category string, params pagination.Params) ([]*GalleryCollection, pagination.Meta, error) {
	return r.List(ctx, entity.ListOptions{
		Page:    params.Page,
		Limit:   params.Limit,
		Filters: []entity.Filter{entity.Equals{Field: FieldCategory, Value: category}},
	})
}

// PublicCollections pages through the publicly visible collections.
func (r *Repository) PublicCollections(ctx context.Context, params pagination.Params) ([]*GalleryCollection, pagination.Meta, error) {
	return r.List(ctx, entity.ListOptions{
		Page:    params.Page,
		Limit:   params.Limit,
		Filters: []entity.Filter{publicOnly},
	})
}

// Featured returns public collections in curated order (sort_order
// ascending).
func (r *Repository) Featured(ctx context.Context, limit int) ([]*GalleryCollection, error) {
	collections, _, err := r.List(ctx, entity.ListOptions{
		Limit:     limit,
		SortBy:    FieldSortOrder,
		SortOrder: "asc",
		Filters:   []entity.Filter{publicOnly},
	})
	return collections, err
}

// Recent returns the newest public collections.
func (r *Repository) Recent(ctx context.Context, limit int) ([]*GalleryCollection, error) {
	collections, _, err := r.List(ctx, entity.ListOptions{
		Limit:   limit,
		Filters: []entity.Filter{publicOnly},
	})
	return collections, err
}

// # Image Tag Index

// FindByImageTag returns the active collections in which at least one image
// carries the tag.
func (r *Repository) FindByImageTag(ctx context.Context, tag string) ([]*GalleryCollection, error) {
	collections, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	return slice.Filter(collections, func(c *GalleryCollection) bool {
		return c.HasImageTag(tag)
	}), nil
}

// ImageTags returns the sorted union of every image tag across active
// collections.
func (r *Repository) ImageTags(ctx context.Context) ([]string, error) {
	collections, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var tags []string
	for _, collection := range collections {
		for _, tag := range collection.ImageTags() {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}

	sort.Strings(tags)
	return tags, nil
}

// TaggedImage is one image matched by a tag query, paired with the
// collection it came from.
type TaggedImage struct {
	CollectionID   int           `json:"collection_id"`
	CollectionName string        `json:"collection_name"`
	Image          *GalleryImage `json:"image"`
}

// ImagesByTag returns every image carrying the tag across active
// collections, in collection-id then image order.
func (r *Repository) ImagesByTag(ctx context.Context, tag string) ([]TaggedImage, error) {
	collections, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	var matched []TaggedImage
	for _, collection := range collections {
		for _, image := range collection.Images {
			if slice.Contains(image.Tags, tag) {
				matched = append(matched, TaggedImage{
					CollectionID:   collection.ID,
					CollectionName: collection.Name,
					Image:          image,
				})
			}
		}
	}

	return matched, nil
}

// ImageTagStats counts images per tag across active collections. An image
// carrying a tag counts once for that tag; two tagged images in one
// collection count twice.
func (r *Repository) ImageTagStats(ctx context.Context) (map[string]int, error) {
	collections, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int)
	for _, collection := range collections {
		for _, image := range collection.Images {
			seen := make(map[string]struct{}, len(image.Tags))
			for _, tag := range image.Tags {
				if _, dup := seen[tag]; dup {
					continue
				}
				seen[tag] = struct{}{}
				stats[tag]++
			}
		}
	}

	return stats, nil
}

// Categories returns the distinct categories of active collections, sorted.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	collections, err := r.Active(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	for _, collection := range collections {
		if collection.Category == "" {
			continue
		}
		if _, dup := seen[collection.Category]; dup {
			continue
		}
		seen[collection.Category] = struct{}{}
		out = append(out, collection.Category)
	}

	sort.Strings(out)
	return out, nil
}

// # Image Mutations
//
// Image ids are scoped to their collection and allocated max+1 within it;
// with edits flowing through Mutate the whole collection document is
// rewritten per change, so the per-collection counter stays consistent.

// validateImage checks an image payload as supplied by the caller, before
// ids and sort orders are assigned.
func validateImage(image GalleryImage) error {
	v := new(validate.Validator)
	v.Required("url", image.URL)
	if image.URL != "" {
		v.URL("url", image.URL)
	}
	v.MaxLen("alt", image.Alt, 300)
	v.MaxLen("caption", image.Caption, 1000)
	v.Custom("sort_order", image.SortOrder < 0, "Must not be negative")
	return v.Err()
}

// AddImage appends an image to the collection. The image's id and, when
// unset, its sort order are assigned here.
func (r *Repository) AddImage(ctx context.Context, collectionID int, image *GalleryImage) (*GalleryCollection, error) {
	if err := validateImage(*image); err != nil {
		return nil, err
	}

	return r.Mutate(ctx, collectionID, func(collection *GalleryCollection) error {
		maxID := 0
		for _, existing := range collection.Images {
			if existing.ID > maxID {
				maxID = existing.ID
			}
		}
		image.ID = maxID + 1

		if image.SortOrder == 0 {
			image.SortOrder = len(collection.Images)
		}
		if image.Size.Width > 0 && image.Size.Height > 0 && image.Size.AspectRatio == 0 {
			image.Size.AspectRatio = float64(image.Size.Width) / float64(image.Size.Height)
		}

		collection.Images = append(collection.Images, image)
		return nil
	})
}

// UpdateImage replaces the fields of one image in place. The image keeps
// its id and, when the update leaves it zero, its sort order.
func (r *Repository) UpdateImage(ctx context.Context, collectionID, imageID int, updated GalleryImage) (*GalleryCollection, error) {
	if err := validateImage(updated); err != nil {
		return nil, err
	}

	return r.Mutate(ctx, collectionID, func(collection *GalleryCollection) error {
		for _, image := range collection.Images {
			if image.ID != imageID {
				continue
			}

			sortOrder := image.SortOrder
			updated.ID = imageID
			if updated.SortOrder == 0 {
				updated.SortOrder = sortOrder
			}
			*image = updated
			return nil
		}
		return apperr.NotFound("Image")
	})
}

// RemoveImage deletes one image and renumbers the survivors' sort orders to
// a dense 0..n-1 sequence, keeping their relative order.
func (r *Repository) RemoveImage(ctx context.Context, collectionID, imageID int) (*GalleryCollection, error) {
	return r.Mutate(ctx, collectionID, func(collection *GalleryCollection) error {
		idx := -1
		for i, image := range collection.Images {
			if image.ID == imageID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return apperr.NotFound("Image")
		}

		collection.Images = append(collection.Images[:idx], collection.Images[idx+1:]...)
		for i, image := range collection.Images {
			image.SortOrder = i
		}
		return nil
	})
}

// ImageOrder assigns one image its new position.
type ImageOrder struct {
	ImageID   int `json:"image_id"`
	SortOrder int `json:"sort_order"`
}

// ReorderImages applies the given positions, then re-sorts the image list
// by sort order. Images not mentioned keep their current positions; an
// unknown image id fails the whole reorder.
func (r *Repository) ReorderImages(ctx context.Context, collectionID int, orders []ImageOrder) (*GalleryCollection, error) {
	return r.Mutate(ctx, collectionID, func(collection *GalleryCollection) error {
		byID := make(map[int]*GalleryImage, len(collection.Images))
		for _, image := range collection.Images {
			byID[image.ID] = image
		}

		for _, order := range orders {
			image, ok := byID[order.ImageID]
			if !ok {
				return apperr.Unprocessable(fmt.Sprintf("Unknown image id %d", order.ImageID))
			}
			image.SortOrder = order.SortOrder
		}

		sort.SliceStable(collection.Images, func(i, j int) bool {
			return collection.Images[i].SortOrder < collection.Images[j].SortOrder
		})
		return nil
	})
}
