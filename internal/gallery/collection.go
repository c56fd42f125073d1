// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

// Package gallery implements the photo side of the portfolio: collections
// of images where tags live on the individual images, with the collection
// acting as a container for its image-level tag vocabulary.
package gallery

import (
	"time"

	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/platform/validate"
)

// Field names shared by the descriptor, schema, and patch application.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldCoverImage  = "cover_image"
	FieldCategory    = "category"
	FieldIsPublic    = "is_public"
	FieldSortOrder   = "sort_order"
)

// Dimensions records an image's pixel size and derived aspect ratio.
type Dimensions struct {
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	AspectRatio float64 `json:"aspect_ratio,omitempty"`
}

// FileMeta carries the capture metadata extracted from an uploaded file.
type FileMeta struct {
	FileName  string     `json:"file_name,omitempty"`
	FileSize  int64      `json:"file_size,omitempty"`
	MimeType  string     `json:"mime_type,omitempty"`
	Camera    string     `json:"camera,omitempty"`
	Lens      string     `json:"lens,omitempty"`
	Aperture  string     `json:"aperture,omitempty"`
	Shutter   string     `json:"shutter,omitempty"`
	ISO       int        `json:"iso,omitempty"`
	TakenAt   *time.Time `json:"taken_at,omitempty"`
	GPSCoords string     `json:"gps_coords,omitempty"`
}

// GalleryImage is one photo inside a collection. IDs are scoped to the
// collection, and SortOrder positions the image within it.
//
// Tags attach here, not on the collection: a collection's tag vocabulary is
// whatever its images carry.
type GalleryImage struct {
	ID        int        `json:"id"`
	URL       string     `json:"url"`
	Thumbnail string     `json:"thumbnail,omitempty"`
	Alt       string     `json:"alt,omitempty"`
	Caption   string     `json:"caption,omitempty"`
	Tags      []string   `json:"tags,omitempty"`
	Size      Dimensions `json:"size,omitempty"`
	File      FileMeta   `json:"file,omitempty"`
	SortOrder int        `json:"sort_order"`
}

// SEO carries the per-entity search metadata.
type SEO struct {
	Keywords        []string `json:"keywords,omitempty"`
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
}

// GalleryCollection is a named, ordered set of images.
type GalleryCollection struct {
	entity.Meta

	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CoverImage  string `json:"cover_image"`
	Category    string `json:"category,omitempty"`

	Images []*GalleryImage `json:"images"`

	IsPublic  bool `json:"is_public"`
	SortOrder int  `json:"sort_order"`

	SEO SEO `json:"seo,omitempty"`
}

// ImageTags returns the deduplicated tags across the collection's images,
// in first-seen order.
func (c *GalleryCollection) ImageTags() []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, image := range c.Images {
		for _, tag := range image.Tags {
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags
}

// HasImageTag reports whether any image in the collection carries the tag.
func (c *GalleryCollection) HasImageTag(tag string) bool {
	for _, image := range c.Images {
		for _, t := range image.Tags {
			if t == tag {
				return true
			}
		}
	}
	return false
}

// fieldValue resolves named collection fields for filtering and sorting.
// "image_tags" exposes the image-level tag union so tag filters can run
// through the generic pipeline.
func fieldValue(collection *GalleryCollection, name string) (any, bool) {
	switch name {
	case FieldName:
		return collection.Name, true
	case FieldDescription:
		return collection.Description, true
	case FieldCoverImage:
		return collection.CoverImage, true
	case FieldCategory:
		return collection.Category, true
	case FieldIsPublic:
		return collection.IsPublic, true
	case FieldSortOrder:
		return collection.SortOrder, true
	case "image_tags":
		return collection.ImageTags(), true
	default:
		return entity.MetaField(&collection.Meta, name)
	}
}

// descriptor wires collections into the generic repository. Search
// deliberately covers the collection's own text fields only; image tags are
// reachable through the dedicated tag queries, not free-text search.
var descriptor = entity.Descriptor[*GalleryCollection]{
	Name:         "Collection",
	Field:        fieldValue,
	SearchFields: []string{FieldName, FieldDescription, FieldCategory},
	Title:        func(collection *GalleryCollection) string { return collection.Name },
}

// schema is the collection validation rule list.
var schema = validate.Schema[*GalleryCollection]{
	Entity: "Collection",
	Rules: []validate.Rule[*GalleryCollection]{
		validate.Required(FieldName, validate.Str(func(c *GalleryCollection) string { return c.Name })),
		validate.MinLength(FieldName, 2, validate.Str(func(c *GalleryCollection) string { return c.Name })),
		validate.MaxLength(FieldName, 120, validate.Str(func(c *GalleryCollection) string { return c.Name })),
		validate.MaxLength(FieldDescription, 2000, validate.Str(func(c *GalleryCollection) string { return c.Description })),
		validate.Required(FieldCoverImage, validate.Str(func(c *GalleryCollection) string { return c.CoverImage })),
		validate.URL(FieldCoverImage, validate.Str(func(c *GalleryCollection) string { return c.CoverImage })),
	},
}

// CollectionPatch is a partial collection update. Nil fields are absent.
// Image edits go through the dedicated image operations, not the patch.
type CollectionPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	CoverImage  *string `json:"cover_image,omitempty"`
	Category    *string `json:"category,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
	SortOrder   *int    `json:"sort_order,omitempty"`
	SEO         *SEO    `json:"seo,omitempty"`
}

// Apply implements [entity.Patch]: a shallow merge over the stored collection.
func (patch *CollectionPatch) Apply(collection *GalleryCollection) map[string]bool {
	present := make(map[string]bool)

	if patch.Name != nil {
		collection.Name = *patch.Name
		present[FieldName] = true
	}
	if patch.Description != nil {
		collection.Description = *patch.Description
		present[FieldDescription] = true
	}
	if patch.CoverImage != nil {
		collection.CoverImage = *patch.CoverImage
		present[FieldCoverImage] = true
	}
	if patch.Category != nil {
		collection.Category = *patch.Category
		present[FieldCategory] = true
	}
	if patch.IsPublic != nil {
		collection.IsPublic = *patch.IsPublic
	}
	if patch.SortOrder != nil {
		collection.SortOrder = *patch.SortOrder
	}
	if patch.SEO != nil {
		collection.SEO = *patch.SEO
	}

	return present
}
