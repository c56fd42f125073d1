// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

// Package blog implements the journal side of the portfolio: posts with
// categories, free-form tags, lifecycle statuses, engagement counters, and
// related-content scoring.
package blog

import (
	"regexp"
	"time"

	"github.com/evkarin/lumen/internal/entity"
	"github.com/evkarin/lumen/internal/platform/validate"
)

// Status is a post's lifecycle state. Transitions are free-form: any status
// may follow any other.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// statusPattern backs the schema's status format rule.
var statusPattern = regexp.MustCompile(`^(draft|published|archived)$`)

// Field names shared by the descriptor, schema, and patch application.
const (
	FieldTitle       = "title"
	FieldSubtitle    = "subtitle"
	FieldContent     = "content"
	FieldExcerpt     = "excerpt"
	FieldCoverImage  = "cover_image"
	FieldCategory    = "category"
	FieldTags        = "tags"
	FieldAuthor      = "author"
	FieldPublishedAt = "published_at"
	FieldStatus      = "status"
	FieldViewCount   = "view_count"
	FieldLikes       = "likes"
)

// EmbeddedImage is an inline image referenced from a post's content.
type EmbeddedImage struct {
	ID       int    `json:"id"`
	URL      string `json:"url"`
	Alt      string `json:"alt"`
	Position int    `json:"position"`
}

// SEO carries the per-entity search metadata.
type SEO struct {
	Keywords        []string `json:"keywords,omitempty"`
	MetaTitle       string   `json:"meta_title,omitempty"`
	MetaDescription string   `json:"meta_description,omitempty"`
}

// BlogPost is one journal entry.
//
// ViewCount and Likes move only through the dedicated increment operations,
// never through general updates — a convention, not an enforced rule.
type BlogPost struct {
	entity.Meta

	Title string `json:"title"`
	// Subtitle renders before the title when SubtitleFirst is set.
	Subtitle      string `json:"subtitle,omitempty"`
	SubtitleFirst bool   `json:"subtitle_first,omitempty"`

	Content    string `json:"content"`
	Excerpt    string `json:"excerpt,omitempty"`
	CoverImage string `json:"cover_image,omitempty"`

	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
	Author   string   `json:"author"`

	PublishedAt *time.Time `json:"published_at,omitempty"`
	Status      Status     `json:"status"`

	ViewCount int `json:"view_count"`
	Likes     int `json:"likes"`

	Images []EmbeddedImage `json:"images,omitempty"`
	SEO    SEO             `json:"seo,omitempty"`
}

// PublishDate is the effective publication time: PublishedAt when set,
// otherwise CreatedAt. Date-range queries and the recent feed compare
// against it.
func (p *BlogPost) PublishDate() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// fieldValue resolves named post fields for filtering and sorting.
func fieldValue(post *BlogPost, name string) (any, bool) {
	switch name {
	case FieldTitle:
		return post.Title, true
	case FieldSubtitle:
		return post.Subtitle, true
	case FieldContent:
		return post.Content, true
	case FieldCoverImage:
		return post.CoverImage, true
	case FieldCategory:
		return post.Category, true
	case FieldTags:
		return post.Tags, true
	case FieldAuthor:
		return post.Author, true
	case FieldPublishedAt:
		return post.PublishDate(), true
	case FieldStatus:
		return string(post.Status), true
	case FieldViewCount:
		return post.ViewCount, true
	case FieldLikes:
		return post.Likes, true
	default:
		return entity.MetaField(&post.Meta, name)
	}
}

// descriptor wires posts into the generic repository.
var descriptor = entity.Descriptor[*BlogPost]{
	Name:            "Post",
	Field:           fieldValue,
	SearchFields:    []string{FieldTitle, FieldSubtitle, FieldContent, FieldCategory, FieldAuthor},
	SearchSetFields: []string{FieldTags},
	Title:           func(post *BlogPost) string { return post.Title },
}

// schema is the post validation rule list. Every rule runs on every call;
// all violations come back in one response.
var schema = validate.Schema[*BlogPost]{
	Entity: "Post",
	Rules: []validate.Rule[*BlogPost]{
		validate.Required(FieldTitle, validate.Str(func(p *BlogPost) string { return p.Title })),
		validate.MinLength(FieldTitle, 3, validate.Str(func(p *BlogPost) string { return p.Title })),
		validate.MaxLength(FieldTitle, 200, validate.Str(func(p *BlogPost) string { return p.Title })),
		validate.Required(FieldContent, validate.Str(func(p *BlogPost) string { return p.Content })),
		validate.MinLength(FieldContent, 50, validate.Str(func(p *BlogPost) string { return p.Content })),
		validate.Required(FieldCategory, validate.Str(func(p *BlogPost) string { return p.Category })),
		validate.Required(FieldAuthor, validate.Str(func(p *BlogPost) string { return p.Author })),
		validate.URL(FieldCoverImage, validate.Str(func(p *BlogPost) string { return p.CoverImage })),
		validate.Pattern(FieldStatus, statusPattern, validate.Str(func(p *BlogPost) string { return string(p.Status) })).
			WithMessage("Must be one of: draft, published, archived"),
	},
}

// PostPatch is a partial post update. Nil fields are absent: they are
// neither merged nor validated.
type PostPatch struct {
	Title         *string    `json:"title,omitempty"`
	Subtitle      *string    `json:"subtitle,omitempty"`
	SubtitleFirst *bool      `json:"subtitle_first,omitempty"`
	Content       *string    `json:"content,omitempty"`
	Excerpt       *string    `json:"excerpt,omitempty"`
	CoverImage    *string    `json:"cover_image,omitempty"`
	Category      *string    `json:"category,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	Author        *string    `json:"author,omitempty"`
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	Status        *Status    `json:"status,omitempty"`

	Images []EmbeddedImage `json:"images,omitempty"`
	SEO    *SEO            `json:"seo,omitempty"`
}

// Apply implements [entity.Patch]: a shallow merge over the stored post.
func (patch *PostPatch) Apply(post *BlogPost) map[string]bool {
	present := make(map[string]bool)

	if patch.Title != nil {
		post.Title = *patch.Title
		present[FieldTitle] = true
	}
	if patch.Subtitle != nil {
		post.Subtitle = *patch.Subtitle
		present[FieldSubtitle] = true
	}
	if patch.SubtitleFirst != nil {
		post.SubtitleFirst = *patch.SubtitleFirst
	}
	if patch.Content != nil {
		post.Content = *patch.Content
		present[FieldContent] = true
	}
	if patch.Excerpt != nil {
		post.Excerpt = *patch.Excerpt
		present[FieldExcerpt] = true
	}
	if patch.CoverImage != nil {
		post.CoverImage = *patch.CoverImage
		present[FieldCoverImage] = true
	}
	if patch.Category != nil {
		post.Category = *patch.Category
		present[FieldCategory] = true
	}
	if patch.Tags != nil {
		post.Tags = patch.Tags
		present[FieldTags] = true
	}
	if patch.Author != nil {
		post.Author = *patch.Author
		present[FieldAuthor] = true
	}
	if patch.PublishedAt != nil {
		post.PublishedAt = patch.PublishedAt
		present[FieldPublishedAt] = true
	}
	if patch.Status != nil {
		post.Status = *patch.Status
		present[FieldStatus] = true
	}
	if patch.Images != nil {
		post.Images = patch.Images
	}
	if patch.SEO != nil {
		post.SEO = *patch.SEO
	}

	return present
}
