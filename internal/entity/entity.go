// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

/*
Package entity implements the generic repository core shared by every
persisted content type.

It defines the base record shape ([Meta]), the pluggable storage contract
([Adapter]), the closed set of filter expressions, and the query pipeline
(filter → search → sort → paginate) that the blog and gallery repositories
are built on.
*/
package entity

import "time"

// Meta is the base shape shared by all persisted records.
//
// Domain types embed Meta by value; the promoted [Model] method gives the
// generic repository uniform access to identity and lifecycle fields.
//
// # Invariants
//
//   - ID is immutable once assigned and never reused after deletion within
//     a single storage adapter's lifetime (the adapter's counter only
//     moves forward).
//   - Non-empty slugs are unique per entity type by caller convention;
//     auto-derived slugs are not collision-checked (see [pkg/slug.Derive]).
type Meta struct {
	ID        int       `json:"id"`
	Slug      string    `json:"slug,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	IsActive  bool      `json:"is_active"`
}

// EntityMeta returns the embedded Meta. It makes any embedding struct
// satisfy [Model].
func (m *Meta) EntityMeta() *Meta { return m }

// Model is satisfied by every persisted record (pointer to a struct that
// embeds [Meta]).
type Model interface {
	EntityMeta() *Meta
}

// MetaField resolves the base-record fields by name for filtering and
// sorting. Domain field accessors fall back to it for names they do not
// recognize.
func MetaField(m *Meta, name string) (any, bool) {
	switch name {
	case "id":
		return m.ID, true
	case "slug":
		return m.Slug, true
	case "created_at":
		return m.CreatedAt, true
	case "updated_at":
		return m.UpdatedAt, true
	case "is_active":
		return m.IsActive, true
	default:
		return nil, false
	}
}

// Patch applies a partial update to a record in place and reports which
// schema fields the partial carried. Fields absent from the returned set
// are vacuously valid during update validation.
type Patch[T any] interface {
	Apply(record T) (present map[string]bool)
}
