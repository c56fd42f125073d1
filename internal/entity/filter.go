// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package entity

import (
	"strings"

	"github.com/evkarin/lumen/pkg/slice"
)

// Filter is a tagged query expression over a named record field.
//
// The closed set of variants ([Equals], [AnyOf], [Contains]) replaces
// loosely-typed filter maps: callers state the intended match semantics
// explicitly instead of the repository inspecting value shapes at runtime.
type Filter interface {
	// FieldName names the record field the filter applies to.
	FieldName() string

	// match evaluates the filter against the field's current value.
	match(value any) bool
}

// Equals keeps records whose field exactly equals Value. Against a
// string-set field it tests membership of a string Value.
type Equals struct {
	Field string
	Value any
}

// FieldName implements [Filter].
func (f Equals) FieldName() string { return f.Field }

func (f Equals) match(value any) bool {
	if set, ok := value.([]string); ok {
		s, ok := f.Value.(string)
		return ok && slice.Contains(set, s)
	}
	return value == f.Value
}

// AnyOf keeps records whose scalar field is one of Values, or whose
// string-set field intersects Values.
type AnyOf struct {
	Field  string
	Values []string
}

// FieldName implements [Filter].
func (f AnyOf) FieldName() string { return f.Field }

func (f AnyOf) match(value any) bool {
	switch v := value.(type) {
	case []string:
		return slice.Intersects(v, f.Values)
	case string:
		return slice.Contains(f.Values, v)
	default:
		return false
	}
}

// Contains keeps records whose string field contains Substring,
// case-insensitively. Non-string fields never match.
type Contains struct {
	Field     string
	Substring string
}

// FieldName implements [Filter].
func (f Contains) FieldName() string { return f.Field }

func (f Contains) match(value any) bool {
	s, ok := value.(string)
	return ok && strings.Contains(strings.ToLower(s), strings.ToLower(f.Substring))
}

// matchesAll reports whether the record's fields satisfy every filter.
// A filter naming an unknown field excludes the record.
func matchesAll[T Model](record T, field FieldFunc[T], filters []Filter) bool {
	for _, f := range filters {
		value, ok := field(record, f.FieldName())
		if !ok || !f.match(value) {
			return false
		}
	}
	return true
}
