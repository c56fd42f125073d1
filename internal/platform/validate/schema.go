// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/evkarin/lumen/internal/platform/apperr"
)

// Kind identifies a declarative validation rule type.
type Kind string

const (
	KindRequired  Kind = "required"
	KindEmail     Kind = "email"
	KindURL       Kind = "url"
	KindMinLength Kind = "minLength"
	KindMaxLength Kind = "maxLength"
	KindPattern   Kind = "pattern"
)

// Getter reports the candidate's current value for a rule's field and
// whether the field is considered present. Absent values never fail
// non-required rules (optional-field semantics).
type Getter[T any] func(candidate T) (value any, present bool)

// Str adapts a plain string field accessor. The empty string counts as absent.
func Str[T any](get func(T) string) Getter[T] {
	return func(c T) (any, bool) {
		s := get(c)
		return s, s != ""
	}
}

// StrPtr adapts an optional *string field accessor. Nil counts as absent.
func StrPtr[T any](get func(T) *string) Getter[T] {
	return func(c T) (any, bool) {
		p := get(c)
		if p == nil {
			return nil, false
		}
		return *p, true
	}
}

// Strs adapts a []string field accessor. A nil slice counts as absent.
func Strs[T any](get func(T) []string) Getter[T] {
	return func(c T) (any, bool) {
		s := get(c)
		return s, s != nil
	}
}

// Rule is one declarative validation rule: a field name, a rule kind, an
// optional comparison value, and the failure message.
type Rule[T any] struct {
	Field   string
	Kind    Kind
	Bound   int
	Pattern *regexp.Regexp
	Message string
	Value   Getter[T]
}

// WithMessage overrides the rule's default failure message.
func (r Rule[T]) WithMessage(msg string) Rule[T] {
	r.Message = msg
	return r
}

// Required builds a rule that fails when the field is absent, nil, or
// (for strings) empty/whitespace-only.
func Required[T any](field string, value Getter[T]) Rule[T] {
	return Rule[T]{Field: field, Kind: KindRequired, Message: "This field is required", Value: value}
}

// Email builds a rule that fails when a present value is not a valid address.
func Email[T any](field string, value Getter[T]) Rule[T] {
	return Rule[T]{Field: field, Kind: KindEmail, Message: "Must be a valid email address", Value: value}
}

// URL builds a rule that fails when a present value is not an absolute URL.
func URL[T any](field string, value Getter[T]) Rule[T] {
	return Rule[T]{Field: field, Kind: KindURL, Message: "Must be a valid absolute URL", Value: value}
}

// MinLength builds a rule that fails when a present string or slice is
// shorter than min.
func MinLength[T any](field string, min int, value Getter[T]) Rule[T] {
	return Rule[T]{Field: field, Kind: KindMinLength, Bound: min,
		Message: fmt.Sprintf("Minimum length is %d", min), Value: value}
}

// MaxLength builds a rule that fails when a present string or slice is
// longer than max.
func MaxLength[T any](field string, max int, value Getter[T]) Rule[T] {
	return Rule[T]{Field: field, Kind: KindMaxLength, Bound: max,
		Message: fmt.Sprintf("Maximum length is %d", max), Value: value}
}

// Pattern builds a rule that fails when a present string does not match re.
func Pattern[T any](field string, re *regexp.Regexp, value Getter[T]) Rule[T] {
	return Rule[T]{Field: field, Kind: KindPattern, Pattern: re,
		Message: "Invalid format", Value: value}
}

// Schema is an ordered list of rules for one entity type.
//
// Rule order determines the order errors are collected in, not
// short-circuiting: every rule runs and every violation is reported, so a
// single call surfaces all problems at once.
type Schema[T any] struct {
	// Entity names the entity type the schema applies to (for error messages).
	Entity string
	Rules  []Rule[T]
}

// Validate evaluates every rule against the candidate and returns a single
// VALIDATION_ERROR [apperr.AppError] carrying all violations, or nil.
//
// It is a pure function of (schema, candidate): no side effects.
func (s Schema[T]) Validate(candidate T) error {
	return s.run(candidate, nil)
}

// ValidatePartial evaluates only rules whose field name is in present.
//
// It implements patch semantics: rules for fields absent from the partial
// update are vacuously satisfied, including required rules.
func (s Schema[T]) ValidatePartial(candidate T, present map[string]bool) error {
	return s.run(candidate, present)
}

func (s Schema[T]) run(candidate T, presentFields map[string]bool) error {
	var details []apperr.FieldError

	for _, rule := range s.Rules {
		if presentFields != nil && !presentFields[rule.Field] {
			continue
		}

		value, present := rule.Value(candidate)
		if fe, failed := rule.check(value, present); failed {
			details = append(details, fe)
		}
	}

	if len(details) == 0 {
		return nil
	}
	return apperr.ValidationError(s.Entity+" validation failed", details...)
}

// check evaluates a single rule against the extracted value.
func (r Rule[T]) check(value any, present bool) (apperr.FieldError, bool) {
	fail := func() (apperr.FieldError, bool) {
		return apperr.FieldError{Field: r.Field, Message: r.Message, Value: value}, true
	}

	if r.Kind == KindRequired {
		if !present {
			return fail()
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return fail()
		}
		if ss, ok := value.([]string); ok && len(ss) == 0 {
			return fail()
		}
		return apperr.FieldError{}, false
	}

	// Absent values never fail non-required rules.
	if !present {
		return apperr.FieldError{}, false
	}

	switch r.Kind {
	case KindEmail:
		if s, ok := value.(string); ok {
			if _, err := mail.ParseAddress(s); err != nil {
				return fail()
			}
		}
	case KindURL:
		if s, ok := value.(string); ok && !isAbsoluteURL(s) {
			return fail()
		}
	case KindMinLength:
		if n, ok := lengthOf(value); ok && n < r.Bound {
			return fail()
		}
	case KindMaxLength:
		if n, ok := lengthOf(value); ok && n > r.Bound {
			return fail()
		}
	case KindPattern:
		if s, ok := value.(string); ok && !r.Pattern.MatchString(s) {
			return fail()
		}
	}

	return apperr.FieldError{}, false
}

// lengthOf measures strings in Unicode characters and slices in elements.
func lengthOf(value any) (int, bool) {
	switch v := value.(type) {
	case string:
		return utf8.RuneCountInString(v), true
	case []string:
		return len(v), true
	default:
		return 0, false
	}
}
