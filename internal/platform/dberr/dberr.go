// Copyright (c) 2026 Lumen. All rights reserved.
// Author: e.karin.photo@gmail.com

// Package dberr provides a bridge between low-level storage errors and
// higher-level application errors.
package dberr

import (
	"database/sql"
	"errors"

	"github.com/evkarin/lumen/internal/platform/apperr"
)

var (
	// ErrNotFound is a standard error returned when a queried record doesn't exist.
	// Every storage adapter maps its own missing-row signal to this value.
	ErrNotFound = apperr.NotFound("Resource")
)

// Wrap inspects a storage error and wraps it into a meaningful [apperr.AppError].
// It hides internal storage details from the client while classifying the error type.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	// 1. Not Found mapping
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}

	// 2. Validation and conflict errors pass through untouched
	if apperr.IsAppError(err) {
		return err
	}

	// 3. Unknown storage errors become Internal Server Errors
	return apperr.Internal(err)
}
