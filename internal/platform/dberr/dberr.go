// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/taibuivan/yomira-crawler/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// resource names the entity for not-found messages, action describes the failed step
// for the server-side log.
func Wrap(err error, resource, action string) error {
	if err == nil {
		return nil
	}

	// 1. Already classified (e.g. by a repository)
	if apperr.IsAppError(err) {
		return err
	}

	// 2. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	// 3. Everything else is an Internal Server Error with the action kept for logs
	return apperr.Internal(fmt.Errorf("postgres: %s: %w", action, err))
}
