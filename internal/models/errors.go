package models

import (
	"fmt"
	"sort"
	"strings"
)

// ValidationError reports malformed request fields. Maps to HTTP 400.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError reports an unknown chat or message identifier. Maps to
// HTTP 404. A malformed identifier is reported the same way.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// UnavailableError means the inference backend could not be contacted at
// all, typically because it is not running. Maps to HTTP 503.
type UnavailableError struct {
	Message string
}

func (e *UnavailableError) Error() string { return e.Message }

// UpstreamError carries an error condition reported by the inference
// backend itself (invalid credentials, rate limit, unknown model). Maps to
// HTTP 502.
type UpstreamError struct {
	Message string
}

func (e *UpstreamError) Error() string { return e.Message }

// StorageError wraps a failed document-store operation. Maps to HTTP 500
// and is always logged server-side.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
