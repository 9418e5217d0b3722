package models

import "errors"

// Extraction failures. None of these are fatal to the session; a failed
// capture leaves the input in place for resubmission.
var (
	ErrEmptyInput          = errors.New("input is too short to capture")
	ErrMalformedResponse   = errors.New("extraction response did not match the expected schema")
	ErrExtractionTransport = errors.New("extraction request failed")
)

// Attachment upload failures.
var (
	ErrUploadTransport = errors.New("attachment upload failed")
	ErrQuotaExceeded   = errors.New("attachment storage quota exceeded")
)

// Attachment delete failures.
var (
	ErrBlobNotFound    = errors.New("attachment binary not found in storage")
	ErrDeleteTransport = errors.New("attachment delete failed")
)

// ErrDuplicateCategory is returned when an accept or manual add collides with
// an existing category name for the same user.
var ErrDuplicateCategory = errors.New("a category with that name already exists")

// ErrNotFound covers lookups of tasks, categories and attachments that are
// absent from the user's partition.
var ErrNotFound = errors.New("not found")
