// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package domain

import "fmt"

// FlashUploadError is not a failure: the move pipeline raises it to short
// circuit a declared upload whose hash already exists in the store, so the
// caller can skip the byte transfer entirely. DeclaredMetaID is what the
// caller asked to create; CanonicalMetaID is the pre-existing FileMeta
// that now owns the hash.
type FlashUploadError struct {
	DeclaredMetaID  string
	CanonicalMetaID string
}

func (e *FlashUploadError) Error() string {
	return fmt.Sprintf("flash upload: hash already stored under meta %q (declared %q)", e.CanonicalMetaID, e.DeclaredMetaID)
}

// DifferentHashesError is raised when a completed multipart upload's
// reassembled content hash does not match the hash declared at
// registration time.
type DifferentHashesError struct {
	Declared string
	Actual   string
}

func (e *DifferentHashesError) Error() string {
	return fmt.Sprintf("declared hash %q does not match reassembled hash %q", e.Declared, e.Actual)
}

// ConflictedIDError is raised when a caller-supplied id collides with an
// existing registration for a different hash.
type ConflictedIDError struct {
	ID string
}

func (e *ConflictedIDError) Error() string {
	return fmt.Sprintf("id %q already registered under a different hash", e.ID)
}

// ConflictedHashError is raised when a declared upload's hash matches an
// in-flight multipart registration already owned by a different meta id.
type ConflictedHashError struct {
	ExistingID string
	Hash       string
}

func (e *ConflictedHashError) Error() string {
	return fmt.Sprintf("hash %q already registered under meta %q", e.Hash, e.ExistingID)
}

// MultipartNotFoundError is raised when a part lands for a multipart
// registration that was never declared or whose lease already expired.
type MultipartNotFoundError struct {
	MetaID string
}

func (e *MultipartNotFoundError) Error() string {
	return fmt.Sprintf("no multipart registration found for meta %q", e.MetaID)
}
