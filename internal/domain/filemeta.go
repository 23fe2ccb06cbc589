// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package domain

import "time"

// FileMeta is the content-addressed record for a file known to the store,
// keyed by hash rather than by any single owning node or upload.
type FileMeta struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	Hash        string    `gorm:"size:128;uniqueIndex" json:"hash"`
	Algorithm   string    `gorm:"size:16" json:"algorithm"`
	Size        int64     `json:"size"`
	FirstSeenAt time.Time `json:"first_seen_at"`
}

// TableName pins the GORM table name independent of struct renames.
func (FileMeta) TableName() string {
	return "file_metas"
}

// DestinationKind discriminates the closed set of places a completed
// upload can land.
type DestinationKind string

const (
	DestinationStorageServer DestinationKind = "StorageServer"
	DestinationSnapshot      DestinationKind = "Snapshot"
)

// Destination is a closed sum type naming where an uploaded file's bytes
// are ultimately persisted.
type Destination struct {
	Kind DestinationKind `json:"kind"`

	// StorageServer fields.
	RecordNetDisk bool `json:"record_net_disk,omitempty"`

	// Snapshot fields.
	NodeID    string    `json:"node_id,omitempty"`
	FileID    string    `json:"file_id,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// MoveRegistration tracks a single declared file move from an agent's
// local path into the content-addressed store, from declaration through
// flash-upload resolution or byte transfer.
type MoveRegistration struct {
	ID             string      `gorm:"primaryKey;size:64" json:"id"`
	MetaID         string      `gorm:"size:64;index" json:"meta_id,omitempty"`
	FileName       string      `gorm:"size:512" json:"file_name"`
	Hash           string      `gorm:"size:128;index" json:"hash"`
	HashAlgorithm  string      `gorm:"size:16" json:"hash_algorithm"`
	Size           int64       `json:"size"`
	DestinationJSON string     `gorm:"type:jsonb;column:destination" json:"-"`
	Destination    Destination `gorm:"-" json:"destination"`
	IsUploadFailed bool        `json:"is_upload_failed"`
	FailedReason   string      `json:"failed_reason,omitempty"`
	UserID         string      `gorm:"size:64" json:"user_id,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// TableName pins the GORM table name independent of struct renames.
func (MoveRegistration) TableName() string {
	return "move_registrations"
}

// MultipartRegistration tracks the chunk-completion bitmask for a
// declared multipart upload, leased (TTL-bound) until all parts land or
// the lease expires and the registration is reclaimed.
type MultipartRegistration struct {
	MetaID    string `json:"meta_id"`
	Hash      string `json:"hash"`
	Algorithm string `json:"algorithm"`
	Parts     []bool `json:"parts"`
}

// AllPartsReceived reports whether every declared chunk has landed.
func (m MultipartRegistration) AllPartsReceived() bool {
	for _, got := range m.Parts {
		if !got {
			return false
		}
	}
	return true
}

// Snapshot is a content-addressed reference to a file produced by a node,
// retained independent of the node's own lifecycle so later flows can
// replay against it.
type Snapshot struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	MetaID    string    `gorm:"size:64;index" json:"meta_id"`
	NodeID    string    `gorm:"size:64;index" json:"node_id"`
	FileID    string    `gorm:"size:64" json:"file_id"`
	Timestamp time.Time `json:"timestamp"`
	FileName  string    `gorm:"size:512" json:"file_name"`
	Size      int64     `json:"size"`
	Hash      string    `gorm:"size:128;index" json:"hash"`
	Algorithm string    `gorm:"size:16" json:"algorithm"`
	UserID    string    `gorm:"size:64" json:"user_id,omitempty"`
}

// TableName pins the GORM table name independent of struct renames.
func (Snapshot) TableName() string {
	return "snapshots"
}
