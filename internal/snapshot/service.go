// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package snapshot exposes the read side of a node's durable output
// snapshots: listing every version ever taken of a (node, file) slot and
// loading a given version's bytes back out of the blob store. Creation
// and flash-upload dedup against FileMeta happen earlier, in the move
// pipeline (internal/filemove), which persists the Snapshot row and
// removes the spent multipart registration in one step; this package
// never writes a Snapshot itself.
package snapshot

import (
	"context"
	"fmt"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/filemove"
	"github.com/amd-aig/workflow-engine/internal/repository"
	blobstore "github.com/amd-aig/workflow-engine/pkg/snapshot"
)

// Service answers "what versions exist" and "give me the bytes" queries
// against already-committed snapshots.
type Service struct {
	snapshots repository.SnapshotRepository
	fileMetas repository.FileMetaRepository
	blobs     blobstore.Store
}

// NewService builds a Service over the given snapshot/file-meta
// repositories and blob store.
func NewService(snapshots repository.SnapshotRepository, fileMetas repository.FileMetaRepository, blobs blobstore.Store) *Service {
	return &Service{snapshots: snapshots, fileMetas: fileMetas, blobs: blobs}
}

// Versions returns every snapshot ever taken of the given node/file slot,
// oldest first, per spec: listing by (node_id,file_id) returns all
// timestamps, not just the most recent.
func (s *Service) Versions(ctx context.Context, nodeID, fileID string) ([]*domain.Snapshot, error) {
	return s.snapshots.ListByNodeAndFile(ctx, nodeID, fileID)
}

// Latest returns the most recently taken snapshot of the given node/file
// slot.
func (s *Service) Latest(ctx context.Context, nodeID, fileID string) (*domain.Snapshot, error) {
	versions, err := s.Versions(ctx, nodeID, fileID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, repository.ErrNotFound
	}
	return versions[len(versions)-1], nil
}

// Load retrieves a snapshot's file bytes from the blob store, keyed by
// the same MetaID the move pipeline assembled content under.
func (s *Service) Load(ctx context.Context, snap *domain.Snapshot) ([]byte, error) {
	entries, err := s.blobs.Load(ctx, filemove.ContentKey(snap.MetaID))
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("snapshot: no content found for meta %s", snap.MetaID)
	}
	return entries[0].Content, nil
}

// CanonicalMeta resolves the FileMeta a snapshot's content is stored
// under, so callers can check size/hash without re-reading the blob.
func (s *Service) CanonicalMeta(ctx context.Context, snap *domain.Snapshot) (*domain.FileMeta, error) {
	return s.fileMetas.Get(ctx, snap.MetaID)
}
