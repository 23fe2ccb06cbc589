// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package filemove implements the multipart-upload assembly and
// two-phase move-dispatch pipeline: chunked uploads land as shard blobs
// keyed by meta id, assembly verifies the declared hash, and a move
// registration routes the finished content toward its destination
// (object storage or a node's output snapshot), deduplicating by
// content hash via flash upload.
package filemove

import (
	"context"

	"github.com/amd-aig/workflow-engine/internal/repository"
	"github.com/amd-aig/workflow-engine/pkg/snapshot"
)

// Service wires the repositories and backing blob store behind the
// multipart/move/flash-upload operations.
type Service struct {
	multipart    *repository.MultipartRepository
	move         *repository.MoveRepository
	fileMetas    repository.FileMetaRepository
	snapshots    repository.SnapshotRepository
	blobs        snapshot.Store
	dispatcher   UploadDispatcher
	specRewriter SpecRewriter
}

// NewService builds a filemove Service over the given repositories,
// object storage backend, and upload dispatcher. specRewriter may be
// nil when flash upload never needs to repoint an in-flight flow's spec
// (e.g. an offline or test harness); IfPossibleDoFlashUpload then simply
// skips that step.
func NewService(
	multipart *repository.MultipartRepository,
	move *repository.MoveRepository,
	fileMetas repository.FileMetaRepository,
	snapshots repository.SnapshotRepository,
	blobs snapshot.Store,
	dispatcher UploadDispatcher,
	specRewriter SpecRewriter,
) *Service {
	return &Service{
		multipart:    multipart,
		move:         move,
		fileMetas:    fileMetas,
		snapshots:    snapshots,
		blobs:        blobs,
		dispatcher:   dispatcher,
		specRewriter: specRewriter,
	}
}

// UploadDispatcher notifies the external agent-side upload worker that a
// registered move is ready to transfer bytes toward its StorageServer
// destination. The Status Bus (internal/bus) carries flow/node/task
// state changes only; this is a narrower, worker-directed signal.
type UploadDispatcher interface {
	Dispatch(ctx context.Context, moveID, userID string) error
}

// SpecRewriter replaces a placeholder meta id with its canonical
// equivalent inside a running flow's persisted spec, so that downstream
// slot bindings which referenced the placeholder resolve to the
// already-existing content a flash upload discovered. Implemented by
// internal/scheduler's FlowSpecRewriter, which makes one optimistic-lock
// attempt per call; the retry loop is in this package's flash-upload path.
type SpecRewriter interface {
	ReplaceMetaID(ctx context.Context, flowID, placeholderMetaID, canonicalMetaID string) error
}
