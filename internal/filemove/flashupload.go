// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package filemove

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/repository"
)

// FlashUploadInfo describes a declared upload IfPossibleDoFlashUpload
// checks against existing content before any bytes are transferred.
type FlashUploadInfo struct {
	DeclaredMetaID string
	Hash           string
	Algorithm      string
	Destination    domain.Destination
	FlowID         string
	UserID         string
	FileName       string
	Size           int64
}

// IfPossibleDoFlashUpload looks up an existing FileMeta by (hash,
// algorithm). If none exists it returns (nil, nil) and the caller
// proceeds with a normal upload. If one exists, the upload is skipped:
// a Snapshot destination gets a Snapshot row committed directly, and for
// any destination with a FlowID the flow spec's placeholder meta id is
// rewritten onto the canonical meta id (bounded retry); the call always returns
// a *domain.FlashUploadError naming both ids — callers treat this as a
// successful short-circuit, not a failure.
func (s *Service) IfPossibleDoFlashUpload(ctx context.Context, info FlashUploadInfo) error {
	canonical, err := s.fileMetas.GetByHash(ctx, info.Hash)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil
		}
		return err
	}

	switch info.Destination.Kind {
	case domain.DestinationSnapshot:
		snap := &domain.Snapshot{
			ID:        uuid.New().String(),
			MetaID:    canonical.ID,
			NodeID:    info.Destination.NodeID,
			FileID:    info.Destination.FileID,
			Timestamp: time.Now(),
			FileName:  info.FileName,
			Size:      info.Size,
			Hash:      info.Hash,
			Algorithm: info.Algorithm,
			UserID:    info.UserID,
		}
		if err := s.snapshots.Create(ctx, snap); err != nil {
			return err
		}
	case domain.DestinationStorageServer:
		// Net-disk record attachment is ordinary bookkeeping the caller
		// performs against the canonical meta id; flash upload itself
		// only needs to resolve which id that is.
	}

	if info.FlowID != "" && s.specRewriter != nil {
		if err := s.rewriteSpecWithRetry(ctx, info.FlowID, info.DeclaredMetaID, canonical.ID); err != nil {
			return err
		}
	}

	return &domain.FlashUploadError{DeclaredMetaID: info.DeclaredMetaID, CanonicalMetaID: canonical.ID}
}

const specRewriteMaxAttempts = 5

// rewriteSpecWithRetry tries the flow spec rewrite up to
// specRewriteMaxAttempts times, waiting a jittered 10-99ms back-off after
// each failed attempt.
func (s *Service) rewriteSpecWithRetry(ctx context.Context, flowID, placeholderMetaID, canonicalMetaID string) error {
	var err error
	for attempt := 0; attempt < specRewriteMaxAttempts; attempt++ {
		err = s.specRewriter.ReplaceMetaID(ctx, flowID, placeholderMetaID, canonicalMetaID)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jitteredBackoff()):
		}
	}
	return err
}

func jitteredBackoff() time.Duration {
	return time.Duration(10+rand.Intn(90)) * time.Millisecond
}
