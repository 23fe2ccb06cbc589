// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package filemove

import (
	"context"

	"github.com/google/uuid"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// PrepareResult is the closed set of outcomes a declared upload can
// resolve to before any bytes are transferred.
type PrepareResult string

const (
	PrepareNormal       PrepareResult = "Normal"
	PrepareUnfinished   PrepareResult = "Unfinished"
	PrepareFlashUpload  PrepareResult = "FlashUpload"
	PrepareConflictedId PrepareResult = "ConflictedId"
)

// PrepareInfo describes a caller's declared upload prior to registering
// any chunk-completion bitmask.
type PrepareInfo struct {
	// MetaID is the caller-supplied id, if any. Empty means the caller
	// is asking to be allocated a fresh one.
	MetaID      string
	Hash        string
	Algorithm   string
	Size        int64
	PartCount   int
	Destination domain.Destination
	FlowID      string
	UserID      string
	FileName    string
}

// PrepareOutcome is the structured result of a Prepare call, matching
// the upload-surface's PreparePartialUpload response shape.
type PrepareOutcome struct {
	Result PrepareResult
	MetaID string
}

// Prepare decides, before a single byte moves, what a declared upload
// should do next:
//
//   - FlashUpload: the declared hash already has a canonical FileMeta.
//     The snapshot/storage-server destination is satisfied immediately
//     (via IfPossibleDoFlashUpload) and MetaID is the canonical id.
//   - ConflictedId: the caller supplied a meta id that's already mid
//     transfer for a different hash. MetaID echoes the conflicting id
//     so the caller can pick a new one.
//   - ConflictedHash: the declared hash is already mid-transfer under
//     a different meta id. Returned as an error, since the only
//     sensible resolution is for the caller to retry against that id
//     rather than receiving a usable outcome of their own.
//   - Unfinished: the caller supplied a meta id with a registration
//     already in progress for the same hash; resume it.
//   - Normal: genuinely new content. A fresh chunk-completion bitmask
//     is registered under MetaID (freshly allocated if the caller
//     didn't supply one).
func (s *Service) Prepare(ctx context.Context, info PrepareInfo) (*PrepareOutcome, error) {
	flashErr := s.IfPossibleDoFlashUpload(ctx, FlashUploadInfo{
		DeclaredMetaID: info.MetaID,
		Hash:           info.Hash,
		Algorithm:      info.Algorithm,
		Destination:    info.Destination,
		FlowID:         info.FlowID,
		UserID:         info.UserID,
		FileName:       info.FileName,
		Size:           info.Size,
	})
	if flashErr != nil {
		fu, ok := flashErr.(*domain.FlashUploadError)
		if !ok {
			return nil, flashErr
		}
		return &PrepareOutcome{Result: PrepareFlashUpload, MetaID: fu.CanonicalMetaID}, nil
	}

	if info.MetaID != "" {
		existing, err := s.multipart.Get(ctx, info.MetaID)
		switch {
		case err == nil:
			if existing.Hash != info.Hash {
				return &PrepareOutcome{Result: PrepareConflictedId, MetaID: info.MetaID}, nil
			}
			return &PrepareOutcome{Result: PrepareUnfinished, MetaID: info.MetaID}, nil
		default:
			if _, ok := err.(*domain.MultipartNotFoundError); !ok {
				return nil, err
			}
		}
	}

	conflictID, err := s.findMultipartByHash(ctx, info.Hash, info.MetaID)
	if err != nil {
		return nil, err
	}
	if conflictID != "" {
		return nil, &domain.ConflictedHashError{ExistingID: conflictID, Hash: info.Hash}
	}

	metaID := info.MetaID
	if metaID == "" {
		metaID = uuid.New().String()
	}
	if err := s.CreateMultipart(ctx, metaID, info.Hash, info.Algorithm, info.PartCount); err != nil {
		return nil, err
	}
	return &PrepareOutcome{Result: PrepareNormal, MetaID: metaID}, nil
}

// findMultipartByHash scans every in-flight multipart registration for
// one already declaring hash under a meta id other than excludeID. The
// multipart store is leased-KV keyed by meta id only, so this is a
// linear scan rather than an indexed lookup — acceptable given the
// store's bounded, short-lived (lease-expiring) population.
func (s *Service) findMultipartByHash(ctx context.Context, hash, excludeID string) (string, error) {
	if hash == "" {
		return "", nil
	}
	ids, err := s.multipart.ScanIDs(ctx)
	if err != nil {
		return "", err
	}
	for _, id := range ids {
		if id == excludeID {
			continue
		}
		reg, err := s.multipart.Get(ctx, id)
		if err != nil {
			if _, ok := err.(*domain.MultipartNotFoundError); ok {
				continue
			}
			return "", err
		}
		if reg.Hash == hash {
			return id, nil
		}
	}
	return "", nil
}
