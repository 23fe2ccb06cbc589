// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package filemove

import (
	"context"
	"fmt"
	"time"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/pkg/snapshot"
)

// CreateMultipart initializes a chunk-completion bitmask for a declared
// upload of count parts, keyed by the meta id the caller pre-allocated.
func (s *Service) CreateMultipart(ctx context.Context, metaID, hashValue, algo string, count int) error {
	reg := &domain.MultipartRegistration{
		MetaID:    metaID,
		Hash:      hashValue,
		Algorithm: algo,
		Parts:     make([]bool, count),
	}
	return s.multipart.Put(ctx, reg)
}

// CompletePart persists a shard's bytes and flips its completion bit. It
// returns the indices still missing; once none remain it assembles the
// full content, verifies the declared hash, and dispatches every move
// registration waiting on this meta id.
func (s *Service) CompletePart(ctx context.Context, metaID string, nth int, content []byte) ([]int, error) {
	reg, err := s.multipart.Get(ctx, metaID)
	if err != nil {
		return nil, err
	}
	if nth < 0 || nth >= len(reg.Parts) {
		return nil, fmt.Errorf("filemove: part index %d out of range for %d parts", nth, len(reg.Parts))
	}

	if err := s.blobs.Save(ctx, shardKey(metaID), []snapshot.FileEntry{
		{RelPath: partRelPath(nth), Content: content, Size: int64(len(content))},
	}); err != nil {
		return nil, err
	}

	reg.Parts[nth] = true
	if err := s.multipart.Put(ctx, reg); err != nil {
		return nil, err
	}

	var missing []int
	for i, got := range reg.Parts {
		if !got {
			missing = append(missing, i)
		}
	}
	if len(missing) > 0 {
		return missing, nil
	}

	return nil, s.assemble(ctx, reg)
}

// assemble concatenates every shard in order, verifies the reassembled
// content's hash against the one declared at registration time, and (on
// success) dispatches the registered moves for this meta id. A hash
// mismatch marks every pending move registration for this meta id as
// failed — per the invariant that failed content never reaches a
// destination — and is reported as DifferentHashesError.
func (s *Service) assemble(ctx context.Context, reg *domain.MultipartRegistration) error {
	shards, err := s.blobs.Load(ctx, shardKey(reg.MetaID))
	if err != nil {
		return err
	}

	byPart := make(map[string][]byte, len(shards))
	for _, f := range shards {
		byPart[f.RelPath] = f.Content
	}

	var full []byte
	for i := range reg.Parts {
		chunk, ok := byPart[partRelPath(i)]
		if !ok {
			return fmt.Errorf("filemove: shard %d missing from blob store for meta %q", i, reg.MetaID)
		}
		full = append(full, chunk...)
	}

	hasher, err := newHasher(reg.Algorithm)
	if err != nil {
		return err
	}
	hasher.Write(full)
	actual := fmt.Sprintf("%x", hasher.Sum(nil))

	if actual != reg.Hash {
		if err := s.failPendingMoves(ctx, reg.MetaID, fmt.Sprintf("reassembled hash %q does not match declared hash %q", actual, reg.Hash)); err != nil {
			return err
		}
		return &domain.DifferentHashesError{Declared: reg.Hash, Actual: actual}
	}

	if err := s.blobs.Save(ctx, ContentKey(reg.MetaID), []snapshot.FileEntry{
		{RelPath: "blob", Content: full, Size: int64(len(full))},
	}); err != nil {
		return err
	}

	if _, err := s.fileMetas.EnsureCreated(ctx, &domain.FileMeta{
		ID:          reg.MetaID,
		Hash:        reg.Hash,
		Algorithm:   reg.Algorithm,
		Size:        int64(len(full)),
		FirstSeenAt: time.Now(),
	}); err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, shardKey(reg.MetaID)); err != nil {
		return err
	}
	if err := s.multipart.Delete(ctx, reg.MetaID); err != nil {
		return err
	}

	return s.DoRegisteredMoves(ctx, reg.MetaID)
}

func (s *Service) failPendingMoves(ctx context.Context, metaID, reason string) error {
	moves, err := s.move.ListByMeta(ctx, metaID)
	if err != nil {
		return err
	}
	for _, m := range moves {
		m.IsUploadFailed = true
		m.FailedReason = reason
		if err := s.move.Put(ctx, m); err != nil {
			return err
		}
	}
	return nil
}
