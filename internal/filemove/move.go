// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package filemove

import (
	"context"
	"time"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// RegisterMove persists a declared move intent. The physical transfer
// happens later, in DoRegisteredMoves, once the content behind MetaID
// (multipart-assembled or flash-uploaded) is actually available.
func (s *Service) RegisterMove(ctx context.Context, reg *domain.MoveRegistration) error {
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now()
	}
	return s.move.Put(ctx, reg)
}

// DoRegisteredMoves dispatches every move registration declared against
// metaID toward its destination. The same content hash may satisfy
// several registrations (deduped by hash) with a single physical
// assembly already sitting in the blob store under ContentKey(metaID).
func (s *Service) DoRegisteredMoves(ctx context.Context, metaID string) error {
	moves, err := s.move.ListByMeta(ctx, metaID)
	if err != nil {
		return err
	}

	for _, m := range moves {
		if m.IsUploadFailed {
			continue
		}
		if err := s.dispatchDestination(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) dispatchDestination(ctx context.Context, m *domain.MoveRegistration) error {
	switch m.Destination.Kind {
	case domain.DestinationStorageServer:
		return s.dispatcher.Dispatch(ctx, m.ID, m.UserID)
	case domain.DestinationSnapshot:
		return s.commitSnapshot(ctx, m)
	default:
		return nil
	}
}

// commitSnapshot records the finished content as a Snapshot row and
// removes the now-redundant multipart registration (if any remains —
// flash-uploaded content never created one).
func (s *Service) commitSnapshot(ctx context.Context, m *domain.MoveRegistration) error {
	snap := &domain.Snapshot{
		ID:        m.ID,
		MetaID:    m.MetaID,
		NodeID:    m.Destination.NodeID,
		FileID:    m.Destination.FileID,
		Timestamp: m.Destination.Timestamp,
		FileName:  m.FileName,
		Size:      m.Size,
		Hash:      m.Hash,
		Algorithm: m.HashAlgorithm,
		UserID:    m.UserID,
	}
	if snap.Timestamp.IsZero() {
		snap.Timestamp = time.Now()
	}
	if err := s.snapshots.Create(ctx, snap); err != nil {
		return err
	}
	return s.multipart.Delete(ctx, m.MetaID)
}
