// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package batch

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"fmt"
	"hash"
	"time"

	"github.com/google/uuid"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/filemove"
	"github.com/amd-aig/workflow-engine/internal/repository"
	blobstore "github.com/amd-aig/workflow-engine/pkg/snapshot"
)

// BlobFileReader implements FileContentReader directly against the blob
// store, keyed the same way internal/filemove and internal/snapshot
// address assembled content: by ContentKey(metaID).
type BlobFileReader struct {
	blobs blobstore.Store
}

// NewBlobFileReader builds a BlobFileReader over blobs.
func NewBlobFileReader(blobs blobstore.Store) *BlobFileReader {
	return &BlobFileReader{blobs: blobs}
}

func (r *BlobFileReader) ReadFile(ctx context.Context, metaID string) ([]byte, error) {
	entries, err := r.blobs.Load(ctx, filemove.ContentKey(metaID))
	if err != nil {
		return nil, fmt.Errorf("batch: reading content for meta %q: %w", metaID, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("batch: no content found for meta %q", metaID)
	}
	return entries[0].Content, nil
}

// TextRepoStore implements TextStore over the leased Text repository,
// generating a fresh key per MatchRegex's "new text entries inserted
// with freshly-generated keys" rule.
type TextRepoStore struct {
	texts *repository.TextRepository
}

// NewTextRepoStore builds a TextRepoStore over texts.
func NewTextRepoStore(texts *repository.TextRepository) *TextRepoStore {
	return &TextRepoStore{texts: texts}
}

func (s *TextRepoStore) Put(ctx context.Context, text string) (string, error) {
	key := uuid.New().String()
	if err := s.texts.Put(ctx, key, text); err != nil {
		return "", fmt.Errorf("batch: storing generated text: %w", err)
	}
	return key, nil
}

// IngestFileStore implements FileStore by hashing freshly-generated
// content, deduplicating it against FileMeta the same way the move
// pipeline's assemble step does, and saving it to the blob store under
// its own ContentKey, per MatchRegex's "new files uploaded via the move
// pipeline with content-hashed meta-ids" rule.
type IngestFileStore struct {
	fileMetas repository.FileMetaRepository
	blobs     blobstore.Store
	algorithm string
}

// NewIngestFileStore builds an IngestFileStore over fileMetas/blobs,
// hashing with algorithm (sha256 when empty, matching filemove's own
// default).
func NewIngestFileStore(fileMetas repository.FileMetaRepository, blobs blobstore.Store, algorithm string) *IngestFileStore {
	return &IngestFileStore{fileMetas: fileMetas, blobs: blobs, algorithm: algorithm}
}

func (s *IngestFileStore) PutFile(ctx context.Context, name string, content []byte) (domain.FileInput, error) {
	hash, err := hashContent(s.algorithm, content)
	if err != nil {
		return domain.FileInput{}, err
	}

	existing, err := s.fileMetas.GetByHash(ctx, hash)
	if err == nil {
		return domain.FileInput{MetaID: existing.ID, Name: name, Hash: existing.Hash, Size: existing.Size}, nil
	}
	if err != repository.ErrNotFound {
		return domain.FileInput{}, fmt.Errorf("batch: looking up content hash %q: %w", hash, err)
	}

	metaID := uuid.New().String()
	if err := s.blobs.Save(ctx, filemove.ContentKey(metaID), []blobstore.FileEntry{
		{RelPath: "blob", Content: content, Size: int64(len(content))},
	}); err != nil {
		return domain.FileInput{}, fmt.Errorf("batch: saving generated file content: %w", err)
	}

	meta, err := s.fileMetas.EnsureCreated(ctx, &domain.FileMeta{
		ID:          metaID,
		Hash:        hash,
		Algorithm:   s.algorithm,
		Size:        int64(len(content)),
		FirstSeenAt: time.Now(),
	})
	if err != nil {
		return domain.FileInput{}, fmt.Errorf("batch: registering generated file meta: %w", err)
	}
	return domain.FileInput{MetaID: meta.ID, Name: name, Hash: meta.Hash, Size: meta.Size}, nil
}

// NodeSiblingOutputs implements SiblingOutputs over the node repository
// and file-meta repository: a batch parent's sub-nodes (in creation
// order, per ListByBatchParent) each contribute their first populated
// output slot's first file as this batch's designated per-sibling Input.
type NodeSiblingOutputs struct {
	nodes     repository.NodeRepository
	fileMetas repository.FileMetaRepository
}

// NewNodeSiblingOutputs builds a NodeSiblingOutputs over nodes/fileMetas.
func NewNodeSiblingOutputs(nodes repository.NodeRepository, fileMetas repository.FileMetaRepository) *NodeSiblingOutputs {
	return &NodeSiblingOutputs{nodes: nodes, fileMetas: fileMetas}
}

func (o *NodeSiblingOutputs) ListOutputs(ctx context.Context, batchParentID string) ([]Input, error) {
	siblings, err := o.nodes.ListByBatchParent(ctx, batchParentID)
	if err != nil {
		return nil, fmt.Errorf("batch: listing sub-nodes of batch parent %q: %w", batchParentID, err)
	}

	out := make([]Input, 0, len(siblings))
	for _, sib := range siblings {
		fileID, err := designatedOutputFileID(sib)
		if err != nil {
			return nil, fmt.Errorf("batch: sub-node %q: %w", sib.ID, err)
		}
		meta, err := o.fileMetas.Get(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("batch: resolving output file %q for sub-node %q: %w", fileID, sib.ID, err)
		}
		out = append(out, Input{Kind: InputFile, File: domain.FileInput{
			MetaID: meta.ID,
			Name:   meta.ID,
			Hash:   meta.Hash,
			Size:   meta.Size,
		}})
	}
	return out, nil
}

// designatedOutputFileID picks the first file id of the first output
// slot that has one, by slot declaration order — a batch-parent node is
// expected to declare exactly one file-producing output slot per sibling
// when used as a FromBatchOutputs source.
func designatedOutputFileID(node *domain.NodeInstance) (string, error) {
	for _, slot := range node.OutputSlots {
		if len(slot.FileIDs) > 0 {
			return slot.FileIDs[0], nil
		}
	}
	return "", fmt.Errorf("no populated output slot")
}

// hashContent mirrors filemove's own newHasher algorithm set, so
// generated-content dedup lands in the same FileMeta rows a multipart
// upload of the same bytes would.
func hashContent(algo string, content []byte) (string, error) {
	var h hash.Hash
	switch algo {
	case "", "sha256":
		h = sha256.New()
	case "sha1":
		h = sha1.New()
	case "md5":
		h = md5.New()
	default:
		return "", fmt.Errorf("batch: unsupported hash algorithm %q", algo)
	}
	h.Write(content)
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}
