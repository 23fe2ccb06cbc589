// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package batch

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/internal/filemove"
	"github.com/amd-aig/workflow-engine/internal/repository"
	blobstore "github.com/amd-aig/workflow-engine/pkg/snapshot"
)

func newTestRedisClient(t *testing.T) *redis.Client {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

// stubBlobStore is an in-memory blobstore.Store.
type stubBlobStore struct {
	byKey map[string][]blobstore.FileEntry
}

func newStubBlobStore() *stubBlobStore {
	return &stubBlobStore{byKey: map[string][]blobstore.FileEntry{}}
}

func (s *stubBlobStore) Type() blobstore.StoreType { return "stub" }

func (s *stubBlobStore) Save(_ context.Context, storageKey string, files []blobstore.FileEntry) error {
	s.byKey[storageKey] = files
	return nil
}

func (s *stubBlobStore) Load(_ context.Context, storageKey string) ([]blobstore.FileEntry, error) {
	return s.byKey[storageKey], nil
}

func (s *stubBlobStore) LoadFile(_ context.Context, storageKey, relPath string) ([]byte, error) {
	for _, f := range s.byKey[storageKey] {
		if f.RelPath == relPath {
			return f.Content, nil
		}
	}
	return nil, assert.AnError
}

func (s *stubBlobStore) Delete(_ context.Context, storageKey string) error {
	delete(s.byKey, storageKey)
	return nil
}

func (s *stubBlobStore) Exists(_ context.Context, storageKey string) (bool, error) {
	_, ok := s.byKey[storageKey]
	return ok, nil
}

// stubFileMetaRepo is an in-memory repository.FileMetaRepository.
type stubFileMetaRepo struct {
	byID   map[string]*domain.FileMeta
	byHash map[string]*domain.FileMeta
}

func newStubFileMetaRepo() *stubFileMetaRepo {
	return &stubFileMetaRepo{byID: map[string]*domain.FileMeta{}, byHash: map[string]*domain.FileMeta{}}
}

func (r *stubFileMetaRepo) Create(_ context.Context, m *domain.FileMeta) error {
	r.byID[m.ID] = m
	r.byHash[m.Hash] = m
	return nil
}

func (r *stubFileMetaRepo) Get(_ context.Context, id string) (*domain.FileMeta, error) {
	m, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (r *stubFileMetaRepo) GetByHash(_ context.Context, hash string) (*domain.FileMeta, error) {
	m, ok := r.byHash[hash]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (r *stubFileMetaRepo) EnsureCreated(_ context.Context, m *domain.FileMeta) (*domain.FileMeta, error) {
	if existing, ok := r.byHash[m.Hash]; ok {
		return existing, nil
	}
	r.byID[m.ID] = m
	r.byHash[m.Hash] = m
	return m, nil
}

// stubNodeRepoForSiblings is a minimal repository.NodeRepository stub
// exercising only ListByBatchParent, the sole method NodeSiblingOutputs
// calls.
type stubNodeRepoForSiblings struct {
	byParent map[string][]*domain.NodeInstance
}

func (r *stubNodeRepoForSiblings) Create(context.Context, *domain.NodeInstance) error { return nil }
func (r *stubNodeRepoForSiblings) CreateBatch(context.Context, []*domain.NodeInstance) error {
	return nil
}
func (r *stubNodeRepoForSiblings) Get(context.Context, string) (*domain.NodeInstance, error) {
	return nil, repository.ErrNotFound
}
func (r *stubNodeRepoForSiblings) Update(context.Context, *domain.NodeInstance) error { return nil }
func (r *stubNodeRepoForSiblings) UpdateStatusWithLock(context.Context, string, domain.NodeStatus, domain.NodeStatus) (bool, error) {
	return false, nil
}
func (r *stubNodeRepoForSiblings) ListByFlow(context.Context, string) ([]*domain.NodeInstance, error) {
	return nil, nil
}
func (r *stubNodeRepoForSiblings) ListByBatchParent(_ context.Context, batchParentID string) ([]*domain.NodeInstance, error) {
	return r.byParent[batchParentID], nil
}
func (r *stubNodeRepoForSiblings) ListByStatus(context.Context, domain.NodeStatus) ([]*domain.NodeInstance, error) {
	return nil, nil
}

func TestBlobFileReader_ReadFile(t *testing.T) {
	blobs := newStubBlobStore()
	require.NoError(t, blobs.Save(context.Background(), filemove.ContentKey("meta-1"), []blobstore.FileEntry{
		{RelPath: "blob", Content: []byte("hello")},
	}))

	reader := NewBlobFileReader(blobs)
	content, err := reader.ReadFile(context.Background(), "meta-1")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), content)
}

func TestBlobFileReader_ReadFile_MissingMeta(t *testing.T) {
	reader := NewBlobFileReader(newStubBlobStore())
	_, err := reader.ReadFile(context.Background(), "absent")
	assert.Error(t, err)
}

func TestTextRepoStore_Put_GeneratesFreshKeys(t *testing.T) {
	texts := repository.NewTextRepository(newTestRedisClient(t))
	store := NewTextRepoStore(texts)

	k1, err := store.Put(context.Background(), "hello")
	require.NoError(t, err)
	k2, err := store.Put(context.Background(), "world")
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	got, err := texts.Get(context.Background(), k1)
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestIngestFileStore_PutFile_NewContent(t *testing.T) {
	fileMetas := newStubFileMetaRepo()
	blobs := newStubBlobStore()
	store := NewIngestFileStore(fileMetas, blobs, "")

	in, err := store.PutFile(context.Background(), "out.txt", []byte("generated content"))
	require.NoError(t, err)
	assert.Equal(t, "out.txt", in.Name)
	assert.NotEmpty(t, in.MetaID)
	assert.NotEmpty(t, in.Hash)

	meta, err := fileMetas.Get(context.Background(), in.MetaID)
	require.NoError(t, err)
	assert.False(t, meta.FirstSeenAt.IsZero())

	saved, err := blobs.Load(context.Background(), filemove.ContentKey(in.MetaID))
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, []byte("generated content"), saved[0].Content)
}

func TestIngestFileStore_PutFile_DedupesByHash(t *testing.T) {
	fileMetas := newStubFileMetaRepo()
	blobs := newStubBlobStore()
	store := NewIngestFileStore(fileMetas, blobs, "")

	first, err := store.PutFile(context.Background(), "a.txt", []byte("same bytes"))
	require.NoError(t, err)
	second, err := store.PutFile(context.Background(), "b.txt", []byte("same bytes"))
	require.NoError(t, err)

	assert.Equal(t, first.MetaID, second.MetaID)
	assert.Equal(t, "b.txt", second.Name)
}

func TestIngestFileStore_PutFile_UnsupportedAlgorithm(t *testing.T) {
	store := NewIngestFileStore(newStubFileMetaRepo(), newStubBlobStore(), "crc32")
	_, err := store.PutFile(context.Background(), "a.txt", []byte("x"))
	assert.Error(t, err)
}

func TestNodeSiblingOutputs_ListOutputs(t *testing.T) {
	fileMetas := newStubFileMetaRepo()
	require.NoError(t, fileMetas.Create(context.Background(), &domain.FileMeta{ID: "f1", Hash: "h1", Size: 10}))
	require.NoError(t, fileMetas.Create(context.Background(), &domain.FileMeta{ID: "f2", Hash: "h2", Size: 20}))

	nodes := &stubNodeRepoForSiblings{byParent: map[string][]*domain.NodeInstance{
		"parent-1": {
			{ID: "n1", OutputSlots: []domain.OutputSlot{{Descriptor: "out", FileIDs: []string{"f1"}}}},
			{ID: "n2", OutputSlots: []domain.OutputSlot{{Descriptor: "out", FileIDs: []string{"f2"}}}},
		},
	}}

	outputs := NewNodeSiblingOutputs(nodes, fileMetas)
	inputs, err := outputs.ListOutputs(context.Background(), "parent-1")
	require.NoError(t, err)
	require.Len(t, inputs, 2)
	assert.Equal(t, InputFile, inputs[0].Kind)
	assert.Equal(t, "f1", inputs[0].File.MetaID)
	assert.Equal(t, "f2", inputs[1].File.MetaID)
}

func TestNodeSiblingOutputs_ListOutputs_NoPopulatedSlot(t *testing.T) {
	nodes := &stubNodeRepoForSiblings{byParent: map[string][]*domain.NodeInstance{
		"parent-2": {{ID: "n1", OutputSlots: []domain.OutputSlot{{Descriptor: "out"}}}},
	}}

	outputs := NewNodeSiblingOutputs(nodes, newStubFileMetaRepo())
	_, err := outputs.ListOutputs(context.Background(), "parent-2")
	assert.Error(t, err)
}
