// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// LeasedKVRepository is a generic TTL-bound key/value store used for the
// move, multipart, and text repositories: rows that only need to
// survive long enough to complete an in-flight file transfer, not
// permanent transactional history. Keys are namespaced "<prefix>:<id>" so
// ScanIDs can glob-match with SCAN MATCH "<prefix>:*" without touching
// other repositories' keys.
type LeasedKVRepository struct {
	client *redis.Client
	prefix string
	ttl    int64 // seconds
}

// NewLeasedKVRepository builds a LeasedKVRepository namespaced by prefix,
// with entries expiring after ttlSeconds unless refreshed via Touch.
func NewLeasedKVRepository(client *redis.Client, prefix string, ttlSeconds int64) *LeasedKVRepository {
	return &LeasedKVRepository{client: client, prefix: prefix, ttl: ttlSeconds}
}

func (r *LeasedKVRepository) key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

// Put serializes v as JSON and stores it under id with the repository's
// configured TTL, via SET key value EX ttl.
func (r *LeasedKVRepository) Put(ctx context.Context, id string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(id), b, time.Duration(r.ttl)*time.Second).Err()
}

// Get loads and unmarshals the value stored under id into v. It returns
// ErrNotFound if the key is absent or its lease has expired.
func (r *LeasedKVRepository) Get(ctx context.Context, id string, v interface{}) error {
	b, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return err
	}
	return json.Unmarshal(b, v)
}

// Touch resets id's TTL to the repository's configured lease, extending a
// registration that is still actively receiving parts.
func (r *LeasedKVRepository) Touch(ctx context.Context, id string) error {
	ok, err := r.client.Expire(ctx, r.key(id), time.Duration(r.ttl)*time.Second).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// Delete removes id's entry immediately, used once a move/multipart
// registration resolves (success or flash-upload short circuit).
func (r *LeasedKVRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}

// ScanIDs returns every id currently stored under this repository's
// prefix, via SCAN MATCH "<prefix>:*" — used by MoveRepository.ListByMeta,
// the multipart lookup in filemove's prepare step, and
// HeartbeatStore.ListAlive.
func (r *LeasedKVRepository) ScanIDs(ctx context.Context) ([]string, error) {
	var ids []string
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		ids = append(ids, key[len(r.prefix)+1:])
	}
	return ids, iter.Err()
}
