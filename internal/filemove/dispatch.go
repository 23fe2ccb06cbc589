// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package filemove

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// fileUploadIntent is the payload enqueued for the upload worker when a
// move registration dispatches its StorageServer destination.
type fileUploadIntent struct {
	MoveID string `json:"move_id"`
	UserID string `json:"user_id"`
}

const fileUploadQueueKey = "filemove:file-upload"

// RedisUploadDispatcher enqueues FileUpload intents onto a Redis list
// consumed by the out-of-process upload worker, mirroring the leased
// repositories' use of go-redis/v9 for lightweight queueing.
type RedisUploadDispatcher struct {
	client *redis.Client
}

// NewRedisUploadDispatcher builds a RedisUploadDispatcher over client.
func NewRedisUploadDispatcher(client *redis.Client) *RedisUploadDispatcher {
	return &RedisUploadDispatcher{client: client}
}

func (d *RedisUploadDispatcher) Dispatch(ctx context.Context, moveID, userID string) error {
	b, err := json.Marshal(fileUploadIntent{MoveID: moveID, UserID: userID})
	if err != nil {
		return err
	}
	return d.client.LPush(ctx, fileUploadQueueKey, b).Err()
}
