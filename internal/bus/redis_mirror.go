// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/pkg/aitopics"
	"github.com/redis/go-redis/v9"
)

// RedisMirror publishes every dispatched ChangeMsg onto a Redis Pub/Sub
// channel keyed by topic, so other engine replicas sharing the same
// backing store observe the same transitions as this process.
type RedisMirror struct {
	client *redis.Client
	prefix string
}

// NewRedisMirror builds a Mirror over an existing Redis client. Channels
// are named "<prefix>:<topic>".
func NewRedisMirror(client *redis.Client, prefix string) *RedisMirror {
	if prefix == "" {
		prefix = "status-bus"
	}
	return &RedisMirror{client: client, prefix: prefix}
}

// Publish implements Mirror.
func (m *RedisMirror) Publish(ctx context.Context, msg domain.ChangeMsg) error {
	topic := aitopics.TopicForScope(msg.Scope)
	if topic == "" {
		return fmt.Errorf("redis mirror: unknown scope %q", msg.Scope)
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	channel := fmt.Sprintf("%s:%s", m.prefix, topic)
	return m.client.Publish(ctx, channel, payload).Err()
}

// Subscribe relays ChangeMsg values observed on the mirror's Redis channel
// for topic into the local Bus, letting remote replicas' transitions
// trigger local handlers.
func (m *RedisMirror) Subscribe(ctx context.Context, topic string, b *Bus) error {
	channel := fmt.Sprintf("%s:%s", m.prefix, topic)
	sub := m.client.Subscribe(ctx, channel)
	ch := sub.Channel()

	go func() {
		defer sub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case rmsg, ok := <-ch:
				if !ok {
					return
				}
				var msg domain.ChangeMsg
				if err := json.Unmarshal([]byte(rmsg.Payload), &msg); err != nil {
					continue
				}
				b.Publish(msg)
			}
		}
	}()
	return nil
}
