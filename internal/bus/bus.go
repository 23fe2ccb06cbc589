// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package bus implements the Status Bus (C1): a typed pub/sub dispatcher
// of domain.ChangeMsg values, sharded by target aggregate id so that
// messages about the same Flow/Node/Task are always delivered in order
// while unrelated aggregates fan out across shards concurrently.
package bus

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/amd-aig/workflow-engine/internal/domain"
	"github.com/amd-aig/workflow-engine/pkg/aitopics"
	"github.com/amd-aig/workflow-engine/pkg/logger/log"
)

// Handler processes a single ChangeMsg. A non-nil error is logged but
// never blocks delivery to other handlers.
type Handler func(ctx context.Context, msg domain.ChangeMsg) error

// Mirror forwards a ChangeMsg to an out-of-process transport (e.g. Redis
// Pub/Sub) after local dispatch, so other engine replicas observe the same
// transition. A nil Mirror makes the Bus purely in-process.
type Mirror interface {
	Publish(ctx context.Context, msg domain.ChangeMsg) error
}

const defaultShardCount = 32
const defaultQueueDepth = 256

// Bus is the in-process Status Bus. Each shard owns its own goroutine and
// buffered channel, so a slow subscriber on one shard never head-of-line
// blocks delivery for aggregates hashed to a different shard.
type Bus struct {
	shards []*shard
	mirror Mirror

	mu          sync.RWMutex
	subscribers map[string][]Handler // topic -> handlers
}

type shard struct {
	ch chan domain.ChangeMsg
}

// New builds a Bus with the default shard count and per-shard queue depth.
// Call Start before publishing.
func New(mirror Mirror) *Bus {
	b := &Bus{
		shards:      make([]*shard, defaultShardCount),
		mirror:      mirror,
		subscribers: make(map[string][]Handler),
	}
	for i := range b.shards {
		b.shards[i] = &shard{ch: make(chan domain.ChangeMsg, defaultQueueDepth)}
	}
	return b
}

// Start launches one dispatch goroutine per shard; it returns immediately.
// Cancelling ctx stops dispatch; messages still queued in a shard at that
// point are not delivered.
func (b *Bus) Start(ctx context.Context) {
	for _, sh := range b.shards {
		go b.runShard(ctx, sh)
	}
}

func (b *Bus) runShard(ctx context.Context, sh *shard) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-sh.ch:
			b.dispatch(ctx, msg)
		}
	}
}

func (b *Bus) dispatch(ctx context.Context, msg domain.ChangeMsg) {
	topic := aitopics.TopicForScope(msg.Scope)
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(ctx, msg); err != nil {
			log.Errorf("bus: handler for topic %s failed for id %s: %v", topic, msg.ID, err)
		}
	}

	if b.mirror != nil {
		if err := b.mirror.Publish(ctx, msg); err != nil {
			log.Errorf("bus: mirror publish failed for id %s: %v", msg.ID, err)
		}
	}
}

// Subscribe registers a handler for every ChangeMsg dispatched on topic.
// Handlers run on the shard goroutine owning the message's target id, in
// registration order.
func (b *Bus) Subscribe(topic string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[topic] = append(b.subscribers[topic], h)
}

// Publish enqueues msg onto the shard owned by msg.ID. It never blocks on
// subscriber processing, only on that shard's queue having free capacity.
func (b *Bus) Publish(msg domain.ChangeMsg) {
	b.shards[shardFor(msg.ID, len(b.shards))].ch <- msg
}

func shardFor(id string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return int(h.Sum32()) % n
}
