// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/amd-aig/workflow-engine/pkg/aiclient"
	"github.com/amd-aig/workflow-engine/pkg/aitaskqueue"
	"github.com/amd-aig/workflow-engine/pkg/aitopics"
)

// Dispatcher sends a task's StartTaskBody to its assigned agent queue
// topic, retrying transient failures with jittered exponential back-off
// (spec §5's 5-attempt send) and routing every attempt through a
// per-topic circuit breaker so a wedged queue fails fast instead of
// burning every task's retry budget against it.
type Dispatcher struct {
	queue aitaskqueue.Queue

	retrier *aiclient.Retrier

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewDispatcher builds a Dispatcher over queue, with a fixed 5-attempt
// jittered back-off policy.
func NewDispatcher(queue aitaskqueue.Queue) *Dispatcher {
	return &Dispatcher{
		queue: queue,
		retrier: aiclient.NewRetrier(&aiclient.RetryConfig{
			MaxAttempts:  5,
			InitialDelay: 200 * time.Millisecond,
			MaxDelay:     10 * time.Second,
			Multiplier:   2.0,
			Jitter:       0.2,
		}),
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// breakerFor returns topic's circuit breaker, creating it on first use.
func (d *Dispatcher) breakerFor(topic string) *gobreaker.CircuitBreaker {
	d.mu.Lock()
	defer d.mu.Unlock()
	if cb, ok := d.breakers[topic]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        topic,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	d.breakers[topic] = cb
	return cb
}

// Dispatch publishes body (a StartTaskBody for a fresh send, or a
// TaskControlBody for a Cancel/Pause/Resume signal) onto topic's queue
// under reqCtx, returning the assigned queue task id.
func (d *Dispatcher) Dispatch(ctx context.Context, topic string, body interface{}, reqCtx aitopics.RequestContext) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("scheduler: marshaling task body: %w", err)
	}

	cb := d.breakerFor(topic)
	var taskID string
	retryErr := d.retrier.Do(ctx, func(ctx context.Context, attempt int) error {
		result, cbErr := cb.Execute(func() (interface{}, error) {
			return d.queue.Publish(ctx, topic, payload, reqCtx)
		})
		if cbErr != nil {
			return cbErr
		}
		taskID, _ = result.(string)
		return nil
	})
	if retryErr != nil {
		return "", fmt.Errorf("scheduler: dispatching to queue %q: %w", topic, retryErr)
	}
	return taskID, nil
}
