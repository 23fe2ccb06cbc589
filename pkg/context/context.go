// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package context layers a mutable, concurrency-safe key/value bag on top
// of a context.Context, used throughout the codebase to thread request-
// scoped values (trace spans, GORM query flags) without a growing chain
// of context.WithValue wrappers.
package context

import (
	"context"
	"sync"
)

type contextMapKey struct{}

// contextCopyIgnoreKey lists keys that ShallowCopyCtx must not carry into
// the copy, e.g. values scoped to a single request that should not leak
// into a detached background task derived from it.
var contextCopyIgnoreKey sync.Map

// WithObject stores key/value in ctx's context map, creating the map (and
// a derived context carrying it) on first use.
func WithObject(ctx context.Context, key, value interface{}) context.Context {
	m, ctx := findOrCreateContextMap(ctx)
	m.Store(key, value)
	return ctx
}

// WithoutObject removes key from ctx's context map, if present.
func WithoutObject(ctx context.Context, key interface{}) context.Context {
	if m, ok := findContextMap(ctx); ok {
		m.Delete(key)
	}
	return ctx
}

// GetValue looks up key in ctx's context map.
func GetValue(ctx context.Context, key interface{}) (interface{}, bool) {
	m, ok := findContextMap(ctx)
	if !ok {
		return nil, false
	}
	return m.Load(key)
}

// ShallowCopyCtx detaches the values carried by ctx into a fresh
// background context, skipping any key registered in contextCopyIgnoreKey.
// Useful for handing context-scoped values to a goroutine that must
// outlive the request that created them.
func ShallowCopyCtx(ctx context.Context) context.Context {
	out := context.Background()
	m, ok := findContextMap(ctx)
	if !ok {
		return out
	}
	outMap, out := findOrCreateContextMap(out)
	m.Range(func(key, value interface{}) bool {
		if _, ignored := contextCopyIgnoreKey.Load(key); ignored {
			return true
		}
		outMap.Store(key, value)
		return true
	})
	return out
}

func findContextMap(ctx context.Context) (*sync.Map, bool) {
	m, ok := ctx.Value(contextMapKey{}).(*sync.Map)
	return m, ok
}

func findOrCreateContextMap(ctx context.Context) (*sync.Map, context.Context) {
	if m, ok := findContextMap(ctx); ok {
		return m, ctx
	}
	m := &sync.Map{}
	return m, context.WithValue(ctx, contextMapKey{}, m)
}
