// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package bootstrap assembles the engine process: tracing, the wired
// dependency graph, and the HTTP routes, then hands control to
// pkg/server's gin engine. Mirrors the teacher's own Bootstrap(ctx)
// entry point shape.
package bootstrap

import (
	"context"

	"github.com/amd-aig/workflow-engine/internal/httpapi"
	"github.com/amd-aig/workflow-engine/internal/wiring"
	"github.com/amd-aig/workflow-engine/pkg/config"
	"github.com/amd-aig/workflow-engine/pkg/logger/log"
	"github.com/amd-aig/workflow-engine/pkg/router"
	"github.com/amd-aig/workflow-engine/pkg/server"
	"github.com/amd-aig/workflow-engine/pkg/trace"
	"github.com/gin-gonic/gin"
)

// Bootstrap brings up the workflow engine and blocks serving HTTP until
// ctx is canceled or the server fails.
func Bootstrap(ctx context.Context) error {
	if err := trace.InitTracer("workflow-engine"); err != nil {
		log.Errorf("failed to init tracer: %v", err)
	} else {
		log.Info("tracer initialized")
	}
	go func() {
		<-ctx.Done()
		if err := trace.CloseTracer(); err != nil {
			log.Errorf("failed to close tracer: %v", err)
		}
	}()

	return server.InitServerWithPreInitFunc(ctx, func(ctx context.Context, cfg *config.Config) error {
		deps, err := wiring.Build(ctx, cfg)
		if err != nil {
			return err
		}

		router.RegisterGroup(func(group *gin.RouterGroup) error {
			return httpapi.RegisterRoutes(group, deps)
		})
		return nil
	})
}
