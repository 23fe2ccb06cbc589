// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/amd-aig/workflow-engine/internal/wiring"
)

// RegisterRoutes builds every handler over deps and registers its routes
// on group, matching pkg/router's GroupRegister signature so it can be
// passed straight to router.RegisterGroup.
//
// Downloading a snapshot or moved file's bytes back out over HTTP
// (including Range-based partial reads) is not wired here: internal/filemove.Service
// exposes no retrieve/download method, only Prepare/CompletePart/
// RegisterMove's write path, so that surface is left as a documented gap
// rather than built against a service method that doesn't exist yet.
func RegisterRoutes(group *gin.RouterGroup, deps *wiring.Dependencies) error {
	fileMove := NewFileMoveHandler(deps.FileMove)
	workflows := NewWorkflowHandler(deps.Workflows, deps.Nodes, deps.Tasks)

	group.POST("/files/prepare", fileMove.Prepare)
	group.POST("/files/parts", fileMove.CompletePart)
	group.POST("/files/moves", fileMove.RegisterMove)

	group.GET("/workflows/:id", workflows.GetWorkflow)
	group.GET("/workflows/:id/nodes", workflows.ListNodes)
	group.GET("/nodes/:id", workflows.GetNode)
	group.GET("/nodes/:id/tasks", workflows.ListTasks)

	return nil
}
