// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amd-aig/workflow-engine/internal/repository"
)

// WorkflowHandler exposes read-only status lookups across the
// workflow/node/task hierarchy, the minimum surface a caller needs to
// poll progress after submitting work through the Status Bus.
type WorkflowHandler struct {
	workflows repository.WorkflowRepository
	nodes     repository.NodeRepository
	tasks     repository.TaskRepository
}

// NewWorkflowHandler builds a WorkflowHandler over the three repositories.
func NewWorkflowHandler(workflows repository.WorkflowRepository, nodes repository.NodeRepository, tasks repository.TaskRepository) *WorkflowHandler {
	return &WorkflowHandler{workflows: workflows, nodes: nodes, tasks: tasks}
}

// GetWorkflow handles GET /workflows/:id.
func (h *WorkflowHandler) GetWorkflow(c *gin.Context) {
	wf, err := h.workflows.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, wf)
}

// ListNodes handles GET /workflows/:id/nodes.
func (h *WorkflowHandler) ListNodes(c *gin.Context) {
	nodes, err := h.nodes.ListByFlow(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, nodes)
}

// GetNode handles GET /nodes/:id.
func (h *WorkflowHandler) GetNode(c *gin.Context) {
	node, err := h.nodes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, node)
}

// ListTasks handles GET /nodes/:id/tasks.
func (h *WorkflowHandler) ListTasks(c *gin.Context) {
	tasks, err := h.tasks.ListByNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeLookupError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func writeLookupError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "details": err.Error()})
}
