// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package usecase

import (
	"context"
	"strings"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// GetCmd renders the "<name> <args...>" preview string for node's
// compiled ExecuteUsecase task, for the UI preview path. It reports false
// when no command could be compiled (package fetch failure, or a usecase
// that declares no ExecuteUsecase step).
func (c *Compiler) GetCmd(ctx context.Context, node *domain.NodeInstance) (string, bool) {
	bodies, err := c.Compile(ctx, node)
	if err != nil {
		return "", false
	}
	for _, b := range bodies {
		if b.Type == domain.TaskExecuteUsecase && b.ExecuteUsecase != nil {
			parts := append([]string{b.ExecuteUsecase.Name}, b.ExecuteUsecase.Arguments...)
			return strings.Join(parts, " "), true
		}
	}
	return "", false
}
