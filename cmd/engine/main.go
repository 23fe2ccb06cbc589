// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package main

import (
	"context"

	"github.com/amd-aig/workflow-engine/internal/bootstrap"
	"github.com/amd-aig/workflow-engine/pkg/logger/log"
)

func main() {
	if err := bootstrap.Bootstrap(context.Background()); err != nil {
		log.Fatalf("failed to bootstrap workflow engine: %v", err)
	}
}
