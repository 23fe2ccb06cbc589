// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package server

import (
	"context"
	"fmt"

	"github.com/amd-aig/workflow-engine/pkg/config"
	"github.com/amd-aig/workflow-engine/pkg/errors"
	"github.com/amd-aig/workflow-engine/pkg/router"
	"github.com/gin-gonic/gin"
)

func InitServer(ctx context.Context) error {
	return InitServerWithPreInitFunc(ctx, nil)
}

// InitServerWithPreInitFunc brings up the gin engine and its health/metrics
// sidecar. preInit runs after config load and before routes are registered,
// letting callers wire their own domain routes via router.RegisterGroup.
func InitServerWithPreInitFunc(ctx context.Context, preInit func(ctx context.Context, cfg *config.Config) error) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if preInit != nil {
		err := preInit(ctx, cfg)
		if err != nil {
			return errors.NewError().WithCode(errors.CodeInitializeError).WithMessage("PreInit Error").WithError(err)
		}
	}

	ginEngine := gin.New()
	ginEngine.Use(gin.Recovery())
	err = router.InitRouter(ginEngine, cfg)
	if err != nil {
		return err
	}

	InitHealthServer(cfg.HttpPort + 1)

	err = ginEngine.Run(fmt.Sprintf(":%d", cfg.HttpPort))
	if err != nil {
		return err
	}
	return nil
}
