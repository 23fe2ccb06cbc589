// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

// Package usecase implements the usecase→task compiler: given a node's
// software/usecase version identifiers, it resolves the package's
// declarative UsecaseSpec/SoftwareSpec from the package registry and
// compiles an ordered list of agent subtasks (deploy, downloads, execute,
// collects, uploads).
package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/patrickmn/go-cache"

	"github.com/amd-aig/workflow-engine/internal/domain"
)

// PackageFetcher resolves a (software_version_id, usecase_version_id)
// pair to its package descriptor. Implemented by RegistryClient; tests
// substitute a stub.
type PackageFetcher interface {
	FetchPackage(ctx context.Context, softwareVersionID, usecaseVersionID string) (*domain.PackageDescriptor, error)
}

const packageCacheTTL = 30 * time.Minute

// RegistryClient fetches package descriptors from the external
// software-package registry over HTTP and caches them in-process: a
// published usecase/software spec never changes, so a cache entry is
// valid forever within the process lifetime.
type RegistryClient struct {
	http  *resty.Client
	cache *cache.Cache
}

// NewRegistryClient builds a RegistryClient against baseURL.
func NewRegistryClient(baseURL string, timeout time.Duration) *RegistryClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &RegistryClient{
		http:  client,
		cache: cache.New(packageCacheTTL, packageCacheTTL*2),
	}
}

func packageCacheKey(softwareVersionID, usecaseVersionID string) string {
	return softwareVersionID + "::" + usecaseVersionID
}

// FetchPackage returns the cached descriptor for the given version pair,
// fetching and populating the cache on a miss.
func (c *RegistryClient) FetchPackage(ctx context.Context, softwareVersionID, usecaseVersionID string) (*domain.PackageDescriptor, error) {
	key := packageCacheKey(softwareVersionID, usecaseVersionID)
	if cached, ok := c.cache.Get(key); ok {
		return cached.(*domain.PackageDescriptor), nil
	}

	var pkg domain.PackageDescriptor
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&pkg).
		SetQueryParam("software_version_id", softwareVersionID).
		SetQueryParam("usecase_version_id", usecaseVersionID).
		Get("/packages/resolve")
	if err != nil {
		return nil, fmt.Errorf("usecase: fetching package descriptor: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("usecase: package registry returned %s", resp.Status())
	}

	pkg.SoftwareVersionID = softwareVersionID
	pkg.UsecaseVersionID = usecaseVersionID
	pkg.FetchedAt = time.Now()

	c.cache.Set(key, &pkg, cache.DefaultExpiration)
	return &pkg, nil
}
