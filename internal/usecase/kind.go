// Copyright (C) 2025-2026, Advanced Micro Devices, Inc. All rights reserved.
// See LICENSE for license information.

package usecase

import (
	"fmt"
	"strings"
)

// ParseNodeKind splits a NodeSpec/NodeInstance's Kind string into the
// software and usecase version ids the package registry is keyed by.
// Node kinds are declared as "<software_version_id>:<usecase_version_id>".
func ParseNodeKind(kind string) (softwareVersionID, usecaseVersionID string, err error) {
	parts := strings.SplitN(kind, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("usecase: malformed node kind %q, want \"<software_version_id>:<usecase_version_id>\"", kind)
	}
	return parts[0], parts[1], nil
}
