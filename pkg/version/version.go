// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package version

import (
	"fmt"

	goversion "github.com/hashicorp/go-version"
)

// Version is set via ldflags at build time.
var Version = "develop"

// RequireAtLeast fails unless Version is the given version or newer.
// A "develop" build satisfies every requirement.
func RequireAtLeast(minimum string) error {
	required, err := goversion.NewVersion(minimum)
	if err != nil {
		return fmt.Errorf("parsing required version '%s': %s", minimum, err)
	}

	if Version == "develop" {
		return nil
	}

	current, err := goversion.NewVersion(Version)
	if err != nil {
		return fmt.Errorf("parsing yamlgraph version '%s': %s", Version, err)
	}

	if current.LessThan(required) {
		return fmt.Errorf("yamlgraph version %s does not meet the minimum required version %s", Version, minimum)
	}
	return nil
}
