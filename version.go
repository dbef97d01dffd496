// Copyright ©2022 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"runtime/debug"
)

// buildSettings prints the non-empty build settings in info.
func buildSettings(info *debug.BuildInfo) {
	fmt.Printf("Build settings:\n")
	for _, setting := range info.Settings {
		if setting.Value == "" {
			continue
		}
		// Align keys; the longest seen is "vcs.revision".
		fmt.Printf("%16s %s\n", setting.Key, setting.Value)
	}
}
