// Copyright the pxc contributors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetFlagBool fetches a bool flag, logging a fatal error (exit 1) on the
// programmer error of querying a flag that was never registered -- the same
// "never expected to happen at runtime" treatment the teacher's util.go
// gives its GetFlag helpers.
func GetFlagBool(c *cobra.Command, name string) bool {
	v, err := c.Flags().GetBool(name)
	if err != nil {
		log.Fatalf("pxc: internal error: unregistered flag %q: %v", name, err)
	}

	return v
}

// GetFlagCount fetches a count flag (used for -c's "repeating is an error"
// semantics).
func GetFlagCount(c *cobra.Command, name string) int {
	v, err := c.Flags().GetCount(name)
	if err != nil {
		log.Fatalf("pxc: internal error: unregistered flag %q: %v", name, err)
	}

	return v
}
