// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package completion

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tombee/courier/internal/commands/shared"
	"github.com/tombee/courier/internal/config"
)

// CheckFilePermissions reports whether path is private to its owner.
// A missing file is treated as acceptable.
func CheckFilePermissions(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return info.Mode().Perm()&0o077 == 0
}

// LoadConfigForCompletion loads the courier configuration. Destination
// configs carry secrets, so a group or world readable file is skipped and
// (nil, nil) is returned.
func LoadConfigForCompletion() (*config.Config, error) {
	path, err := config.ResolvePath(shared.GetConfigPath())
	if err != nil {
		return nil, err
	}
	if path != "" && !CheckFilePermissions(path) {
		return nil, nil
	}
	return config.Load(path)
}

// SafeCompletionWrapper wraps a completion function with panic recovery.
func SafeCompletionWrapper(fn func() ([]string, cobra.ShellCompDirective)) (results []string, directive cobra.ShellCompDirective) {
	results = []string{}
	directive = cobra.ShellCompDirectiveNoFileComp

	defer func() {
		if r := recover(); r != nil {
			results = []string{}
			directive = cobra.ShellCompDirectiveNoFileComp
		}
	}()

	results, directive = fn()
	if results == nil {
		return []string{}, cobra.ShellCompDirectiveNoFileComp
	}
	return results, directive
}
