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

package shared

// globalFlags holds the persistent root flags. cli.NewRootCommand binds
// them through RegisterFlagPointers; commands read them through the getters.
type globalFlags struct {
	verbose bool
	quiet   bool
	json    bool
	config  string
}

// buildInfo is stamped by main from linker variables.
type buildInfo struct {
	version string
	commit  string
	date    string
}

var (
	flags globalFlags
	build = buildInfo{version: "dev", commit: "unknown", date: "unknown"}
)

// RegisterFlagPointers returns the verbose, quiet, json and config flag
// targets, in that order.
func RegisterFlagPointers() (*bool, *bool, *bool, *string) {
	return &flags.verbose, &flags.quiet, &flags.json, &flags.config
}

// SetVersion records build metadata for the version command and tracing
// resource attributes.
func SetVersion(v, c, b string) {
	build = buildInfo{version: v, commit: c, date: b}
}

// GetVerbose reports whether plugin log lines and debug output are shown.
func GetVerbose() bool { return flags.verbose }

// GetQuiet reports whether only errors are logged.
func GetQuiet() bool { return flags.quiet }

// GetJSON reports whether commands emit JSON envelopes instead of text.
func GetJSON() bool { return flags.json }

// GetConfigPath returns the --config value, empty when unset.
func GetConfigPath() string { return flags.config }

// GetVersion returns version, commit and build date.
func GetVersion() (string, string, string) {
	return build.version, build.commit, build.date
}

// SetJSONForTest toggles JSON output.
func SetJSONForTest(v bool) { flags.json = v }

// SetConfigPathForTest points commands at a config file.
func SetConfigPathForTest(path string) { flags.config = path }
