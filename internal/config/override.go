// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride replaces ConfigDir for tests. HOME is not honored by
// os.UserHomeDir on every platform, so tests cannot rely on it.
var configDirOverride string

// OverrideConfigDir makes ConfigDir return dir until the returned restore
// function is called. It is meant for t.Cleanup and is not safe for
// parallel tests.
func OverrideConfigDir(dir string) (restore func()) {
	prev := configDirOverride
	configDirOverride = dir
	return func() { configDirOverride = prev }
}
