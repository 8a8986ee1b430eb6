// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"runtime"
	"testing"
)

// SetConfigHome points os.UserConfigDir at dir for the current platform and
// returns a cleanup function that restores the previous environment.
//
//	func TestSomething(t *testing.T) {
//	    t.Cleanup(testutil.SetConfigHome(t, t.TempDir()))
//	}
//
// On darwin os.UserConfigDir is `$HOME/Library/Application Support`, so dir
// becomes HOME there rather than the config directory itself.
func SetConfigHome(t testing.TB, dir string) func() {
	t.Helper()

	switch runtime.GOOS {
	case "windows":
		return MustSetenv(t, "AppData", dir)
	case "darwin", "ios":
		return MustSetenv(t, "HOME", dir)
	default:
		return MustSetenv(t, "XDG_CONFIG_HOME", dir)
	}
}
