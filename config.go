package frag

import (
	"os"
	"sync/atomic"
)

// devModeEnvVar is the single process-wide configuration knob this package
// reads: when set to a recognized truthy value, Compile renders indented,
// pretty-printed output and permits Indent nodes; otherwise it renders
// tight output and strips Indent nodes.
const devModeEnvVar = "SQLFRAG_DEV"

var devMode atomic.Bool

func init() {
	devMode.Store(isTruthyEnv(os.Getenv(devModeEnvVar)))
}

func isTruthyEnv(v string) bool {
	switch v {
	case "1", "true", "TRUE", "True", "yes", "on":
		return true
	default:
		return false
	}
}

// DevMode reports whether development (pretty-print) rendering is active.
func DevMode() bool {
	return devMode.Load()
}

// setDevMode overrides development-mode rendering until the returned
// restore function is called. It exists for tests only; production code should configure
// rendering via the SQLFRAG_DEV environment variable.
func setDevMode(v bool) (restore func()) {
	prev := devMode.Load()
	devMode.Store(v)
	return func() { devMode.Store(prev) }
}
