package app

import (
	"os"
	"sync/atomic"
)

const testModeEnv = "SEKOLAH_TEST_MODE"

var testMode atomic.Pointer[bool]

// InTestMode reports whether the binaries should skip runtime side
// effects. The SEKOLAH_TEST_MODE=1 flag is read once and cached.
func InTestMode() bool {
	if v := testMode.Load(); v != nil {
		return *v
	}
	v := os.Getenv(testModeEnv) == "1"
	testMode.Store(&v)
	return v
}

// RefreshTestMode re-reads the flag after environment changes.
func RefreshTestMode() {
	v := os.Getenv(testModeEnv) == "1"
	testMode.Store(&v)
}
