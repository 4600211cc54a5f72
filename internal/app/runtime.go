package app

import (
	"os"
	"strings"
	"sync"
)

const testModeEnv = "ODYSSEY_TEST_MODE"

// InTestMode reports whether the binary was launched by a test harness and
// must not bind a port, dial Redis or start the job worker. Read once.
var InTestMode = sync.OnceValue(func() bool {
	return testModeFrom(os.Getenv)
})

func testModeFrom(getenv func(string) string) bool {
	switch strings.ToLower(strings.TrimSpace(getenv(testModeEnv))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
