// Package env reads the NAVANI_* switches shared by the CLI and tests.
package env

import (
	"os"
	"strconv"
)

func Test() bool {
	return os.Getenv("TEST_MODE") != ""
}

func Dev() bool {
	return os.Getenv("NAVANI_DEV") != ""
}

func Debug() bool {
	return os.Getenv("DEBUG") != ""
}

// People have NAVANI_DEV on while running tests. If that's the case, this
// function will return false.
func DevOnly() bool {
	return Dev() && !Test()
}

// Timeout is the NAVANI_TIMEOUT override in seconds.
func Timeout() (int, bool) {
	if s := os.Getenv("NAVANI_TIMEOUT"); s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return int(i), true
		}
	}
	return -1, false
}
