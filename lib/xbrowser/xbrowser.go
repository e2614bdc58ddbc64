// Package xbrowser opens URLs in the user's browser.
package xbrowser

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/pkg/browser"

	"oss.terrastruct.com/xos"
)

// ErrDisabled is returned when NAVANI_BROWSER is 0.
var ErrDisabled = errors.New("browser disabled by NAVANI_BROWSER=0")

// Command returns the shell command that opens a URL, preferring
// NAVANI_BROWSER over BROWSER. It is empty when the system default is used.
func Command(env *xos.Env) string {
	if b := env.Getenv("NAVANI_BROWSER"); b != "" {
		return b
	}
	return env.Getenv("BROWSER")
}

func OpenURL(ctx context.Context, env *xos.Env, url string) error {
	browserEnv := Command(env)
	if browserEnv == "0" {
		return ErrDisabled
	}
	if browserEnv != "" {
		browserSh := fmt.Sprintf("%s '$1'", browserEnv)
		cmd := exec.CommandContext(ctx, "sh", "-c", browserSh, "--", url)
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("failed to run %v (out: %q): %w", cmd.Args, out, err)
		}
		return nil
	}
	return browser.OpenURL(url)
}
