package composer

import (
	"fmt"
	"strings"

	"github.com/roemer/goext"
)

// Asks Composer itself where its cache lives. Fails when Composer is not
// installed, the caller falls back to the user cache directory in that case.
func CacheDir() (string, error) {
	outStr, errStr, err := goext.CmdRunners.Default.RunGetOutput("composer", "config", "--global", "cache-dir")
	if err != nil {
		return "", fmt.Errorf("failed resolving the composer cache dir: %w (%s)", err, strings.TrimSpace(errStr))
	}
	cacheDir := strings.TrimSpace(outStr)
	if cacheDir == "" {
		return "", fmt.Errorf("composer returned an empty cache dir")
	}
	return cacheDir, nil
}
