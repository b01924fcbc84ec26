package version

import (
	"fmt"
	"runtime"
)

// Build information, set via -ldflags "-X github.com/obentoo/cratebump/internal/common/version.Version=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Info returns the multi-line text printed by --version
func Info() string {
	return fmt.Sprintf("cratebump %s\n  commit: %s\n  built: %s\n  go: %s %s/%s",
		Version, Commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
