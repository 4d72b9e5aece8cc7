// Package version exposes build metadata injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Overridden via -ldflags "-X". The defaults identify a developer build.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Info is the build metadata served by the /version endpoint.
type Info struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Date     string `json:"date"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

// Get assembles the build metadata for the running binary.
func Get() Info {
	return Info{
		Version:  Version,
		Commit:   Commit,
		Date:     Date,
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String renders the full metadata for --version output.
func (i Info) String() string {
	return fmt.Sprintf("rasterize %s (commit %s, built %s, %s, %s)",
		i.Version, i.Commit, i.Date, i.Go, i.Platform)
}

// Short renders the compact service/version form used in log fields.
func (i Info) Short() string {
	return "rasterize/" + i.Version
}
