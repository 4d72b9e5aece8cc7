package version

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGet(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, Commit, info.Commit)
	assert.Equal(t, Date, info.Date)
	assert.Equal(t, runtime.Version(), info.Go)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

func TestInfoString(t *testing.T) {
	info := Info{
		Version:  "1.2.0",
		Commit:   "abc123",
		Date:     "2026-01-01",
		Go:       "go1.23",
		Platform: "linux/amd64",
	}

	assert.Equal(t,
		"rasterize 1.2.0 (commit abc123, built 2026-01-01, go1.23, linux/amd64)",
		info.String())
}

func TestInfoShort(t *testing.T) {
	assert.Equal(t, "rasterize/1.2.0", Info{Version: "1.2.0"}.Short())
}
