package contracts

import (
	"fmt"
	"runtime"
)

// Version is the release of the analytics service and CLI
const Version = "0.4.0"

// DatasetLayout identifies the CSV column layout the loaders accept
const DatasetLayout = "v1"

// Set with -ldflags "-X maizeintel/pkg/contracts.GitCommit=..."
var (
	GitCommit = "unknown"
	BuildTime = "unknown"
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version       string `json:"version"`
	DatasetLayout string `json:"dataset_layout"`
	GitCommit     string `json:"git_commit"`
	BuildTime     string `json:"build_time"`
	GoVersion     string `json:"go_version"`
	Platform      string `json:"platform"`
}

// Build returns the build information of the running binary
func Build() BuildInfo {
	return BuildInfo{
		Version:       Version,
		DatasetLayout: DatasetLayout,
		GitCommit:     GitCommit,
		BuildTime:     BuildTime,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("maizeintel %s (datasets %s, commit %s, built %s, %s %s)",
		b.Version, b.DatasetLayout, b.GitCommit, b.BuildTime, b.GoVersion, b.Platform)
}
