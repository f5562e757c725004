package version

import (
	"fmt"
	"runtime"
	"time"
)

var (
	version      = ""                     // Injected with a linker flag
	buildDate    = "1970-01-01T00:00:00Z" // Injected with a linker flag
	gitCommit    = ""                     // Injected with a linker flag
	gitTreeState = ""                     // Injected with a linker flag
)

// Version encapsulates all available information about the source code and the
// build.
type Version struct {
	// Version is a human-friendly version string.
	Version string `json:"version"`
	// BuildDate is the date/time on which the binary was built.
	BuildDate time.Time `json:"buildDate"`
	// GitCommit is the ID (sha) of the last commit included in this build.
	GitCommit string `json:"gitCommit"`
	// GitTreeDirty is true if the source contained uncommitted changes at build
	// time.
	GitTreeDirty bool `json:"gitTreeDirty"`
	// GoVersion is the version of Go that was used to build the binary.
	GoVersion string `json:"goVersion"`
	// Platform indicates the OS and CPU architecture for which the binary was
	// built.
	Platform string `json:"platform"`
}

var ver = newVersion(version, buildDate, gitCommit, gitTreeState)

func newVersion(v, date, commit, treeState string) Version {
	// A malformed build date is not worth refusing to start over.
	built, _ := time.Parse(time.RFC3339, date)
	ver := Version{
		Version:      v,
		BuildDate:    built,
		GitCommit:    commit,
		GitTreeDirty: treeState != "clean",
		GoVersion:    runtime.Version(),
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if ver.Version == "" || ver.GitCommit == "" || ver.GitTreeDirty {
		ver.Version = "devel"
		if len(ver.GitCommit) >= 7 {
			ver.Version = fmt.Sprintf("%s+%s", ver.Version, ver.GitCommit[0:7])
		} else {
			ver.Version = fmt.Sprintf("%s+unknown", ver.Version)
		}
		if ver.GitTreeDirty {
			ver.Version = fmt.Sprintf("%s.dirty", ver.Version)
		}
	}
	return ver
}

// GetVersion returns build information for the running binary.
func GetVersion() Version {
	return ver
}

// AppID returns the identifier this binary reports to AWS in the user agent of
// every API call.
func AppID() string {
	return "redeployer/" + ver.Version
}
