// Package version carries build metadata set through -ldflags.
package version

import (
	"runtime/debug"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/kbukum/authgate/version.Version=1.2.0 -X github.com/kbukum/authgate/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "dev"
	GitCommit = ""
)

// shortCommitLen is the length of a commit hash in the short version.
const shortCommitLen = 7

// Info is the resolved build metadata.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get resolves build metadata, falling back to the VCS stamp the Go
// toolchain embeds when no commit was injected.
func Get() Info {
	return resolve(Version, GitCommit, debug.ReadBuildInfo)
}

func resolve(v, commit string, read func() (*debug.BuildInfo, bool)) Info {
	info := Info{Version: v, GitCommit: commit}
	if bi, ok := read(); ok {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.GitCommit == "" {
					info.GitCommit = s.Value
				}
			case "vcs.modified":
				info.Dirty = s.Value == "true"
			}
		}
	}
	if len(info.GitCommit) > shortCommitLen {
		info.GitCommit = info.GitCommit[:shortCommitLen]
	}
	return info
}

// String renders the version as "1.2.0", "1.2.0-abc1234" or "1.2.0-abc1234-dirty".
func (i Info) String() string {
	s := i.Version
	if i.GitCommit != "" {
		s += "-" + i.GitCommit
		if i.Dirty {
			s += "-dirty"
		}
	}
	return s
}
