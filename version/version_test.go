package version

import (
	"runtime/debug"
	"testing"
)

func buildInfo(settings ...debug.BuildSetting) func() (*debug.BuildInfo, bool) {
	return func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Settings: settings}, true
	}
}

func noBuildInfo() (*debug.BuildInfo, bool) { return nil, false }

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		version string
		commit  string
		read    func() (*debug.BuildInfo, bool)
		want    string
	}{
		{"dev without vcs", "dev", "", noBuildInfo, "dev"},
		{"injected commit wins", "1.2.0", "abcdef0123", buildInfo(debug.BuildSetting{Key: "vcs.revision", Value: "ffffffffff"}), "1.2.0-abcdef0"},
		{"vcs fallback", "1.2.0", "", buildInfo(debug.BuildSetting{Key: "vcs.revision", Value: "0123456789"}), "1.2.0-0123456"},
		{"dirty tree", "1.2.0", "", buildInfo(
			debug.BuildSetting{Key: "vcs.revision", Value: "0123456789"},
			debug.BuildSetting{Key: "vcs.modified", Value: "true"},
		), "1.2.0-0123456-dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(tt.version, tt.commit, tt.read).String(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestGet(t *testing.T) {
	if Get().Version != Version {
		t.Errorf("expected version %q", Version)
	}
}
