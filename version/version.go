package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running binary and the parallelism available to its
// schedulers.
type Info struct {
	Version    string    `json:"version"`
	GitCommit  string    `json:"git_commit"`
	BuildTime  string    `json:"build_time"`
	BuildDate  time.Time `json:"build_date"`
	GoVersion  string    `json:"go_version"`
	Platform   string    `json:"platform"`
	NumCPU     int       `json:"num_cpu"`
	GOMAXPROCS int       `json:"gomaxprocs"`
	IsRelease  bool      `json:"is_release"`
	IsDirty    bool      `json:"is_dirty"`
}

// Get collects build and runtime information. Values injected with -ldflags
// win over those read from the embedded build info.
func Get() Info {
	info := Info{
		Version:    Version,
		GitCommit:  GitCommit,
		BuildTime:  BuildTime,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		IsRelease:  Version != "dev" && !strings.Contains(Version, "dirty"),
	}

	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	if bi, ok := debug.ReadBuildInfo(); ok {
		applyBuildSettings(&info, bi.Settings)
	}
	return info
}

func applyBuildSettings(info *Info, settings []debug.BuildSetting) {
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = s.Value
			}
		case "vcs.modified":
			info.IsDirty = s.Value == "true"
		case "vcs.time":
			if info.BuildTime == "" {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuildDate = t
					info.BuildTime = s.Value
				}
			}
		}
	}
	if len(info.GitCommit) > 7 {
		info.GitCommit = info.GitCommit[:7]
	}
	if info.IsDirty {
		info.IsRelease = false
	}
}

// Short returns "version[-commit][-dirty]".
func (i Info) Short() string {
	if i.GitCommit == "" {
		return i.Version
	}
	s := i.Version + "-" + i.GitCommit
	if i.IsDirty {
		s += "-dirty"
	}
	return s
}

// String renders the info the way the version command prints it.
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "version:    %s\n", i.Short())
	if !i.BuildDate.IsZero() {
		fmt.Fprintf(&b, "built:      %s\n", i.BuildDate.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "go:         %s %s\n", i.GoVersion, i.Platform)
	fmt.Fprintf(&b, "cpus:       %d (GOMAXPROCS %d)\n", i.NumCPU, i.GOMAXPROCS)
	return b.String()
}

// Fields returns the info as structured log fields.
func (i Info) Fields() map[string]interface{} {
	return map[string]interface{}{
		"version":    i.Short(),
		"go_version": i.GoVersion,
		"platform":   i.Platform,
		"num_cpu":    i.NumCPU,
	}
}
