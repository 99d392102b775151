package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

var (
	// These variables are set during build time
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// BuildInfo contains build and runtime information
type BuildInfo struct {
	// Version Information
	Version   string `json:"version"`
	SemVer    string `json:"semver"`
	BuildDate string `json:"build_date"`

	// Git Information
	GitCommit string `json:"git_commit"`

	// Go Build Information
	GoVersion string `json:"go_version"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`

	// Runtime Information
	NumCPU     int `json:"num_cpu"`
	GOMAXPROCS int `json:"gomaxprocs"`

	// Build Settings
	BuildTags []string `json:"build_tags"`
	BuildDeps []Module `json:"build_deps"`
}

// Module represents a Go module dependency
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
	Sum     string `json:"sum"`
}

// Short returns the one-line version string.
func Short() string {
	return fmt.Sprintf("wbclean %s (%s)", Version, GitCommit)
}

// GetBuildInfo returns comprehensive build information
func GetBuildInfo() BuildInfo {
	buildInfo, _ := debug.ReadBuildInfo()

	var buildTags []string
	var buildDeps []Module

	if buildInfo != nil {
		for _, setting := range buildInfo.Settings {
			if setting.Key == "-tags" {
				buildTags = strings.Split(setting.Value, ",")
			}
		}

		for _, dep := range buildInfo.Deps {
			buildDeps = append(buildDeps, Module{
				Path:    dep.Path,
				Version: dep.Version,
				Sum:     dep.Sum,
			})
		}
	}

	return BuildInfo{
		Version:   Version,
		SemVer:    strings.Split(Version, "-")[0],
		BuildDate: BuildDate,

		GitCommit: GitCommit,

		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,

		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),

		BuildTags: buildTags,
		BuildDeps: buildDeps,
	}
}

// FullVersion returns a formatted string with complete version information
func FullVersion() string {
	info := GetBuildInfo()

	var b strings.Builder
	b.WriteString(fmt.Sprintf("wbclean %s\n", info.Version))
	b.WriteString("========================================\n\n")

	b.WriteString("Version Information:\n")
	b.WriteString(fmt.Sprintf("  Version:      %s\n", info.Version))
	b.WriteString(fmt.Sprintf("  Semantic Ver: %s\n", info.SemVer))
	b.WriteString(fmt.Sprintf("  Build Date:   %s\n", info.BuildDate))
	b.WriteString(fmt.Sprintf("  Commit:       %s\n", info.GitCommit))
	b.WriteString("\n")

	b.WriteString("Go Build Information:\n")
	b.WriteString(fmt.Sprintf("  Go Version:   %s\n", info.GoVersion))
	b.WriteString(fmt.Sprintf("  Compiler:     %s\n", info.Compiler))
	b.WriteString(fmt.Sprintf("  Platform:     %s\n", info.Platform))
	b.WriteString("\n")

	b.WriteString("Runtime Information:\n")
	b.WriteString(fmt.Sprintf("  CPUs:         %d\n", info.NumCPU))
	b.WriteString(fmt.Sprintf("  GOMAXPROCS:   %d\n", info.GOMAXPROCS))
	b.WriteString("\n")

	if len(info.BuildTags) > 0 {
		b.WriteString("Build Tags:\n")
		for _, tag := range info.BuildTags {
			b.WriteString(fmt.Sprintf("  - %s\n", tag))
		}
		b.WriteString("\n")
	}

	if len(info.BuildDeps) > 0 {
		b.WriteString("Dependencies:\n")
		show := len(info.BuildDeps)
		if show > 5 {
			show = 5
		}
		for _, dep := range info.BuildDeps[:show] {
			b.WriteString(fmt.Sprintf("  - %s@%s\n", dep.Path, dep.Version))
		}
		if len(info.BuildDeps) > 5 {
			b.WriteString("  ... and more\n")
		}
	}

	return b.String()
}
