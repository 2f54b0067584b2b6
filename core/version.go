package core

import "strings"

// ModulePath is the import path of this package, used to build -X flags.
const ModulePath = "xsmodels/core"

// Build information, injected with ldflags:
//
//	go build -ldflags "-X xsmodels/core.Version=$(git describe --tags --always)" .
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func GetVersion() string   { return Version }
func GetBuildTime() string { return BuildTime }
func GetGitCommit() string { return GitCommit }

// GetVersionInfo formats all three, e.g.
// "v1.0.0 (built 2026-01-15T10:30:00Z, commit abc1234)".
func GetVersionInfo() string {
	return Version + " (built " + BuildTime + ", commit " + GitCommit + ")"
}

// BuildLdflags returns the -X flags for the non-empty arguments.
func BuildLdflags(version, buildTime, gitCommit string) string {
	var flags []string
	for _, kv := range [][2]string{{"Version", version}, {"BuildTime", buildTime}, {"GitCommit", gitCommit}} {
		if kv[1] != "" {
			flags = append(flags, "-X "+ModulePath+"."+kv[0]+"="+kv[1])
		}
	}
	return strings.Join(flags, " ")
}
