package arbor

import (
	_ "embed"
	"runtime/debug"
	"strings"
)

//go:embed VERSION
var rawVersion string

// Version is the release version of this module.
var Version = strings.TrimSpace(rawVersion)

// SpecVersion is the major.minor contract version: implementations
// sharing it expose the same scope semantics and helper surface.
var SpecVersion = specVersion(Version)

// RuntimeInfo describes the running implementation, for diagnostics
// endpoints and the version command.
type RuntimeInfo struct {
	SpecificationVersion  string `json:"specification_version"`
	ImplementationVersion string `json:"implementation_version"`
	ImplementationTitle   string `json:"implementation_title"`
}

// Info reports the implementation metadata. The implementation version
// prefers the module version stamped by the build when available.
func Info() RuntimeInfo {
	impl := Version
	if bi, ok := debug.ReadBuildInfo(); ok {
		if v := bi.Main.Version; v != "" && v != "(devel)" {
			impl = strings.TrimPrefix(v, "v")
		}
	}
	return RuntimeInfo{
		SpecificationVersion:  SpecVersion,
		ImplementationVersion: impl,
		ImplementationTitle:   "arbor",
	}
}

func specVersion(v string) string {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return v
	}
	return parts[0] + "." + parts[1]
}
