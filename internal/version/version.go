// Package version reports the build version of the agentnexus binary.
package version

import (
	"runtime/debug"
	"strings"
	"time"
)

const defaultModule = "pkt.systems/agentnexus"

// buildVersion is set via -ldflags "-X pkt.systems/agentnexus/internal/version.buildVersion=...".
var buildVersion = ""

// Info is what the binary knows about its own build.
type Info struct {
	Module   string
	Version  string
	Revision string
	Time     time.Time
	Modified bool
}

// Read collects build information. Version falls back to a pseudo-version
// built from VCS settings, then to v0.0.0-unknown.
func Read() Info {
	info, _ := debug.ReadBuildInfo()
	return fromBuildInfo(info, buildVersion)
}

// Current returns the version without a dirty suffix.
func Current() string {
	return strings.TrimSuffix(Read().String(), "+dirty")
}

// CurrentWithDirty returns the version, suffixed +dirty for modified builds.
func CurrentWithDirty() string {
	return Read().String()
}

// Module returns the main module path.
func Module() string {
	return Read().Module
}

// String renders the version, with +dirty when the tree was modified.
func (i Info) String() string {
	if i.Modified && !strings.HasSuffix(i.Version, "+dirty") {
		return i.Version + "+dirty"
	}
	return i.Version
}

func fromBuildInfo(info *debug.BuildInfo, override string) Info {
	out := Info{Module: defaultModule}
	if info != nil {
		if path := strings.TrimSpace(info.Main.Path); path != "" {
			out.Module = path
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				out.Revision = setting.Value
			case "vcs.time":
				if parsed, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					out.Time = parsed.UTC()
				}
			case "vcs.modified":
				out.Modified = setting.Value == "true"
			}
		}
	}
	switch {
	case strings.TrimSpace(override) != "":
		out.Version = strings.TrimSpace(override)
	case info != nil && info.Main.Version != "" && info.Main.Version != "(devel)":
		out.Version = strings.TrimSpace(info.Main.Version)
	case out.Revision != "" && !out.Time.IsZero():
		out.Version = pseudoVersion(out.Time, out.Revision)
	default:
		out.Version = "v0.0.0-unknown"
	}
	return out
}

func pseudoVersion(at time.Time, revision string) string {
	if len(revision) > 12 {
		revision = revision[:12]
	}
	return "v0.0.0-" + at.UTC().Format("20060102150405") + "-" + revision
}
