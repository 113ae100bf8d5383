// Package version holds build information set by the linker.
package version

//nolint:gochecknoglobals // Set via -ldflags at build time.
var (
	version   = "dev"
	gitCommit = ""
	buildDate = ""
)

// GetVersion returns the release version.
func GetVersion() string {
	return version
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return gitCommit
}

// GetBuildDate returns the build timestamp.
func GetBuildDate() string {
	return buildDate
}

// String returns the version with commit and date when known.
func String() string {
	s := version
	if gitCommit != "" {
		s += " (" + gitCommit
		if buildDate != "" {
			s += ", " + buildDate
		}
		s += ")"
	}
	return s
}
