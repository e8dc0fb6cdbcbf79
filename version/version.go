package version

import "fmt"

// overwritten by ldflags on release builds.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	FullVersion = fmt.Sprintf("%s (%s, %s)", Version, Commit, Date)
)
