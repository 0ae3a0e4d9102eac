// Package version holds the version identifier reported by the guisu
// command line's version command.
package version

import "fmt"

const (
	// Major represents the current major version of guisu.
	Major = 0
	// Minor represents the current minor version of guisu.
	Minor = 1
	// Patch represents the current patch version of guisu.
	Patch = 0
)

// Semantic is the dotted major.minor.patch version string.
var Semantic = fmt.Sprintf("%d.%d.%d", Major, Minor, Patch)
