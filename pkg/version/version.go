package version

import "fmt"

// Version indicates what release of the sunflower tool the binary belongs to
var Version string

// GitCommit indicates which git commit the binary was built from
var GitCommit string

// String returns a pretty string concatenation of Version and GitCommit
func String() string {
	return fmt.Sprintf("Sunflower Version: %s\n Git commit: %s\n", orUnknown(Version), orUnknown(GitCommit))
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
