// Package misc keeps build time information.
package misc

// These are set by the linker when building release binaries:
//
//	-X docmark/misc.version=... -X docmark/misc.githash=...
var (
	appName = "docmark"
	version = "dev"
	githash = "unknown"
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

func GetGitHash() string {
	return githash
}
