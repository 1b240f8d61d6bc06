// Package version holds build-time identity of the bot.
package version

// Overridden at link time with -ldflags "-X github.com/keshon/genesis/internal/version.Version=...".
var (
	AppName = "Genesis"
	Version = "dev"
)
