// wirebridge CLI - browser-shaped HTTP and WebSocket client
package main

import "github.com/sqdshguy/wirebridge/pkg/cli"

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	cli.Version = Version
	cli.Commit = Commit
	cli.BuildDate = BuildDate
	cli.Execute()
}
