// Command uberrun creates a project's Python virtual environments, installs its
// dependencies and runs its entry point.
package main

import (
	"os"

	"github.com/uberrun/uber/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
