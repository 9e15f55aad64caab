package main

import (
	"os"

	"github.com/ytget/tubegrab/internal/cli"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

// main opens the desktop window. Global flags such as --config and
// --log-level are accepted as for "tubegrab gui".
func main() {
	os.Exit(cli.Execute(version, append([]string{"gui"}, os.Args[1:]...)))
}
