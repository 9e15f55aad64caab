package main

import (
	"os"

	"github.com/ytget/tubegrab/internal/cli"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

func main() {
	os.Exit(cli.Execute(version, os.Args[1:]))
}
