// Package main is the single-binary entrypoint for countdown.
package main

import "github.com/tutu-network/countdown/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
