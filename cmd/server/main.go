// Package main is the entry point of the imageboard.
//
// main stays minimal: it runs the cobra command tree (root.go) and turns a
// returned error into exit status 1. Configuration, logger and store setup
// happen in the root command's PersistentPreRunE so every subcommand shares them;
// the actual logic lives in internal/.
//
//	imageboard                   # same as `imageboard serve`
//	imageboard serve --config ./config.yaml
//	imageboard gallery           # print uploads grouped by day
//	imageboard threads           # print threads with like/comment counts
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
