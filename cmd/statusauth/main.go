package main

import (
	"fmt"
	"os"
)

// main runs the CLI
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(int(exitCodeFor(err)))
	}
}
