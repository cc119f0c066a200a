// Package main is the entry point for the decodechain application.
package main

import (
	"os"

	"github.com/jmylchreest/decodechain/cmd/decodechain/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
