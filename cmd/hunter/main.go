package main

import (
	"os"

	"github.com/hunterlabs/hunter/cmd/hunter/commands"
)

// main is the entry point for the hunter CLI: go run ./cmd/hunter [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
