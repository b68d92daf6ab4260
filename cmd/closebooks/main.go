package main

import (
	"os"

	"github.com/closebooks-dev/closebooks/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
