package main

import (
	"os"

	"github.com/finsim-dev/finsim/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
