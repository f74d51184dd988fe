package main

import (
	"os"

	"github.com/msto63/rungc/cmd/rungc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
