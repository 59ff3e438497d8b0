package main

import (
	"os"

	"github.com/spx-tools/spx/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
