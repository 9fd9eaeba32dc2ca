package main

import (
	"os"

	"github.com/herd-sh/herd/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
