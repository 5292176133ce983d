package main

import (
	"os"

	"github.com/loamlabs/pagesift-cli/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
