package main

import (
	"os"

	"github.com/soclens/soclens/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
