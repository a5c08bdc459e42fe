package main

import (
	"os"

	"github.com/adameda/revisia/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
