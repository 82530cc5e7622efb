package main

import (
	"os"

	"github.com/dshills/alfred/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
