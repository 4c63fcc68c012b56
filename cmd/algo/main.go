package main

import (
	"os"

	"github.com/iMarioChow/algo/cmd/algo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
