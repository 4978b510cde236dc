package main

import (
	"os"

	"github.com/splitdump/splitdump/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
