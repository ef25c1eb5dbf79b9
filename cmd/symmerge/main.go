package main

import (
	"os"

	"github.com/abramin/symmerge/cmd/symmerge/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
