package main

import (
	"os"

	"github.com/spigell/hackmate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
