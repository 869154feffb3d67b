package main

import (
	"os"

	cutlinecmder "github.com/cutlineco/cutline/cmd/cutline"
)

func main() {
	cmd := cutlinecmder.NewCutlineCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
