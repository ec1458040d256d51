package main

import (
	"os"

	"github.com/honganh1206/sift/cmd"
)

func main() {
	if err := cmd.NewCLI().Execute(); err != nil {
		os.Exit(1)
	}
}
