package main

import (
	"os"

	"github.com/btaeng/trivia-map/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
