package main

import (
	"os"

	"github.com/rustyeddy/fvgtrader/cmd/fvgtrader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
