package main

import (
	"os"

	"github.com/sunflower-search/sunflower/pkg/lib/signals"
)

func main() {
	if err := newRootCmd().ExecuteContext(signals.Context()); err != nil {
		os.Exit(1)
	}
}
