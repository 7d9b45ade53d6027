package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/Sternrassler/pokedex-client/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, cli.ErrReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
