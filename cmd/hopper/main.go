package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// context.Canceled just means the user interrupted a running command.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "hopper: %v\n", err)
		}
		os.Exit(1)
	}
}
