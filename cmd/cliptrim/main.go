package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// Ctrl-C already printed whatever the command had to say.
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "cliptrim:", err)
		}
		os.Exit(1)
	}
}
