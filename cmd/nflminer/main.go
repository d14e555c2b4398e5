package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		// An interrupted run is a deliberate stop, not a failure. The
		// pipeline guarantees no partial event log was written.
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "run canceled, no event log written")
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
