package main

import (
	"context"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// withLogger stores a stderr logger in ctx. Level 0 messages are always
// printed; -v enables level 1, -vv level 2.
func withLogger(ctx context.Context, verbosity int) context.Context {
	logger := funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: verbosity})
	return logr.NewContext(ctx, logger)
}
