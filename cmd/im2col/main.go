// Package main provides the im2col CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/born-ml/im2col/internal/cli"
)

func main() {
	if err := cli.NewCLI().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
