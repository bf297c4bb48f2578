// Package main provides the chainrules CLI.
package main

import (
	"fmt"
	"os"

	"github.com/born-ml/chainrules/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
