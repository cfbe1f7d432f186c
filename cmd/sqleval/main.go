// Package main is the entry point for the sqleval binary.
package main

import (
	"os"

	"sql-eval/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
