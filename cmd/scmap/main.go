// Package main is the entry point for the scmap CLI tool.
package main

import (
	"github.com/supplynet/scmap/internal/cmd"
)

func main() {
	cmd.Execute()
}
