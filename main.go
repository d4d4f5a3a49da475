// Package main is the bkc command-line entry point.
package main

import "github.com/salzmanlab/bkc/cmd"

func main() {
	cmd.Execute()
}
