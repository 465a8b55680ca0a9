// Package main is the entry point for the getdocs CLI tool.
package main

import (
	"github.com/toolness/getdocs2ts/internal/cmd"
)

func main() {
	cmd.Execute()
}
