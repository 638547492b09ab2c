// Command cao is the C∀O command-line front end: evaluate source files or
// inline expressions, inspect the dictionary, and save/restore sessions.
package main

import (
	"os"

	"github.com/cao-lang/cao/cmd/cao/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
