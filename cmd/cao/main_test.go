package main

import (
	"os"
	"testing"

	"github.com/cao-lang/cao/cmd/cao/cmd"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestMain(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"cao": func() int {
			if err := cmd.Execute(); err != nil {
				return 1
			}
			return 0
		},
	}))
}

// TestScripts drives the built binary end to end: every .txtar under
// testdata/script runs the cao command against real source files and
// asserts on its stdout/stderr and exit status.
func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{Dir: "testdata/script"})
}
