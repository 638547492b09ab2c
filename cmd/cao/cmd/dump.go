package cmd

import (
	"fmt"
	"os"

	"github.com/kr/pretty"
	"github.com/spf13/cobra"

	"github.com/cao-lang/cao"
)

var dumpTokensOnly bool

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Dump the tokens and parsed statements of a C∀O source file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().BoolVar(&dumpTokensOnly, "tokens", false, "dump only the token stream, not the parsed statements")
}

func runDump(_ *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	rt := cao.New()
	toks, err := rt.Tokenize(string(content))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	fmt.Println("tokens:")
	pretty.Println(toks)

	if dumpTokensOnly {
		return nil
	}

	stmts, err := rt.ParseSource(string(content))
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	fmt.Println("\nstatements:")
	pretty.Println(stmts)
	return nil
}
