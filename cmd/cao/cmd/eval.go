package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cao-lang/cao"
)

var (
	evalExpr    string
	verifyMode  string
	maxRecDepth int
)

var evalCmd = &cobra.Command{
	Use:   "eval [file]",
	Short: "Evaluate a C∀O source file or inline expression",
	Long: `Run a C∀O program from a file or an inline expression and print the
resulting data stack.

Examples:
  # Run a script file
  cao eval program.cao

  # Evaluate an inline expression
  cao eval -e "3 4 +"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringVarP(&evalExpr, "eval", "e", "", "evaluate inline source instead of reading from a file")
	evalCmd.Flags().StringVar(&verifyMode, "ordinal-mode", "lenient", "ordinal verifier strategy: lenient or strict")
	evalCmd.Flags().IntVar(&maxRecDepth, "max-recursion", 512, "maximum call-stack depth")
}

func runEval(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyConfigDefaults(cfg, cmd.Flags().Changed("ordinal-mode"), cmd.Flags().Changed("max-recursion"))

	var src, name string

	switch {
	case evalExpr != "":
		src, name = evalExpr, "<eval>"
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		src, name = string(content), args[0]
	default:
		return fmt.Errorf("either provide a file path or use -e for inline source")
	}

	mode, err := parseVerifyMode(verifyMode)
	if err != nil {
		return err
	}

	rt := cao.New(
		cao.WithOutput(os.Stdout),
		cao.WithVerifyMode(mode),
		cao.WithMaxRecursionDepth(maxRecDepth),
	)

	if verbose {
		fmt.Fprintf(os.Stderr, "evaluating %s\n", name)
	}

	if err := rt.Eval(src); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := rt.Flush(); err != nil {
		return err
	}

	fmt.Println(cao.RenderStack(rt.Stack()))
	return nil
}

func parseVerifyMode(s string) (cao.VerifyMode, error) {
	switch s {
	case "lenient", "":
		return cao.Lenient, nil
	case "strict":
		return cao.Strict, nil
	default:
		return cao.Lenient, fmt.Errorf("unknown ordinal mode %q (want lenient or strict)", s)
	}
}
