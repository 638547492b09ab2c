package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cao-lang/cao"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Save or load a C∀O interpreter session blob",
}

var sessionSaveCmd = &cobra.Command{
	Use:   "save <script> <out.json>",
	Short: "Evaluate a script and write its resulting session blob to a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionSave,
}

var sessionLoadCmd = &cobra.Command{
	Use:   "load <session.json>",
	Short: "Restore a session blob and print its stack and dictionary",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionLoad,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionSaveCmd)
	sessionCmd.AddCommand(sessionLoadCmd)
}

func runSessionSave(_ *cobra.Command, args []string) error {
	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	rt := cao.New()
	if err := rt.Eval(string(content)); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	blob, err := cao.SaveSession(rt)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	if err := os.WriteFile(args[1], blob, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", args[1], err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "wrote session to %s\n", args[1])
	}
	return nil
}

func runSessionLoad(_ *cobra.Command, args []string) error {
	blob, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", args[0], err)
	}

	rt := cao.New(cao.WithOutput(os.Stdout))
	if err := cao.LoadSession(rt, blob); err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	fmt.Println(cao.RenderStack(rt.Stack()))
	for _, name := range rt.Words() {
		if _, ok := rt.WordDefinition(name); ok {
			fmt.Println(name)
		}
	}
	return nil
}
