package cmd

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"
	"github.com/spf13/cobra"

	"github.com/cao-lang/cao"
)

var wordsCmd = &cobra.Command{
	Use:   "words",
	Short: "List every genesis axiom and dictionary word",
	RunE:  runWords,
}

func init() {
	rootCmd.AddCommand(wordsCmd)
}

func runWords(_ *cobra.Command, _ []string) error {
	rt := cao.New()
	names := rt.Words()
	sort.Slice(names, func(i, j int) bool { return natural.Less(names[i], names[j]) })
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}
