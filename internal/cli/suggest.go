package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	suggestLimit int
	suggestJSON  bool
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <prefix>",
	Short: "Autocomplete command names",
	Args:  cobra.ExactArgs(1),
	RunE:  runSuggest,
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.Flags().IntVarP(&suggestLimit, "limit", "n", 0, "number of names (default from config)")
	suggestCmd.Flags().BoolVar(&suggestJSON, "json", false, "output as JSON")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	names := s.searcher.GetSuggestions(args[0], suggestLimit)

	out := cmd.OutOrStdout()
	if suggestJSON {
		output, _ := json.Marshal(names)
		fmt.Fprintln(out, string(output))
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(out, n)
	}
	return nil
}
