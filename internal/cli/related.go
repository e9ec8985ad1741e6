package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cmdref/internal/domain"
)

var (
	relatedLimit int
	relatedJSON  bool
)

var relatedCmd = &cobra.Command{
	Use:   "related <id>",
	Short: "List commands related to one command",
	Long: `List commands sharing a category, keywords or index tokens with the given
command. Ids have the form name.section, e.g. grep.1.`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

func init() {
	rootCmd.AddCommand(relatedCmd)
	relatedCmd.Flags().IntVarP(&relatedLimit, "limit", "n", 0, "number of commands (default from config)")
	relatedCmd.Flags().BoolVar(&relatedJSON, "json", false, "output as JSON")
}

func runRelated(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	related := s.searcher.GetRelated(args[0], relatedLimit)

	out := cmd.OutOrStdout()
	if relatedJSON {
		output, _ := json.MarshalIndent(related, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	src, err := s.store.GetCommand(args[0])
	if errors.Is(err, domain.ErrNotFound) {
		fmt.Fprintf(out, "No command %s in the stored snapshot.\n", args[0])
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	fmt.Fprintf(out, "Related to %s(%d): %s\n\n", src.Name, src.Section, src.Title)

	if len(related) == 0 {
		fmt.Fprintf(out, "No related commands for %s.\n", args[0])
		return nil
	}
	for _, r := range related {
		fmt.Fprintf(out, "%-16s %5.1f  %s\n", fmt.Sprintf("%s(%d)", r.Name, r.Section), r.Score, r.Title)
	}
	return nil
}
