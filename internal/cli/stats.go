package cli

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"cmdref/internal/domain"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show what the stored snapshot contains",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
}

func runStats(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	stats, err := s.engine.Stats()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if statsJSON {
		output, _ := json.MarshalIndent(struct {
			Meta       domain.SnapshotMeta `json:"meta"`
			Stats      domain.Stats        `json:"stats"`
			Categories []string            `json:"categories"`
		}{s.meta, stats, s.engine.Categories()}, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	fmt.Fprintf(out, "Source:      %s\n", s.meta.Source)
	fmt.Fprintf(out, "Fingerprint: %s\n", s.meta.Fingerprint)
	fmt.Fprintf(out, "Imported:    %s\n", s.meta.ImportedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(out, "Commands:    %d (%d distinct names)\n", stats.Commands, stats.Names)
	fmt.Fprintf(out, "Tokens:      %d\n", stats.Tokens)
	fmt.Fprintf(out, "Categories:  %d\n", stats.Categories)
	for _, c := range s.engine.Categories() {
		fmt.Fprintf(out, "  - %s\n", c)
	}

	levels := make([]string, 0, len(stats.ByComplexity))
	for c := range stats.ByComplexity {
		levels = append(levels, string(c))
	}
	sort.Strings(levels)
	for _, l := range levels {
		fmt.Fprintf(out, "%-12s %d\n", l+":", stats.ByComplexity[domain.Complexity(l)])
	}
	return nil
}
