package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cmdref/internal/domain"
)

var (
	searchQuery      string
	searchSection    int
	searchComplexity string
	searchCategory   string
	searchCommon     bool
	searchLimit      int
	searchMatches    bool
	searchJSON       bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the loaded snapshot",
	Long: `Search command names and descriptions. Exact and prefix name matches come
first, then typo-tolerant name matches, then full-text matches.

Examples:
  cmdref search -q grep
  cmdref search -q "search files" --section 1 --limit 5 --json`,
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchQuery, "query", "q", "", "search query (required)")
	searchCmd.Flags().IntVarP(&searchSection, "section", "s", 0, "only this manual section")
	searchCmd.Flags().StringVar(&searchComplexity, "complexity", "", "only basic, intermediate or advanced")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "only this category")
	searchCmd.Flags().BoolVar(&searchCommon, "common", false, "only commonly used commands")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "number of results (default from config)")
	searchCmd.Flags().BoolVar(&searchMatches, "matches", false, "include matched fields")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	searchCmd.MarkFlagRequired("query")
}

func runSearch(cmd *cobra.Command, args []string) error {
	complexity := domain.Complexity(searchComplexity)
	if !complexity.Valid() {
		return fmt.Errorf("unknown complexity %q", searchComplexity)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	opts := domain.SearchOptions{
		Query:          searchQuery,
		Complexity:     complexity,
		Category:       searchCategory,
		CommonOnly:     searchCommon,
		IncludeMatches: searchMatches,
	}
	if cmd.Flags().Changed("section") {
		opts.Section = domain.Int(searchSection)
	}
	if cmd.Flags().Changed("limit") {
		opts.Limit = domain.Int(searchLimit)
	}

	results := s.searcher.Search(opts)

	out := cmd.OutOrStdout()
	if searchJSON {
		output, _ := json.MarshalIndent(results, "", "  ")
		fmt.Fprintln(out, string(output))
		return nil
	}

	if len(results) == 0 {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintf(out, "Found %d results for: %s\n\n", len(results), searchQuery)
	for i, r := range results {
		marker := ""
		if r.IsExactMatch {
			marker = " *"
		}
		fmt.Fprintf(out, "%2d. %s(%d)%s  [%s %.1f]\n", i+1, r.Name, r.Section, marker, r.SearchStrategy, r.Score)
		if r.Title != "" {
			fmt.Fprintf(out, "    %s\n", r.Title)
		}
		if len(r.Matches) > 0 {
			parts := make([]string, len(r.Matches))
			for j, m := range r.Matches {
				parts[j] = m.Field + ":" + m.Token
			}
			fmt.Fprintf(out, "    matched %s\n", strings.Join(parts, ", "))
		}
	}
	return nil
}
