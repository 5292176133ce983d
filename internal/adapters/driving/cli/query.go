package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/loamlabs/pagesift-cli/internal/core/domain"
)

var (
	queryTopK    int
	queryFilters []string
	queryJSON    bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Query the ingested corpus",
	Long: `Embeds the question, retrieves the nearest chunks from the vector
index under optional metadata filters, and reranks them by lexical
overlap when reranking is enabled.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "n", 0, "maximum number of results (default from config)")
	queryCmd.Flags().StringArrayVar(&queryFilters, "filter", nil, "metadata filter key=value (repeatable, AND-combined)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	question := args[0]

	if queryService == nil {
		return errors.New("query service not configured")
	}

	filters, err := parseFilters(queryFilters)
	if err != nil {
		return err
	}

	topK := queryTopK
	if topK <= 0 {
		topK = cfg.Retrieval.TopK
	}

	results, err := queryService.Execute(cmd.Context(), question, domain.QueryOptions{
		TopK:    topK,
		Filters: filters,
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputResultsJSON(cmd, results)
	}
	return outputResultsText(cmd, results)
}

// parseFilters turns repeated key=value flags into the filter map.
func parseFilters(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		filters[key] = value
	}
	return filters, nil
}

func outputResultsJSON(cmd *cobra.Command, results []domain.QueryResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputResultsText(cmd *cobra.Command, results []domain.QueryResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i, r := range results {
		cmd.Printf("  [%d] %s (distance %.4f)\n", i+1, r.ChunkID, r.Score)

		if len(r.Tables) > 0 {
			for _, line := range strings.Split(domain.TablesToText(r.Tables), "\n") {
				cmd.Printf("      %s\n", line)
			}
		} else if snippet := snippet(r.Text); snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
	return nil
}

// snippet returns the first non-blank line of text, capped for display.
func snippet(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			if len(s) > 120 {
				return s[:120] + "..."
			}
			return s
		}
	}
	return ""
}
