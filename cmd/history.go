package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/honganh1206/sift/utils"
)

func newSuggestCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Complete a query prefix from indexed terms and past searches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			e, _, cleanup, err := openEngine(cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			suggestions := e.Suggest(args[0], limit)
			if len(suggestions) == 0 {
				fmt.Println("No suggestions.")
				return nil
			}
			for _, s := range suggestions {
				fmt.Println(s)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum suggestions")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var limit int
	var clear bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show or clear recent searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			e, _, cleanup, err := openEngine(cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if clear {
				e.ClearHistory()
				fmt.Println("Search history cleared.")
				return nil
			}

			entries := e.RecentHistory(limit)
			if len(entries) == 0 {
				fmt.Println("No search history.")
				return nil
			}

			headers := []string{"When", "Query", "Filters", "Results"}
			var data [][]string
			for _, entry := range entries {
				data = append(data, []string{
					entry.Timestamp.Format("2006-01-02 15:04"),
					entry.Query,
					formatFilters(entry.Filters),
					fmt.Sprintf("%d", entry.ResultCount),
				})
			}
			utils.RenderTable(headers, data)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum entries to show")
	cmd.Flags().BoolVar(&clear, "clear", false, "Clear the search history")
	return cmd
}

func formatFilters(filters map[string]string) string {
	if len(filters) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(filters))
	for k, v := range filters {
		parts = append(parts, k+"="+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
