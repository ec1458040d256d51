package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/honganh1206/sift/engine"
	"github.com/honganh1206/sift/message"
	"github.com/honganh1206/sift/utils"
)

func newSearchCmd() *cobra.Command {
	var (
		conversationID string
		userID         string
		msgType        string
		fromDate       string
		toDate         string
		attachments    string
		noFuzzy        bool
		limit          int
		offset         int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search indexed messages",
		Args:  cobra.MinimumNArgs(1),
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

			filters := engine.Filters{
				ConversationID: conversationID,
				UserID:         userID,
				Type:           message.Type(msgType),
				Limit:          limit,
				Offset:         offset,
			}

			if fromDate != "" {
				t, err := utils.ParseTimeWithFallback(fromDate)
				if err != nil {
					return err
				}
				filters.DateFrom = &t
			}
			if toDate != "" {
				t, err := utils.ParseTimeWithFallback(toDate)
				if err != nil {
					return err
				}
				// A date-only upper bound should include the whole day.
				if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 {
					t = t.Add(24*time.Hour - time.Nanosecond)
				}
				filters.DateTo = &t
			}
			switch attachments {
			case "":
			case "true", "false":
				has := attachments == "true"
				filters.HasAttachments = &has
			default:
				return fmt.Errorf("--attachments must be true or false, got %q", attachments)
			}
			if noFuzzy {
				fuzzy := false
				filters.Fuzzy = &fuzzy
			}

			page, err := e.Search(cmd.Context(), strings.Join(args, " "), filters)
			if err != nil {
				return err
			}

			if page.Total == 0 {
				fmt.Println("No results.")
				return nil
			}

			headers := []string{"When", "Conversation", "From", "Message", "Match"}
			var data [][]string
			for _, r := range page.Results {
				matchKind := "exact"
				if r.FuzzyMatch {
					matchKind = fmt.Sprintf("fuzzy (%s)", r.MatchedTerm)
				}
				data = append(data, []string{
					r.Timestamp.Format("2006-01-02 15:04"),
					r.ConversationID,
					r.UserID,
					utils.Truncate(r.HighlightedText, 60),
					matchKind,
				})
			}
			utils.RenderTable(headers, data)

			fmt.Printf("Page %d, showing %d of %d results", page.Page, len(page.Results), page.Total)
			if page.HasMore {
				fmt.Printf(" (more available, use --offset %d)", page.Offset+page.Limit)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "Restrict to a conversation ID")
	cmd.Flags().StringVar(&userID, "user", "", "Restrict to a sender")
	cmd.Flags().StringVar(&msgType, "type", "", "Restrict to a message type (text, media, system)")
	cmd.Flags().StringVar(&fromDate, "from", "", "Earliest message date (inclusive)")
	cmd.Flags().StringVar(&toDate, "to", "", "Latest message date (inclusive)")
	cmd.Flags().StringVar(&attachments, "attachments", "", "Filter by attachment presence (true/false)")
	cmd.Flags().BoolVar(&noFuzzy, "no-fuzzy", false, "Disable typo-tolerant matching")
	cmd.Flags().IntVar(&limit, "limit", 0, "Results per page")
	cmd.Flags().IntVar(&offset, "offset", 0, "Results to skip")

	return cmd
}
