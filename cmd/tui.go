package cmd

import (
	"github.com/spf13/cobra"

	"github.com/honganh1206/sift/tui"
)

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Interactive search screen",
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

			return tui.Run(cmd.Context(), e)
		},
	}
}
