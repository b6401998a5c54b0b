package cmd

import (
	"github.com/spf13/cobra"
)

var lessonsCmd = &cobra.Command{
	Use:   "lessons",
	Short: "List stored review lessons",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := requireStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		lessons, err := s.List(cmd.Context())
		if err != nil {
			return err
		}

		if len(lessons) == 0 {
			ui.Info("no lessons stored yet, use `reviewer teach` to add some")
			return nil
		}

		table := ui.Table([]string{"ID", "CATEGORY", "CREATED", "LESSON"})
		for _, l := range lessons {
			text := l.Text
			if len(text) > 80 {
				text = text[:77] + "..."
			}
			table.Append([]string{l.ID, l.Category, l.CreatedAt.Format("2006-01-02"), text})
		}
		table.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lessonsCmd)
}
