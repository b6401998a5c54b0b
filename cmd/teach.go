package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	teachCategory string
	teachFile     string
)

// lessonSeed is one entry of a YAML lessons file.
type lessonSeed struct {
	Text     string `yaml:"text"`
	Category string `yaml:"category"`
}

var teachCmd = &cobra.Command{
	Use:   "teach [lesson text]",
	Short: "Store a review lesson for future retrieval",
	Long: `Store one lesson, or a batch from a YAML file, in the reviewer's memory.
Lesson text is scrubbed of secrets and PII before it is persisted.

A lessons file is a YAML list:

  - text: Avoid hardcoding API keys. Use environment variables.
    category: security
  - text: Never use print in production code. Use the logger instead.
    category: clean_code`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if teachFile == "" && len(args) == 0 {
			return fmt.Errorf("provide lesson text or --file")
		}

		s, err := requireStore()
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		ctx := cmd.Context()

		if teachFile != "" {
			data, err := os.ReadFile(teachFile)
			if err != nil {
				return fmt.Errorf("read lessons file: %w", err)
			}
			var seeds []lessonSeed
			if err := yaml.Unmarshal(data, &seeds); err != nil {
				return fmt.Errorf("parse lessons file: %w", err)
			}

			stored := 0
			for _, seed := range seeds {
				if strings.TrimSpace(seed.Text) == "" {
					continue
				}
				category := seed.Category
				if category == "" {
					category = "general"
				}
				id, err := s.Add(ctx, seed.Text, category)
				if err != nil {
					return fmt.Errorf("store lesson %q: %w", seed.Text, err)
				}
				ui.VerboseLog("stored %s (%s)", id, category)
				stored++
			}
			ui.Success("stored %d lessons from %s", stored, teachFile)
			return nil
		}

		text := strings.Join(args, " ")
		id, err := s.Add(ctx, text, teachCategory)
		if err != nil {
			return fmt.Errorf("store lesson: %w", err)
		}
		ui.Success("stored lesson %s (%s)", id, teachCategory)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(teachCmd)

	teachCmd.Flags().StringVarP(&teachCategory, "category", "c", "general", "Lesson category label")
	teachCmd.Flags().StringVarP(&teachFile, "file", "f", "", "YAML file with lessons to store")
}
