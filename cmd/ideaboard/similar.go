package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	similarityuc "github.com/kailas-cloud/ideaboard/internal/usecase/similarity"
)

var similarCmd = &cobra.Command{
	Use:   "similar <text>",
	Short: "Find existing ideas similar to text",
	Long: `Run the same similarity lookup the API serves on POST /ideas/similar.

Examples:
  ideaboard similar "Dark mode for the dashboard, the white theme hurts at night"
  ideaboard similar --threshold 0.6 --limit 10 "export ideas to CSV"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var threshold *float64
		if cmd.Flags().Changed("threshold") {
			v, _ := cmd.Flags().GetFloat64("threshold")
			threshold = &v
		}
		limit, _ := cmd.Flags().GetInt("limit")
		exclude, _ := cmd.Flags().GetString("exclude")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		matches := a.similar.FindSimilar(cmd.Context(), similarityuc.Request{
			Text:      strings.Join(args, " "),
			Threshold: threshold,
			Limit:     limit,
			ExcludeID: exclude,
		})

		out := cmd.OutOrStdout()
		if len(matches) == 0 {
			fmt.Fprintln(out, color.New(color.FgYellow).Sprint("no similar ideas"))
			return nil
		}
		bold := color.New(color.Bold).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		for _, m := range matches {
			fmt.Fprintf(out, "%s %s  %s (%d votes)\n", cyan(fmt.Sprintf("%.3f", m.Score)), bold(m.Title), m.IdeaID, m.Votes)
			fmt.Fprintf(out, "      %s\n", m.ProblemExcerpt)
		}
		return nil
	},
}

func init() {
	similarCmd.Flags().Float64("threshold", 0, "minimum similarity (config default when unset)")
	similarCmd.Flags().Int("limit", 0, "maximum matches (0 = config default)")
	similarCmd.Flags().String("exclude", "", "idea ID to leave out of the results")
	rootCmd.AddCommand(similarCmd)
}
