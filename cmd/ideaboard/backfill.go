package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	dombackfill "github.com/kailas-cloud/ideaboard/internal/domain/backfill"
	backfilluc "github.com/kailas-cloud/ideaboard/internal/usecase/backfill"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Embed ideas that were stored without a vector",
	Long: `Find ideas without an embedding and compute one for each.

Ideas saved while the embedding provider was down are stored without a vector
and stay invisible to similarity search until backfilled.

Examples:
  # Show what would be processed
  ideaboard backfill --dry-run

  # Embed at most 100 ideas with 8 workers
  ideaboard backfill --limit 100 --concurrency 8`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		limit, _ := cmd.Flags().GetInt("limit")
		concurrency, _ := cmd.Flags().GetInt("concurrency")

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.close()

		if !cmd.Flags().Changed("limit") {
			limit = a.cfg.Backfill.Limit
		}

		report, err := a.backfill.Run(cmd.Context(), backfilluc.Options{
			DryRun:      dryRun,
			Limit:       limit,
			Concurrency: concurrency,
		})
		if err != nil {
			return fmt.Errorf("backfill: %w", err)
		}
		printReport(cmd, &report)
		if report.Failed > 0 {
			return fmt.Errorf("%d ideas failed to embed", report.Failed)
		}
		return nil
	},
}

func init() {
	backfillCmd.Flags().Bool("dry-run", false, "list pending ideas without embedding them")
	backfillCmd.Flags().Int("limit", 0, "maximum ideas to process (0 = all)")
	backfillCmd.Flags().Int("concurrency", 0, "parallel embed calls (0 = config value)")
	rootCmd.AddCommand(backfillCmd)
}

func printReport(cmd *cobra.Command, r *dombackfill.Report) {
	out := cmd.OutOrStdout()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	if r.DryRun {
		fmt.Fprintf(out, "%s %d ideas without embedding, nothing embedded\n", cyan("dry run:"), r.Pending)
		for _, res := range r.Results {
			fmt.Fprintf(out, "  %s\n", res.IdeaID())
		}
		return
	}

	for _, res := range r.Results {
		if res.Status() == dombackfill.StatusOK {
			fmt.Fprintf(out, "  %s %s\n", green("ok"), res.IdeaID())
			continue
		}
		fmt.Fprintf(out, "  %s %s: %v\n", red("error"), res.IdeaID(), res.Err())
	}
	fmt.Fprintf(out, "\n%d total, %s, %s\n", r.Total,
		green(fmt.Sprintf("%d embedded", r.Successful)),
		red(fmt.Sprintf("%d failed", r.Failed)))
}
