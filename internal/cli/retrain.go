package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/framefit/framefit/pkg/resize"
)

// retrainCommand creates the retrain command for running offline analysis.
func (c *CLI) retrainCommand() *cobra.Command {
	var (
		addr      string
		daysBack  int
		minRating int
	)

	cmd := &cobra.Command{
		Use:   "retrain",
		Short: "Analyze accumulated feedback into prompt improvements",
		Long: `Analyze accumulated feedback into prompt improvements.

Retrain reads training examples and rated sessions from the server's store,
separates high-quality from low-quality outcomes, and prints candidate
prompt additions. It never changes live variant weights; promote a prompt
with 'variants optimize' once it has accumulated real usage.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]int{"days_back": daysBack, "min_rating": minRating}

			var report resize.RetrainReport
			api := newAPIClient(addr)
			if err := api.postJSON(cmd.Context(), "/api/v1/retrain", body, &report); err != nil {
				return err
			}

			printSuccess("Analyzed %d sessions and %d examples", report.SessionsRead, report.ExamplesRead)
			printKeyValue("high quality", fmt.Sprintf("%d examples", report.Patterns.HighQuality.Count))
			printKeyValue("low quality", fmt.Sprintf("%d examples", report.Patterns.LowQuality.Count))

			if len(report.ImprovedPrompts) == 0 {
				printInfo("No prompt improvements suggested")
				return nil
			}
			printNewline()
			printInfo("Suggested prompt additions:")
			for _, p := range report.ImprovedPrompts {
				printDetail("- %s", p)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAPIAddr, "server address")
	cmd.Flags().IntVar(&daysBack, "days", 30, "how many days of history to analyze")
	cmd.Flags().IntVar(&minRating, "min-rating", 4, "minimum rating counted as positive signal")

	return cmd
}
