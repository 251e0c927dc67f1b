package cli

import (
	"github.com/spf13/cobra"

	"github.com/framefit/framefit/pkg/store"
)

// feedbackCommand creates the feedback command for rating a resize session.
func (c *CLI) feedbackCommand() *cobra.Command {
	var (
		addr    string
		rating  int
		helpful bool
		text    string
	)

	cmd := &cobra.Command{
		Use:   "feedback [session-id]",
		Short: "Rate a resize session on a running server",
		Long: `Rate a resize session on a running server.

Feedback folds into the prompt variant's metrics and, for decisive ratings
(4-5 or 1-2), produces a training example used by retrain.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]any{"rating": rating, "feedback_text": text}
			if cmd.Flags().Changed("helpful") {
				body["helpful"] = helpful
			}

			var session store.Session
			api := newAPIClient(addr)
			if err := api.postJSON(cmd.Context(), "/api/v1/sessions/"+args[0]+"/feedback", body, &session); err != nil {
				return err
			}

			printSuccess("Feedback recorded for session %s", session.ID)
			printDetail("rating %d, variant %s", rating, session.VariantID)
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAPIAddr, "server address")
	cmd.Flags().IntVarP(&rating, "rating", "r", 0, "rating from 1 to 5 (required)")
	_ = cmd.MarkFlagRequired("rating")
	cmd.Flags().BoolVar(&helpful, "helpful", false, "mark the result as helpful (or --helpful=false)")
	cmd.Flags().StringVar(&text, "text", "", "free-form feedback text")

	return cmd
}
