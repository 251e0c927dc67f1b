package cli

import (
	"fmt"
	"net/url"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/framefit/framefit/pkg/experiment"
)

// variantsCommand creates the variants command group.
func (c *CLI) variantsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variants",
		Short: "Inspect and manage prompt variants on a running server",
	}

	cmd.AddCommand(c.variantsListCommand())
	cmd.AddCommand(c.variantsBrowseCommand())
	cmd.AddCommand(c.variantsOptimizeCommand())
	cmd.AddCommand(c.variantsSignificanceCommand())

	return cmd
}

// variantsListCommand creates the "variants list" subcommand.
func (c *CLI) variantsListCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List prompt variants with their metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			variants, err := fetchVariants(cmd, addr)
			if err != nil {
				return err
			}
			for _, v := range variants {
				status := StyleSuccess.Render("active")
				if !v.Active {
					status = StyleDim.Render("inactive")
				}
				printInfo("%s %s", StyleHighlight.Render(v.ID), status)
				printDetail("weight %.0f%% · %d uses · avg rating %.2f · success %.0f%%",
					v.Weight, v.Metrics.TotalUses, v.Metrics.AverageRating, v.Metrics.SuccessRate)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAPIAddr, "server address")
	return cmd
}

// variantsBrowseCommand creates the interactive "variants browse" subcommand.
func (c *CLI) variantsBrowseCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse variants and their prompt templates interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			variants, err := fetchVariants(cmd, addr)
			if err != nil {
				return err
			}
			if len(variants) == 0 {
				printInfo("No variants registered")
				return nil
			}

			model := NewVariantListModel(variants)
			if _, err := tea.NewProgram(model).Run(); err != nil {
				return fmt.Errorf("run browser: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAPIAddr, "server address")
	return cmd
}

// variantsOptimizeCommand creates the "variants optimize" subcommand.
func (c *CLI) variantsOptimizeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Shift traffic weights toward the best-performing variant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var variants []experiment.Variant
			api := newAPIClient(addr)
			if err := api.postJSON(cmd.Context(), "/api/v1/variants/optimize", nil, &variants); err != nil {
				return err
			}

			printSuccess("Weights rebalanced across %d variants", len(variants))
			for _, v := range variants {
				if !v.Active {
					continue
				}
				printDetail("%-16s %.0f%%", v.ID, v.Weight)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAPIAddr, "server address")
	return cmd
}

// variantsSignificanceCommand creates the "variants significance" subcommand.
func (c *CLI) variantsSignificanceCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "significance [variant-a] [variant-b]",
		Short: "Test whether two variants' success rates differ significantly",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{"a": {args[0]}, "b": {args[1]}}

			var sig experiment.Significance
			api := newAPIClient(addr)
			if err := api.getJSON(cmd.Context(), "/api/v1/variants/significance?"+query.Encode(), &sig); err != nil {
				return err
			}

			if sig.Significant {
				printSuccess("Difference is significant (z=%.2f, confidence %.1f%%)", sig.ZScore, sig.Confidence*100)
			} else {
				printInfo("No significant difference (z=%.2f, confidence %.1f%%)", sig.ZScore, sig.Confidence*100)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", defaultAPIAddr, "server address")
	return cmd
}

func fetchVariants(cmd *cobra.Command, addr string) ([]experiment.Variant, error) {
	var variants []experiment.Variant
	api := newAPIClient(addr)
	if err := api.getJSON(cmd.Context(), "/api/v1/variants/", &variants); err != nil {
		return nil, err
	}
	return variants, nil
}
