package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/framefit/framefit/pkg/canvas"
	"github.com/framefit/framefit/pkg/classify"
	"github.com/framefit/framefit/pkg/render"
	"github.com/framefit/framefit/pkg/resize"
)

// canvasDoc is the JSON document accepted by the resize command.
type canvasDoc struct {
	Canvas   canvas.Size      `json:"canvas"`
	Elements []canvas.Element `json:"elements"`
}

// resizeCommand creates the resize command for adapting a layout locally.
func (c *CLI) resizeCommand() *cobra.Command {
	var (
		width     float64
		height    float64
		userID    string
		imagePath string
		output    string
		svgPath   string
		optimizeF bool
		threshold float64
		noCache   bool
	)

	cmd := &cobra.Command{
		Use:   "resize [canvas.json]",
		Short: "Adapt a canvas layout to new dimensions",
		Long: `Adapt a canvas layout to new dimensions.

The resize command takes a canvas.json file holding the current canvas size
and its elements, and produces a placement for every element on the target
canvas. When GEMINI_API_KEY is set the vision model proposes the layout;
otherwise (or on any model failure) a deterministic geometric planner is
used, so the command always succeeds on valid input.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readCanvasDoc(args[0])
			if err != nil {
				return err
			}
			opts := resize.Options{
				Elements:          doc.Elements,
				Current:           doc.Canvas,
				Target:            canvas.Size{Width: width, Height: height},
				UserID:            userID,
				ApplyOptimizer:    optimizeF,
				OptimizeThreshold: threshold,
				SkipCache:         noCache,
				Logger:            c.Logger,
			}
			if imagePath != "" {
				img, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image %s: %w", imagePath, err)
				}
				opts.Image = img
			}
			return c.runResize(cmd.Context(), opts, output, svgPath, noCache)
		},
	}

	cmd.Flags().Float64VarP(&width, "width", "W", 0, "target canvas width (required)")
	cmd.Flags().Float64VarP(&height, "height", "H", 0, "target canvas height (required)")
	_ = cmd.MarkFlagRequired("width")
	_ = cmd.MarkFlagRequired("height")

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for the result JSON (default stdout)")
	cmd.Flags().StringVar(&svgPath, "svg", "", "also write an SVG preview of the result")
	cmd.Flags().StringVar(&userID, "user", "", "user ID for sticky variant assignment")
	cmd.Flags().StringVar(&imagePath, "image", "", "PNG snapshot of the current canvas for the model")
	cmd.Flags().BoolVar(&optimizeF, "optimize", false, "run the aesthetic optimizer on low-scoring results")
	cmd.Flags().Float64Var(&threshold, "threshold", resize.DefaultOptimizeThreshold, "score below which the optimizer runs")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runResize builds a local engine and drives one resize operation.
func (c *CLI) runResize(ctx context.Context, opts resize.Options, output, svgPath string, noCache bool) error {
	engine, closeEngine, err := c.newEngine(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}
	defer closeEngine()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Resizing to %.0fx%.0f...", opts.Target.Width, opts.Target.Height))
	spinner.Start()
	p := newProgress(c.Logger)

	result, err := engine.Resize(ctx, opts)
	if err != nil {
		spinner.StopWithError("Resize failed")
		return err
	}
	spinner.Stop()
	p.done(fmt.Sprintf("Resized %d elements", len(opts.Elements)))

	if err := writeResult(result, output); err != nil {
		return err
	}

	printSuccess("Layout adapted to %.0fx%.0f", opts.Target.Width, opts.Target.Height)
	printResultStats(len(opts.Elements), result.Score.Total, result.UsedFallback, result.CacheHit)
	for _, note := range result.Notes {
		printDetail("%s", note)
	}
	if output != "" {
		printFile(output)
	}

	if svgPath != "" {
		analyses := classify.Classify(opts.Elements, opts.Current, c.Logger)
		svg := render.RenderSVG(opts.Elements, result.Placements, opts.Target,
			render.WithAnalyses(analyses), render.WithLabels())
		if err := os.WriteFile(svgPath, svg, 0o644); err != nil {
			return fmt.Errorf("write svg %s: %w", svgPath, err)
		}
		printFile(svgPath)
	}
	return nil
}

// readCanvasDoc loads and validates the input document.
func readCanvasDoc(path string) (*canvasDoc, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read canvas %s: %w", path, err)
	}
	var doc canvasDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse canvas %s: %w", path, err)
	}
	return &doc, nil
}

// writeResult marshals the result to the output path, or stdout when empty.
func writeResult(result *resize.Result, output string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if output == "" || output == "-" {
		fmt.Println(strings.TrimRight(string(data), "\n"))
		return nil
	}
	return os.WriteFile(output, append(data, '\n'), 0o644)
}
