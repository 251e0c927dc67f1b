// Package cli implements the framefit command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/framefit/framefit/pkg/buildinfo"
	"github.com/framefit/framefit/pkg/cache"
	"github.com/framefit/framefit/pkg/experiment"
	"github.com/framefit/framefit/pkg/resize"
	"github.com/framefit/framefit/pkg/store"
	"github.com/framefit/framefit/pkg/vision"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "framefit"

	// defaultAPIAddr is where the remote commands look for a running server.
	defaultAPIAddr = "http://localhost:8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "framefit",
		Short:        "Framefit adapts canvas layouts to new dimensions",
		Long:         `Framefit resizes design-canvas layouts to new target dimensions, combining a vision model with a deterministic geometric planner so every element lands inside the new frame.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.feedbackCommand())
	root.AddCommand(c.retrainCommand())
	root.AddCommand(c.variantsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Engine Factory
// =============================================================================

// newEngine creates a local resize engine for CLI use. The model is enabled
// when GEMINI_API_KEY is set; otherwise the engine runs planner-only. The
// returned closer releases the cache.
func (c *CLI) newEngine(ctx context.Context, noCache bool) (*resize.Engine, func(), error) {
	backend, err := newCache(noCache)
	if err != nil {
		return nil, nil, err
	}

	var model vision.Model
	if os.Getenv("GEMINI_API_KEY") != "" {
		gm, err := vision.NewGeminiModel(ctx, "")
		if err != nil {
			backend.Close()
			return nil, nil, err
		}
		model = gm
	} else {
		c.Logger.Debug("GEMINI_API_KEY not set, running planner-only")
	}

	selector := experiment.NewSelector(experiment.DefaultVariants())
	engine := resize.NewEngine(model, selector, store.NewMemoryStore(), backend, c.Logger)
	return engine, func() { backend.Close() }, nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/framefit/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
