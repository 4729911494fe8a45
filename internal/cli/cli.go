package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/autoreqs/pkg/buildinfo"
	"github.com/matzehuels/autoreqs/pkg/cache"
	"github.com/matzehuels/autoreqs/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "autoreqs"

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

	// loadEnvironment overrides interpreter discovery in tests.
	loadEnvironment pipeline.EnvironmentLoader
}

// New creates a new CLI instance logging to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "autoreqs keeps requirements.txt in sync with your imports",
		Long: `autoreqs statically scans a Python project for the packages it imports,
compares them with requirements.txt, and adds missing requirements or removes
unused ones.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			c.SetLogLevel(LogDebug)
		}
	}

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.upgradeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner whose index responses are memoized
// for the duration of the command.
func (c *CLI) newRunner() *pipeline.Runner {
	memo, err := cache.NewMemoryCache(cache.DefaultMemorySize)
	if err != nil {
		c.Logger.Debug("memory cache unavailable", "err", err)
		memo = cache.NewNullCache()
	}
	runner := pipeline.NewRunner(memo, c.Logger)
	if c.loadEnvironment != nil {
		runner.LoadEnvironment = c.loadEnvironment
	}
	return runner
}
