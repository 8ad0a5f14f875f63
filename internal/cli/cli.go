package cli

import (
	"context"
	stderrors "errors"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trackviz/internal/config"
	"github.com/matzehuels/trackviz/pkg/buildinfo"
	"github.com/matzehuels/trackviz/pkg/cache"
	"github.com/matzehuels/trackviz/pkg/pipeline"
	"github.com/matzehuels/trackviz/pkg/source"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// reportedError marks an error the command has already shown to the user.
type reportedError struct{ err error }

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already printed by the command that
// returned it. main still uses the error for the exit code.
func IsReported(err error) bool {
	var r *reportedError
	return stderrors.As(err, &r)
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config *config.Config

	// Loader overrides the source loader; nil reads real files and URLs.
	Loader source.Loader
}

// New creates a new CLI instance writing logs to w.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.New(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "trackviz",
		Short: "Trackviz charts track popularity over time",
		Long: `Trackviz turns a table of tracks into an animated, interactive scatter
chart: release date against popularity, sized by duration and colored by
artist followers.`,
		Version:       buildinfo.Short(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			c.Config = cfg
			if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil && c.Logger.GetLevel() != log.DebugLevel {
				c.SetLogLevel(lvl)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(ch, c.Config.Keyer(), c.Logger)
	if c.Loader != nil {
		r.Loader = c.Loader
	} else {
		r.Loader = source.NewOpener(source.WithTimeout(c.Config.FetchTimeout))
	}
	return r, nil
}

// openCache opens the configured cache. A file cache that cannot be created
// degrades to no caching; a redis cache that cannot be reached is an error.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := c.Config.OpenCache(ctx)
	if err != nil && c.Config.Cache == config.CacheFile {
		c.Logger.Warn("cache disabled", "dir", c.Config.CacheDir, "err", err)
		return cache.NewNullCache(), nil
	}
	return ch, err
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatHTML}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
