package cli

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackviz/pkg/errors"
	"github.com/matzehuels/trackviz/pkg/pipeline"
	"github.com/matzehuels/trackviz/pkg/source"
)

// chartFlags are the chart options shared by render, inspect and explore.
// Zero values fall back to the loaded configuration.
type chartFlags struct {
	width, height int
	maxRecords    int
	ease          string
	stagger       int64
	entrance      int64
	hover         int64
	lowColor      string
	highColor     string
	title         string
	noCache       bool
	refresh       bool
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.width, "width", 0, "surface width in pixels (default 1100)")
	cmd.Flags().IntVar(&f.height, "height", 0, "surface height in pixels (default 650)")
	cmd.Flags().IntVar(&f.maxRecords, "max", 0, "maximum number of marks (default 300)")
	cmd.Flags().StringVar(&f.ease, "ease", "", "entrance easing: elastic (default), back, bounce, cubic, linear")
	cmd.Flags().Int64Var(&f.stagger, "stagger", 0, "entrance delay between marks in ms (default 15)")
	cmd.Flags().Int64Var(&f.entrance, "entrance", 0, "entrance duration in ms (default 2000)")
	cmd.Flags().Int64Var(&f.hover, "hover", 0, "hover transition duration in ms (default 200)")
	cmd.Flags().StringVar(&f.lowColor, "low-color", "", "color of the fewest followers")
	cmd.Flags().StringVar(&f.highColor, "high-color", "", "color of the most followers")
	cmd.Flags().StringVar(&f.title, "title", "", "page title")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached tables and artifacts")
}

// options layers the flags over the configured options for input.
func (c *CLI) options(input string, f *chartFlags) pipeline.Options {
	opts := c.Config.PipelineOptions()
	opts.Source = input
	opts.Refresh = f.refresh
	opts.Logger = c.Logger

	setIf(&opts.Width, f.width)
	setIf(&opts.Height, f.height)
	setIf(&opts.MaxRecords, f.maxRecords)
	setIf(&opts.StaggerMS, f.stagger)
	setIf(&opts.EntranceMS, f.entrance)
	setIf(&opts.HoverMS, f.hover)
	setIf(&opts.Ease, f.ease)
	setIf(&opts.LowColor, f.lowColor)
	setIf(&opts.HighColor, f.highColor)
	setIf(&opts.Title, f.title)
	return opts
}

func setIf[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}

// renderOpts holds the flags of the render command.
type renderOpts struct {
	chartFlags
	output  string
	formats string
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <csv|url>",
		Short: "Render a track table to chart artifacts",
		Long: `Render a track table to chart artifacts.

The source is a local CSV file, an http(s) URL or a gs://bucket/object.
If the table cannot be loaded, the error page is written in place of the
html chart and the command fails.`,
		Example: `  trackviz render tracks.csv
  trackviz render tracks.csv -f html,png -o out/chart
  trackviz render https://example.com/tracks.csv --max 100 --ease bounce`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(opts.formats)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], formats, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): html (default), svg, png, json (comma-separated)")
	opts.register(cmd)

	return cmd
}

// runRender executes the pipeline and writes each artifact.
func (c *CLI) runRender(ctx context.Context, input string, formats []string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := c.options(input, &opts.chartFlags)
	popts.Formats = formats

	var spin *Spinner
	if source.Classify(input).Remote() {
		spin = newSpinnerWithContext(ctx, "Fetching "+input)
		spin.Start()
	}
	result, err := runner.Execute(ctx, popts)
	if spin != nil {
		spin.Stop()
	}
	if err != nil {
		return c.writeFailure(ctx, input, err, popts, opts)
	}
	prog.step("pipeline", "kept", result.Stats.Kept, "cached", result.CacheInfo.RenderHit)

	base := basePath(opts.output, input)
	for _, format := range formats {
		p := outputPath(opts.output, base, format, len(formats))
		if err := writeFile(p, result.Artifacts[format]); err != nil {
			return err
		}
		printFile(p)
	}
	printStats(result.Stats.Stats, result.CacheInfo.RenderHit)
	prog.done("Rendered "+input, "records", result.Stats.Kept, "files", len(formats))
	return nil
}

// writeFailure writes the error page where the html chart would have gone
// and returns err marked as reported. Errors other than DATA_LOAD are
// returned as is.
func (c *CLI) writeFailure(ctx context.Context, input string, err error, popts pipeline.Options, opts *renderOpts) error {
	if !pipeline.IsDataLoad(err) {
		return err
	}
	page, ferr := pipeline.RenderFailure(err, popts)
	if ferr != nil {
		return ferr
	}
	p := basePath(opts.output, input) + "." + pipeline.FormatHTML
	if werr := writeFile(p, page); werr != nil {
		loggerFromContext(ctx).Error("write error page", "path", p, "err", werr)
		return err
	}
	printError("%s", errors.UserMessage(err))
	printFile(p)
	return &reportedError{err: err}
}

// basePath derives the base output path. Without an output it is the
// input's file name without extension, in the working directory for
// remote inputs. A known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		name := input
		if source.Classify(input).Remote() {
			name = path.Base(strings.SplitN(input, "?", 2)[0])
		}
		return strings.TrimSuffix(name, filepath.Ext(name))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file for one format. A single format with an
// explicit output path writes exactly there.
func outputPath(output, base, format string, n int) string {
	if n == 1 && output != "" && filepath.Ext(output) != "" {
		return output
	}
	return base + "." + format
}

func writeFile(p string, data []byte) error {
	if dir := filepath.Dir(p); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", p)
	}
	return nil
}
