package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trackviz/pkg/catalog"
	"github.com/matzehuels/trackviz/pkg/interact"
	"github.com/matzehuels/trackviz/pkg/pipeline"
)

const defaultInspectTop = 10

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var (
		flags chartFlags
		top   int
	)

	cmd := &cobra.Command{
		Use:   "inspect <csv|url>",
		Short: "Show how a track table normalizes",
		Long: `Load a track table, normalize it into the working set and print the
row counts, value extents and the most popular records.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], &flags, top)
		},
	}

	cmd.Flags().IntVarP(&top, "top", "n", defaultInspectTop, "number of records to list")
	cmd.Flags().IntVar(&flags.maxRecords, "max", 0, "maximum number of records kept (default 300)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore the cached table")

	return cmd
}

func (c *CLI) runInspect(ctx context.Context, input string, flags *chartFlags, top int) error {
	ws, _, hit, err := c.loadWorkingSet(ctx, input, flags)
	if err != nil {
		return err
	}

	st := ws.Stats()
	fmt.Fprintln(stdout, StyleTitle.Render(input))
	printStats(st, hit)
	fmt.Fprintln(stdout)

	printKeyValue("rows", strconv.Itoa(st.Rows))
	printKeyValue("kept", strconv.Itoa(st.Kept))
	printKeyValue("filtered", strconv.Itoa(st.Filtered))
	printKeyValue("truncated", strconv.Itoa(st.Truncated))
	printKeyValue("anomalies", strconv.Itoa(st.Anomalies))

	jx, dur, fol := ws.JitterExtent(), ws.DurationExtent(), ws.FollowerExtent()
	printKeyValue("release", fmt.Sprintf("%.2f .. %.2f", jx.Min, jx.Max))
	printKeyValue("duration", fmt.Sprintf("%s .. %s min", interact.FormatDuration(dur.Min), interact.FormatDuration(dur.Max)))
	printKeyValue("followers", fmt.Sprintf("%s .. %s", interact.FormatFollowers(int64(fol.Min)), interact.FormatFollowers(int64(fol.Max))))
	fmt.Fprintln(stdout)

	recs := ws.Records()
	if top >= 0 && top < len(recs) {
		recs = recs[:top]
	}
	fmt.Fprintln(stdout, recordTable(recs))
	return nil
}

// loadWorkingSet loads and normalizes input without rendering anything.
// It returns the validated options it used.
func (c *CLI) loadWorkingSet(ctx context.Context, input string, flags *chartFlags) (*catalog.WorkingSet, pipeline.Options, bool, error) {
	opts := c.options(input, flags)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, opts, false, err
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return nil, opts, false, err
	}
	defer runner.Close()

	data, hit, err := runner.LoadWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, opts, false, err
	}
	ws, err := pipeline.Parse(data, opts)
	if err != nil {
		return nil, opts, false, err
	}
	return ws, opts, hit, nil
}
