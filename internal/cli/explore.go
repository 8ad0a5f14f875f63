package cli

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trackviz/pkg/interact"
	"github.com/matzehuels/trackviz/pkg/pipeline"
)

// exploreCommand creates the explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	var flags chartFlags

	cmd := &cobra.Command{
		Use:   "explore <csv|url>",
		Short: "Explore a chart's hover and click behavior in the terminal",
		Long: `Build the chart for a track table and drive its pointer state machine
from the keyboard. Each row is one mark; the table shows its state, radius
and opacity as the transitions play.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), args[0], &flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func (c *CLI) runExplore(ctx context.Context, input string, flags *chartFlags) error {
	ws, opts, _, err := c.loadWorkingSet(ctx, input, flags)
	if err != nil {
		return err
	}
	scene, _, err := pipeline.Build(ws, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewExploreModel(interact.NewController(scene)), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	return err
}
