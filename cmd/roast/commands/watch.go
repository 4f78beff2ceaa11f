package commands

import "github.com/spf13/cobra"

func (c *CLI) newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [patterns...]",
		Short: "Compile, then recompile whenever sources or the configuration change",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Watch(cmd.Context(), runOptions(cmd, args))
		},
	}
	addCompileFlags(cmd)
	return cmd
}
