package commands

import (
	"github.com/pindeps/lockstep/internal/app"
	"github.com/spf13/cobra"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [variants...]",
		Short: "Compile spec files into lock files and sync the environment",
		Long: `Run the compile and sync steps for the named variants, or for every
configured variant when none are named. The sync step only runs after a
successful compile; the first failing tool aborts the run and its exit
code becomes lockstep's exit code.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			compileOnly, _ := cmd.Flags().GetBool("compile-only")
			watch, _ := cmd.Flags().GetBool("watch")

			return c.app.Run(cmd.Context(), args, app.RunOptions{
				Force:       force,
				CompileOnly: compileOnly,
				Watch:       watch,
			})
		},
	}
	cmd.Flags().BoolP("force", "f", false, "Run both steps even when the variant is up to date")
	cmd.Flags().Bool("compile-only", false, "Refresh the lock file without syncing the environment")
	cmd.Flags().BoolP("watch", "w", false, "Re-run variants when their spec files change")
	return cmd
}
