package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCommand(opts *options) *cobra.Command {
	var fix bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check stored records for drift and dangling references (admin)",
		Args:  cobra.NoArgs,
		RunE: opts.admin(func(cmd *cobra.Command, args []string, rt *runtime) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if fix {
				n, err := rt.svc.Fix(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Restated %d transaction totals\n", n)
			}

			issues, err := rt.svc.Check(ctx)
			if err != nil {
				return err
			}
			if len(issues) == 0 {
				fmt.Fprintln(out, "No issues found")
				return nil
			}
			for _, is := range issues {
				fmt.Fprintln(out, is)
			}
			return fmt.Errorf("%d integrity issues found", len(issues))
		}),
	}
	cmd.Flags().BoolVar(&fix, "fix", false, "restate stored transaction totals before checking")
	return cmd
}
