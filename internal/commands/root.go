package commands

import (
	"github.com/spf13/cobra"

	"github.com/schoolbank/passbook/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:     "passbook",
		Short:   "School banking passbook ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.root, "root", ".", "project directory")

	rootCmd.AddCommand(
		newInitCommand(opts),
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newStudentCommand(opts),
		newBankCommand(opts),
		newAccountCommand(opts),
		newTxnCommand(opts),
		newPassbookCommand(opts),
		newBalanceCommand(opts),
		newHistoryCommand(opts),
		newSummaryCommand(opts),
		newCheckCommand(opts),
		newTokenCommand(opts),
		newServeCommand(opts),
	)

	return rootCmd
}
