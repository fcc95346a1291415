package commands

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/schoolbank/passbook/internal/id"
	"github.com/schoolbank/passbook/internal/ledger"
)

func newTable(w io.Writer, columns ...string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(columns, "\t"))
	return tw
}

func row(tw *tabwriter.Writer, cells ...any) {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = fmt.Sprint(c)
	}
	fmt.Fprintln(tw, strings.Join(parts, "\t"))
}

// recordID parses the single positional ID argument of update and delete.
func recordID(kind string, args []string) (int64, error) {
	return id.Parse(kind, args[0])
}

func parseDay(flag, value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(ledger.DayLayout, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s must be YYYY-MM-DD: %w", flag, err)
	}
	return t, nil
}

func changed(cmd *cobra.Command, name string) bool {
	return cmd.Flags().Changed(name)
}
