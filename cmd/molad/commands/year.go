package commands

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/molad-api/internal/calendar"
)

func yearCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "year YEAR",
		Short: "Print the months of a Hebrew year with their start dates and molados",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			info, err := calendar.DescribeYear(year)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), info, func(w io.Writer) {
				kind := "common"
				if info.Leap {
					kind = "leap"
				}
				fmt.Fprintf(w, "Year %d: %s, %d days, %d months\n\n", info.Year, kind, info.Days, len(info.Months))

				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "MONTH\tDAYS\tSTARTS\tMOLAD")
				for _, m := range info.Months {
					fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", m.Name, m.Length, m.Start, m.Molad.Friendly)
				}
				tw.Flush()
			})
		},
	}
}
