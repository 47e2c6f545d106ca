package commands

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/molad-api/internal/calendar"
)

func moladCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "molad [YEAR MONTH]",
		Short: "Print the molad of a Hebrew month (default the coming month)",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("accepts 0 or 2 args, received %d", len(args))
			}
			return nil
		},
		Example: "  molad molad\n  molad molad 5785 Shevat",
		RunE: func(cmd *cobra.Command, args []string) error {
			var year, month int
			if len(args) == 0 {
				today, err := opts.today()
				if err != nil {
					return err
				}
				hebrew, err := calendar.HebrewOf(today)
				if err != nil {
					return err
				}
				next := calendar.NextMonth(hebrew)
				year, month = next.Year, next.Month
			} else {
				var err error
				if year, err = strconv.Atoi(args[0]); err != nil {
					return fmt.Errorf("invalid year %q", args[0])
				}
				if month, err = parseMonth(year, args[1]); err != nil {
					return err
				}
			}

			m, err := calendar.MoladOf(year, month)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), m, func(w io.Writer) {
				fmt.Fprintf(w, "Molad %s %d: %s (%s)\n", m.MonthName, m.Year, m.Friendly, m.Date)
			})
		},
	}
}
