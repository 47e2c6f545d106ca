package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/molad-api/internal/calendar"
)

func convertCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "convert [YYYY-MM-DD]",
		Short:   "Convert a Gregorian date to a Hebrew date (default today)",
		Args:    cobra.MaximumNArgs(1),
		Example: "  molad convert 2024-10-03",
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := opts.dateArg(args)
			if err != nil {
				return err
			}
			hebrew, err := calendar.HebrewOf(date)
			if err != nil {
				return err
			}

			out := map[string]any{
				"gregorian": date,
				"weekday":   calendar.WeekdayName(date.Weekday()),
				"hebrew":    hebrew,
				"text":      hebrew.String(),
			}
			return opts.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "%s (%s) is %s\n", date, calendar.WeekdayName(date.Weekday()), hebrew)
			})
		},
	}
}
