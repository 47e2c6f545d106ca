package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/molad-api/internal/calendar"
)

func roshChodeshCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rosh-chodesh [YYYY-MM-DD]",
		Short: "Print the Rosh Chodesh days of the month after a date (default today)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := opts.dateArg(args)
			if err != nil {
				return err
			}
			info, err := calendar.RoshChodeshOf(date)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), info, func(w io.Writer) {
				if len(info.Days) == 0 {
					fmt.Fprintf(w, "Rosh Chodesh %s %d: none announced (Rosh Hashanah)\n", info.MonthName, info.Year)
					return
				}
				fmt.Fprintf(w, "Rosh Chodesh %s %d: %s\n", info.MonthName, info.Year, info.Text)
				for i, d := range info.Dates {
					fmt.Fprintf(w, "  %s  %s\n", d, info.Days[i])
				}
			})
		},
	}
}
