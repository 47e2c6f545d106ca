package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/molad-api/internal/calendar"
)

func gregorianCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "gregorian YEAR MONTH DAY",
		Short:   "Convert a Hebrew date to a Gregorian date",
		Args:    cobra.ExactArgs(3),
		Example: "  molad gregorian 5785 Tishrei 1\n  molad gregorian 5784 13 1",
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[0])
			}
			month, err := parseMonth(year, args[1])
			if err != nil {
				return err
			}
			day, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid day %q", args[2])
			}

			hebrew := calendar.HebrewDate{Year: year, Month: month, Day: day}
			date, err := calendar.GregorianOf(hebrew)
			if err != nil {
				return err
			}

			out := map[string]any{
				"hebrew":    hebrew,
				"gregorian": date,
				"weekday":   calendar.WeekdayName(date.Weekday()),
			}
			return opts.print(cmd.OutOrStdout(), out, func(w io.Writer) {
				fmt.Fprintf(w, "%s is %s (%s)\n", hebrew, date, calendar.WeekdayName(date.Weekday()))
			})
		},
	}
}

// parseMonth accepts a month number (Nisan=1 ... Adar II=13) or a month
// name such as "Tishrei", "Adar I" or "adar-ii".
func parseMonth(year int, s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}

	want := normalizeMonth(s)
	for m := calendar.Nisan; m <= calendar.AdarII; m++ {
		if normalizeMonth(calendar.MonthName(year, m)) == want {
			return m, nil
		}
	}
	// "Adar" in a leap year means Adar I; "Adar I" in a common year means Adar.
	switch want {
	case "adar", "adari":
		return calendar.Adar, nil
	}
	return 0, fmt.Errorf("unknown month %q", s)
}

func normalizeMonth(s string) string {
	s = strings.ToLower(s)
	return strings.NewReplacer(" ", "", "-", "", "_", "").Replace(s)
}
