package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/molad-api/internal/calendar"
)

func factsCmd(opts *options) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "facts",
		Short: "Print molad, Rosh Chodesh and Shabbos Mevorchim facts for a moment",
		Args:  cobra.NoArgs,
		Example: "  molad facts\n" +
			"  molad facts --at 2025-01-25T10:00:00+02:00\n" +
			"  molad facts --at 2025-01-22 --lat 40.7128 --lon -74.006 --tz America/New_York",
		RunE: func(cmd *cobra.Command, args []string) error {
			moment, err := parseMoment(at, opts.location)
			if err != nil {
				return err
			}

			facts, err := opts.resolver.Facts(cmd.Context(), moment, opts.location)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), facts, func(w io.Writer) {
				printFacts(w, facts)
			})
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "moment as RFC 3339 or YYYY-MM-DD (midday); default now")
	return cmd
}

func parseMoment(s string, loc calendar.Location) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := calendar.ParseDateString(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q, use RFC 3339 or YYYY-MM-DD", s)
	}
	tz, err := loc.TimeLocation()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, tz), nil
}

func printFacts(w io.Writer, f *calendar.MoladFacts) {
	fmt.Fprintf(w, "Location:        %s (%.4f, %.4f, %s)\n",
		f.Location.Name, f.Location.Latitude, f.Location.Longitude, f.Location.TimeZone)
	fmt.Fprintf(w, "Computed at:     %s\n", f.ComputedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "Hebrew date:     %s\n", f.HebrewDate)
	fmt.Fprintf(w, "Molad %s:  %s\n", f.Molad.MonthName, f.Molad.Friendly)
	if f.RoshChodesh.Text != "" {
		fmt.Fprintf(w, "Rosh Chodesh:    %s\n", f.RoshChodesh.Text)
	}
	fmt.Fprintf(w, "Shabbat now:     %s\n", yesNo(f.IsShabbat))
	fmt.Fprintf(w, "Mevorchim now:   %s\n", yesNo(f.IsShabbosMevorchim))
	fmt.Fprintf(w, "Upcoming (%s): %s\n", f.UpcomingShabbos, yesNo(f.IsUpcomingShabbosMevorchim))
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
