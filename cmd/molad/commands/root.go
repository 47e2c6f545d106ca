package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/molad-api/internal/calendar"
	"github.com/zapponejosh/molad-api/internal/config"
	"github.com/zapponejosh/molad-api/internal/zmanim"
)

// options holds the persistent flags and the state built from them.
type options struct {
	jsonOut  bool
	name     string
	lat, lon float64
	tz       string
	diaspora bool

	cfg      *config.Config
	location calendar.Location
	resolver *calendar.Resolver
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "molad",
		Short:         "Hebrew calendar, molad and Shabbos Mevorchim facts",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.cfg = cfg

			loc := cfg.DefaultLocation()
			flags := cmd.Flags()
			if flags.Changed("name") {
				loc.Name = opts.name
			}
			if flags.Changed("lat") {
				loc.Latitude = opts.lat
			}
			if flags.Changed("lon") {
				loc.Longitude = opts.lon
			}
			if flags.Changed("tz") {
				loc.TimeZone = opts.tz
			}
			if flags.Changed("diaspora") {
				loc.Diaspora = opts.diaspora
			}
			if err := loc.Validate(); err != nil {
				return err
			}
			opts.location = loc

			opts.resolver = calendar.NewResolver(zmanim.NewProvider(
				zmanim.WithCandleLighting(time.Duration(cfg.CandleLightingMinutes)*time.Minute),
				zmanim.WithHavdalah(time.Duration(cfg.HavdalahMinutes)*time.Minute),
			))
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")
	pf.StringVar(&opts.name, "name", "", "location name (default from DEFAULT_LOCATION_NAME)")
	pf.Float64Var(&opts.lat, "lat", 0, "latitude (default from DEFAULT_LATITUDE)")
	pf.Float64Var(&opts.lon, "lon", 0, "longitude (default from DEFAULT_LONGITUDE)")
	pf.StringVar(&opts.tz, "tz", "", "IANA time zone (default from DEFAULT_TIMEZONE)")
	pf.BoolVar(&opts.diaspora, "diaspora", true, "diaspora location (default from DIASPORA)")

	root.AddCommand(
		convertCmd(opts),
		gregorianCmd(opts),
		moladCmd(opts),
		roshChodeshCmd(opts),
		factsCmd(opts),
		yearCmd(opts),
	)
	return root
}

// today returns the civil date at the selected location.
func (o *options) today() (calendar.GregorianDate, error) {
	tz, err := o.location.TimeLocation()
	if err != nil {
		return calendar.GregorianDate{}, err
	}
	return calendar.DateOf(time.Now().In(tz)), nil
}

// dateArg parses an optional YYYY-MM-DD argument, defaulting to today.
func (o *options) dateArg(args []string) (calendar.GregorianDate, error) {
	if len(args) == 0 {
		return o.today()
	}
	d, err := calendar.ParseDateString(args[0])
	if err != nil {
		return calendar.GregorianDate{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", args[0])
	}
	return d, nil
}

// print writes v as indented JSON when --json is set, otherwise calls text.
func (o *options) print(w io.Writer, v any, text func(io.Writer)) error {
	if o.jsonOut {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}
