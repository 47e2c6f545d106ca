// Package zmanim computes sunset-anchored times for the calendar package
// from astronomical sunrise and sunset.
package zmanim

import (
	"context"
	"fmt"
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/zapponejosh/molad-api/internal/calendar"
)

// Default offsets from sunset.
const (
	DefaultCandleLighting = 18 * time.Minute
	DefaultHavdalah       = 50 * time.Minute
)

// Provider implements calendar.SolarProvider.
type Provider struct {
	candleLighting time.Duration
	havdalah       time.Duration
}

// Option configures a Provider.
type Option func(*Provider)

// WithCandleLighting sets how long before sunset candles are lit.
func WithCandleLighting(d time.Duration) Option {
	return func(p *Provider) { p.candleLighting = d }
}

// WithHavdalah sets how long after sunset Shabbat ends.
func WithHavdalah(d time.Duration) Option {
	return func(p *Provider) { p.havdalah = d }
}

// NewProvider creates a provider with the default offsets unless overridden.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		candleLighting: DefaultCandleLighting,
		havdalah:       DefaultHavdalah,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SolarTimes returns sunset, candle-lighting and Havdalah for date at loc,
// expressed in the location's time zone.
func (p *Provider) SolarTimes(ctx context.Context, date calendar.GregorianDate, loc calendar.Location) (calendar.SolarTimes, error) {
	if err := ctx.Err(); err != nil {
		return calendar.SolarTimes{}, err
	}

	tz, err := loc.TimeLocation()
	if err != nil {
		return calendar.SolarTimes{}, err
	}

	rise, set := sunrise.SunriseSunset(loc.Latitude, loc.Longitude, date.Year, date.Month, date.Day)
	if rise.IsZero() || set.IsZero() || !set.After(rise) {
		return calendar.SolarTimes{}, fmt.Errorf("%w: no sunset on %s at %.4f,%.4f",
			calendar.ErrMissingSolarData, date, loc.Latitude, loc.Longitude)
	}

	set = set.In(tz).Truncate(time.Minute)
	return calendar.SolarTimes{
		Sunset:         set,
		CandleLighting: set.Add(-p.candleLighting),
		Havdalah:       set.Add(p.havdalah),
	}, nil
}
