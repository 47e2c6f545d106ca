package calendar

import (
	"context"
	"fmt"
	"time"
)

// Classifier decides whether a moment falls on Shabbat and whether that
// Shabbat is Shabbos Mevorchim.
type Classifier struct {
	solar SolarProvider
}

// NewClassifier creates a classifier backed by the given solar provider.
func NewClassifier(solar SolarProvider) *Classifier {
	return &Classifier{solar: solar}
}

// IsActualShabbat reports whether moment is between Friday candle-lighting
// (inclusive) and Saturday Havdalah (exclusive) at loc. An error wrapping
// ErrMissingSolarData means the answer is indeterminate.
func (c *Classifier) IsActualShabbat(ctx context.Context, moment time.Time, loc Location) (bool, error) {
	local, today, err := localDate(moment, loc)
	if err != nil {
		return false, err
	}

	switch today.Weekday() {
	case time.Saturday:
		times, err := c.solarTimes(ctx, today, loc)
		if err != nil {
			return false, err
		}
		return local.Before(times.Havdalah), nil
	case time.Friday:
		times, err := c.solarTimes(ctx, today, loc)
		if err != nil {
			return false, err
		}
		return !local.Before(times.CandleLighting), nil
	}
	return false, nil
}

// EffectiveHebrewDate returns the Hebrew date in force at moment: from
// sunset onwards it is the Hebrew date of the following civil day.
func (c *Classifier) EffectiveHebrewDate(ctx context.Context, moment time.Time, loc Location) (HebrewDate, error) {
	local, today, err := localDate(moment, loc)
	if err != nil {
		return HebrewDate{}, err
	}
	times, err := c.solarTimes(ctx, today, loc)
	if err != nil {
		return HebrewDate{}, err
	}
	if !local.Before(times.Sunset) {
		return HebrewOf(today.AddDays(1))
	}
	return HebrewOf(today)
}

// IsShabbosMevorchim reports whether moment is during a Shabbat on which
// the coming month is announced. The Shabbat before Rosh Hashanah (in Elul)
// never is.
func (c *Classifier) IsShabbosMevorchim(ctx context.Context, moment time.Time, loc Location) (bool, error) {
	shabbat, err := c.IsActualShabbat(ctx, moment, loc)
	if err != nil || !shabbat {
		return false, err
	}

	h, err := c.EffectiveHebrewDate(ctx, moment, loc)
	if err != nil {
		return false, err
	}
	if h.Month == Elul {
		return false, nil
	}

	ref, err := ReferenceShabbos(h.Year, h.Month)
	if err != nil {
		return false, err
	}
	refHebrew, err := HebrewOf(ref)
	if err != nil {
		return false, err
	}
	return h.Day == refHebrew.Day, nil
}

// IsUpcomingShabbosMevorchim reports whether the Shabbat of moment's week
// is Shabbos Mevorchim. A Saturday counts as its own upcoming Shabbat.
func (c *Classifier) IsUpcomingShabbosMevorchim(ctx context.Context, moment time.Time, loc Location) (bool, error) {
	tz, err := loc.TimeLocation()
	if err != nil {
		return false, err
	}
	sat := UpcomingShabbos(DateOf(moment.In(tz)))
	midday := time.Date(sat.Year, sat.Month, sat.Day, 12, 0, 0, 0, tz)
	return c.IsShabbosMevorchim(ctx, midday, loc)
}

// UpcomingShabbos returns the first Saturday on or after date.
func UpcomingShabbos(date GregorianDate) GregorianDate {
	return date.AddDays(floorMod(int(time.Saturday)-int(date.Weekday()), 7))
}

// ReferenceShabbos returns the last Saturday on or before the last day of
// the Hebrew month. A 30th that is itself a Saturday is its own reference.
func ReferenceShabbos(year, month int) (GregorianDate, error) {
	last, err := GregorianOf(HebrewDate{Year: year, Month: month, Day: 30})
	if IsInvalidHebrewDate(err) {
		last, err = GregorianOf(HebrewDate{Year: year, Month: month, Day: 29})
	}
	if err != nil {
		return GregorianDate{}, err
	}
	return last.AddDays(-floorMod(int(last.Weekday())-int(time.Saturday), 7)), nil
}

func (c *Classifier) solarTimes(ctx context.Context, date GregorianDate, loc Location) (SolarTimes, error) {
	times, err := c.solar.SolarTimes(ctx, date, loc)
	if err != nil {
		return SolarTimes{}, fmt.Errorf("solar times for %s at %s: %w", date, loc.Name, err)
	}
	if times.Sunset.IsZero() || times.CandleLighting.IsZero() || times.Havdalah.IsZero() {
		return SolarTimes{}, fmt.Errorf("%w: %s at %s", ErrMissingSolarData, date, loc.Name)
	}
	return times, nil
}

func localDate(moment time.Time, loc Location) (time.Time, GregorianDate, error) {
	tz, err := loc.TimeLocation()
	if err != nil {
		return time.Time{}, GregorianDate{}, err
	}
	local := moment.In(tz)
	return local, DateOf(local), nil
}
