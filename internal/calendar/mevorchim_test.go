package calendar

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedSolar reports sunset at 17:00 local time every day, candle-lighting
// 18 minutes before and Havdalah 50 minutes after.
type fixedSolar struct {
	missing map[GregorianDate]bool
	calls   int
}

func (f *fixedSolar) SolarTimes(_ context.Context, d GregorianDate, loc Location) (SolarTimes, error) {
	f.calls++
	if f.missing[d] {
		return SolarTimes{}, fmt.Errorf("%w: polar night", ErrMissingSolarData)
	}
	tz, err := loc.TimeLocation()
	if err != nil {
		return SolarTimes{}, err
	}
	sunset := time.Date(d.Year, d.Month, d.Day, 17, 0, 0, 0, tz)
	return SolarTimes{
		Sunset:         sunset,
		CandleLighting: sunset.Add(-18 * time.Minute),
		Havdalah:       sunset.Add(50 * time.Minute),
	}, nil
}

var jerusalem = Location{
	Name:      "Jerusalem",
	Latitude:  31.778,
	Longitude: 35.235,
	TimeZone:  "Asia/Jerusalem",
	Diaspora:  false,
}

func at(t *testing.T, y int, m time.Month, d, hour, min int) time.Time {
	t.Helper()
	tz, err := jerusalem.TimeLocation()
	require.NoError(t, err)
	return time.Date(y, m, d, hour, min, 0, 0, tz)
}

func TestIsActualShabbat(t *testing.T) {
	c := NewClassifier(&fixedSolar{})
	ctx := context.Background()

	tests := []struct {
		name   string
		moment time.Time
		want   bool
	}{
		{"friday before candle-lighting", at(t, 2025, time.January, 24, 15, 42), false},
		{"friday at candle-lighting", at(t, 2025, time.January, 24, 16, 42), true},
		{"friday night", at(t, 2025, time.January, 24, 17, 30), true},
		{"shabbos morning", at(t, 2025, time.January, 25, 10, 0), true},
		{"shabbos just before havdalah", at(t, 2025, time.January, 25, 17, 49), true},
		{"shabbos at havdalah", at(t, 2025, time.January, 25, 17, 50), false},
		{"sunday", at(t, 2025, time.January, 26, 10, 0), false},
		{"wednesday", at(t, 2025, time.January, 22, 20, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.IsActualShabbat(ctx, tt.moment, jerusalem)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsActualShabbat_ConvertsToLocationTime(t *testing.T) {
	c := NewClassifier(&fixedSolar{})

	// 15:30 UTC is 17:30 in Jerusalem on a Friday.
	moment := time.Date(2025, time.January, 24, 15, 30, 0, 0, time.UTC)
	got, err := c.IsActualShabbat(context.Background(), moment, jerusalem)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestIsActualShabbat_MissingSolarData(t *testing.T) {
	solar := &fixedSolar{missing: map[GregorianDate]bool{date(2025, time.January, 25): true}}
	c := NewClassifier(solar)
	ctx := context.Background()

	_, err := c.IsActualShabbat(ctx, at(t, 2025, time.January, 25, 10, 0), jerusalem)
	require.Error(t, err)
	assert.True(t, IsMissingSolarData(err))

	// Weekdays never need a lookup.
	got, err := c.IsActualShabbat(ctx, at(t, 2025, time.January, 21, 10, 0), jerusalem)
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, 1, solar.calls)
}

func TestEffectiveHebrewDate(t *testing.T) {
	c := NewClassifier(&fixedSolar{})
	ctx := context.Background()

	h, err := c.EffectiveHebrewDate(ctx, at(t, 2025, time.January, 24, 16, 59), jerusalem)
	require.NoError(t, err)
	assert.Equal(t, HebrewDate{5785, Teves, 24}, h)

	h, err = c.EffectiveHebrewDate(ctx, at(t, 2025, time.January, 24, 17, 0), jerusalem)
	require.NoError(t, err)
	assert.Equal(t, HebrewDate{5785, Teves, 25}, h)

	// Sunset on 29 Teves moves into Shevat.
	h, err = c.EffectiveHebrewDate(ctx, at(t, 2025, time.January, 29, 18, 0), jerusalem)
	require.NoError(t, err)
	assert.Equal(t, HebrewDate{5785, Shevat, 1}, h)
}

func TestReferenceShabbos(t *testing.T) {
	tests := []struct {
		name        string
		year, month int
		want        GregorianDate
	}{
		{"29-day teves", 5785, Teves, date(2025, time.January, 25)},
		{"30-day tishrei", 5785, Tishrei, date(2024, time.October, 26)},
		{"29th on shabbos", 5785, Adar, date(2025, time.March, 29)},
		{"30th on shabbos is its own reference", 5786, Kislev, date(2025, time.December, 20)},
		{"elul", 5785, Elul, date(2025, time.September, 20)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReferenceShabbos(tt.year, tt.month)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.Saturday, got.Weekday())
		})
	}
}

func TestIsShabbosMevorchim(t *testing.T) {
	c := NewClassifier(&fixedSolar{})
	ctx := context.Background()

	tests := []struct {
		name   string
		moment time.Time
		want   bool
	}{
		{"shabbos before rosh chodesh shevat", at(t, 2025, time.January, 25, 10, 0), true},
		{"friday night after sunset", at(t, 2025, time.January, 24, 18, 0), true},
		{"friday between candle-lighting and sunset", at(t, 2025, time.January, 24, 16, 45), false},
		{"friday afternoon", at(t, 2025, time.January, 24, 12, 0), false},
		{"shabbos after sunset before havdalah", at(t, 2025, time.January, 25, 17, 10), false},
		{"shabbos after havdalah", at(t, 2025, time.January, 25, 20, 0), false},
		{"a week earlier", at(t, 2025, time.January, 18, 10, 0), false},
		{"shabbos before rosh chodesh cheshvan", at(t, 2024, time.October, 26, 10, 0), true},
		{"30 kislev on shabbos", at(t, 2025, time.December, 20, 10, 0), true},
		{"elul never counts", at(t, 2025, time.September, 20, 10, 0), false},
		{"a weekday of the right week", at(t, 2025, time.January, 22, 10, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.IsShabbosMevorchim(ctx, tt.moment, jerusalem)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsShabbosMevorchim_DiasporaDoesNotChangeResult(t *testing.T) {
	c := NewClassifier(&fixedSolar{})
	ctx := context.Background()
	diaspora := jerusalem
	diaspora.Diaspora = true

	for _, moment := range []time.Time{
		at(t, 2025, time.January, 25, 10, 0),
		at(t, 2025, time.January, 18, 10, 0),
	} {
		a, err := c.IsShabbosMevorchim(ctx, moment, jerusalem)
		require.NoError(t, err)
		b, err := c.IsShabbosMevorchim(ctx, moment, diaspora)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	}
}

func TestIsShabbosMevorchim_MissingSolarData(t *testing.T) {
	solar := &fixedSolar{missing: map[GregorianDate]bool{date(2025, time.January, 25): true}}
	c := NewClassifier(solar)

	got, err := c.IsShabbosMevorchim(context.Background(), at(t, 2025, time.January, 25, 10, 0), jerusalem)
	assert.False(t, got)
	assert.True(t, IsMissingSolarData(err))
}

func TestIsUpcomingShabbosMevorchim(t *testing.T) {
	c := NewClassifier(&fixedSolar{})
	ctx := context.Background()

	tests := []struct {
		name   string
		moment time.Time
		want   bool
	}{
		{"monday of the week", at(t, 2025, time.January, 20, 9, 0), true},
		{"friday of the week", at(t, 2025, time.January, 24, 9, 0), true},
		{"shabbos itself", at(t, 2025, time.January, 25, 9, 0), true},
		{"shabbos evening still looks at the same shabbos", at(t, 2025, time.January, 25, 21, 0), true},
		{"sunday after", at(t, 2025, time.January, 26, 9, 0), false},
		{"week before elul shabbos", at(t, 2025, time.September, 15, 9, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.IsUpcomingShabbosMevorchim(ctx, tt.moment, jerusalem)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUpcomingShabbos(t *testing.T) {
	assert.Equal(t, date(2025, time.January, 25), UpcomingShabbos(date(2025, time.January, 19)))
	assert.Equal(t, date(2025, time.January, 25), UpcomingShabbos(date(2025, time.January, 25)))
	assert.Equal(t, date(2025, time.February, 1), UpcomingShabbos(date(2025, time.January, 26)))
}

func TestLocation_Validate(t *testing.T) {
	assert.NoError(t, jerusalem.Validate())

	bad := Location{Latitude: 91, Longitude: -181, TimeZone: "Mars/Olympus"}
	err := bad.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
	assert.Contains(t, err.Error(), "longitude")
	assert.Contains(t, err.Error(), "Mars/Olympus")

	assert.Error(t, Location{}.Validate())
}
