package calendar

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolver_Facts(t *testing.T) {
	r := NewResolver(&fixedSolar{})

	facts, err := r.Facts(context.Background(), at(t, 2025, time.January, 24, 18, 0), jerusalem)
	require.NoError(t, err)

	assert.Equal(t, HebrewDate{5785, Teves, 24}, facts.HebrewDate)
	assert.Equal(t, "Wednesday, 6:17 am and 17 chalakim", facts.Molad.Friendly)
	assert.Equal(t, "Shevat", facts.Molad.MonthName)
	assert.Equal(t, "Monday, 5:33 pm and 16 chalakim", facts.CurrentMolad.Friendly)
	assert.Equal(t, "Shevat", facts.RoshChodesh.MonthName)
	assert.Equal(t, []string{"Thursday"}, facts.RoshChodesh.Days)
	assert.True(t, facts.IsShabbat)
	assert.True(t, facts.IsShabbosMevorchim)
	assert.True(t, facts.IsUpcomingShabbosMevorchim)
	assert.Equal(t, date(2025, time.January, 25), facts.UpcomingShabbos)
	assert.Equal(t, jerusalem, facts.Location)
}

func TestResolver_Facts_Weekday(t *testing.T) {
	r := NewResolver(&fixedSolar{})

	facts, err := r.Facts(context.Background(), at(t, 2025, time.January, 27, 9, 0), jerusalem)
	require.NoError(t, err)

	assert.False(t, facts.IsShabbat)
	assert.False(t, facts.IsShabbosMevorchim)
	assert.False(t, facts.IsUpcomingShabbosMevorchim)
	assert.Equal(t, date(2025, time.February, 1), facts.UpcomingShabbos)
}

func TestResolver_Facts_MissingSolarData(t *testing.T) {
	solar := &fixedSolar{missing: map[GregorianDate]bool{date(2025, time.January, 25): true}}
	r := NewResolver(solar)

	facts, err := r.Facts(context.Background(), at(t, 2025, time.January, 22, 9, 0), jerusalem)
	require.Error(t, err)
	assert.Nil(t, facts)
	assert.True(t, IsMissingSolarData(err))
}

func TestResolver_Facts_BadTimeZone(t *testing.T) {
	r := NewResolver(&fixedSolar{})
	loc := jerusalem
	loc.TimeZone = "Nowhere/Special"

	_, err := r.Facts(context.Background(), time.Now(), loc)
	assert.Error(t, err)
}

func TestDescribeYear(t *testing.T) {
	info, err := DescribeYear(5784)
	require.NoError(t, err)

	assert.True(t, info.Leap)
	assert.Equal(t, 383, info.Days)
	require.Len(t, info.Months, 13)
	assert.Equal(t, "Tishrei", info.Months[0].Name)
	assert.Equal(t, date(2023, time.September, 16), info.Months[0].Start)
	assert.Equal(t, "Adar I", info.Months[5].Name)
	assert.Equal(t, "Adar II", info.Months[6].Name)
	assert.Equal(t, "Elul", info.Months[12].Name)

	total := 0
	for _, m := range info.Months {
		total += m.Length
	}
	assert.Equal(t, info.Days, total)
}

func TestDescribeYear_OutOfRange(t *testing.T) {
	_, err := DescribeYear(0)
	assert.True(t, IsOutOfRange(err))
}
