// Package calendar provides Hebrew calendar calculations: date conversion,
// the molad, Rosh Chodesh and Shabbos Mevorchim.
//
// All conversions go through a whole-day count (days since 1 January of
// year 1 in the proleptic Gregorian calendar, day 1 being that date) so
// that month and year boundaries never need field-by-field carry logic.
package calendar

import (
	"fmt"
	"time"
)

// Hebrew month numbers. Numbering starts at Nisan; the year number changes
// at Tishrei. In a leap year month 12 is Adar I and month 13 is Adar II.
const (
	Nisan    = 1
	Iyar     = 2
	Sivan    = 3
	Tammuz   = 4
	Av       = 5
	Elul     = 6
	Tishrei  = 7
	Cheshvan = 8
	Kislev   = 9
	Teves    = 10
	Shevat   = 11
	Adar     = 12
	AdarII   = 13
)

// Supported Hebrew years.
const (
	MinYear = 1
	MaxYear = 9999
)

const (
	hebrewEpoch = -1373427 // day count of 1 Tishrei, year 1
	unixEpoch   = 719163   // day count of 1970-01-01
)

// HebrewDate is a day in the Hebrew calendar.
type HebrewDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// String formats the date as "<day> <month> <year>", e.g. "1 Tishrei 5785".
func (h HebrewDate) String() string {
	return fmt.Sprintf("%d %s %d", h.Day, MonthName(h.Year, h.Month), h.Year)
}

// GregorianDate is a proleptic Gregorian calendar date with no time of day.
type GregorianDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the civil date of t in t's own location.
func DateOf(t time.Time) GregorianDate {
	y, m, d := t.Date()
	return GregorianDate{Year: y, Month: m, Day: d}
}

// NewGregorianDate builds a date, normalizing out-of-range fields the way time.Date does.
func NewGregorianDate(year int, month time.Month, day int) GregorianDate {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// Time returns midnight of the date in loc.
func (g GregorianDate) Time(loc *time.Location) time.Time {
	return time.Date(g.Year, g.Month, g.Day, 0, 0, 0, 0, loc)
}

// Weekday returns the day of the week.
func (g GregorianDate) Weekday() time.Weekday {
	return time.Weekday(floorMod(g.fixed(), 7))
}

// AddDays returns the date n days later (or earlier for negative n).
func (g GregorianDate) AddDays(n int) GregorianDate {
	return gregorianFromFixed(g.fixed() + n)
}

// String formats the date as YYYY-MM-DD.
func (g GregorianDate) String() string {
	return g.Time(time.UTC).Format("2006-01-02")
}

// IsZero reports whether g is the zero date.
func (g GregorianDate) IsZero() bool {
	return g == GregorianDate{}
}

// MarshalText implements encoding.TextMarshaler. The zero date is empty.
func (g GregorianDate) MarshalText() ([]byte, error) {
	if g.IsZero() {
		return []byte{}, nil
	}
	return []byte(g.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (g *GregorianDate) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*g = GregorianDate{}
		return nil
	}
	d, err := ParseDateString(string(text))
	if err != nil {
		return err
	}
	*g = d
	return nil
}

// fixed returns the day count of g.
func (g GregorianDate) fixed() int {
	unix := g.Time(time.UTC).Unix()
	return int(floorDiv64(unix, 86400)) + unixEpoch
}

func gregorianFromFixed(f int) GregorianDate {
	return DateOf(time.Unix(int64(f-unixEpoch)*86400, 0).UTC())
}

// =============================================================================
// Year structure
// =============================================================================

// IsLeapYear reports whether year has 13 months. Position 0 in the 19-year
// cycle is position 19, which is a leap year.
func IsLeapYear(year int) bool {
	position := floorMod(year, 19)
	if position == 0 {
		position = 19
	}
	switch position {
	case 3, 6, 8, 11, 14, 17, 19:
		return true
	}
	return false
}

// MonthsInYear returns 13 for leap years and 12 otherwise.
func MonthsInYear(year int) int {
	if IsLeapYear(year) {
		return 13
	}
	return 12
}

// MonthLength returns 29 or 30: the number of days between the start of
// month and the start of the month that follows it.
func MonthLength(year, month int) int {
	next := HebrewDate{Year: year, Month: month, Day: 1}.nextMonth()
	return fixedFromHebrew(next.Year, next.Month, 1) - fixedFromHebrew(year, month, 1)
}

// DaysInYear returns the length of year (353-355 or 383-385 days).
func DaysInYear(year int) int {
	return newYear(year+1) - newYear(year)
}

// NextMonth returns day 1 of the month that follows h's month.
func NextMonth(h HebrewDate) HebrewDate {
	return h.nextMonth()
}

func (h HebrewDate) nextMonth() HebrewDate {
	switch {
	case h.Month == Elul:
		return HebrewDate{Year: h.Year + 1, Month: Tishrei, Day: 1}
	case h.Month == MonthsInYear(h.Year):
		return HebrewDate{Year: h.Year, Month: Nisan, Day: 1}
	default:
		return HebrewDate{Year: h.Year, Month: h.Month + 1, Day: 1}
	}
}

// elapsedDays counts days from the epoch to Rosh Hashanah of year before
// the year-length postponements.
func elapsedDays(year int) int {
	monthsElapsed := floorDiv(235*year-234, 19)
	partsElapsed := 12084 + 13753*monthsElapsed
	days := 29*monthsElapsed + floorDiv(partsElapsed, 25920)
	if floorMod(3*(days+1), 7) < 3 {
		days++
	}
	return days
}

// yearLengthCorrection delays Rosh Hashanah so no year has an illegal length.
func yearLengthCorrection(year int) int {
	ny0 := elapsedDays(year - 1)
	ny1 := elapsedDays(year)
	ny2 := elapsedDays(year + 1)
	switch {
	case ny2-ny1 == 356:
		return 2
	case ny1-ny0 == 382:
		return 1
	}
	return 0
}

func newYear(year int) int {
	return hebrewEpoch + elapsedDays(year) + yearLengthCorrection(year)
}

// lastDayOfMonth applies the fixed month-length rules; Cheshvan and Kislev
// vary with the length of the year.
func lastDayOfMonth(year, month int) int {
	switch {
	case month == Iyar, month == Tammuz, month == Elul, month == Teves, month == AdarII:
		return 29
	case month == Adar && !IsLeapYear(year):
		return 29
	case month == Cheshvan && DaysInYear(year)%10 != 5:
		return 29
	case month == Kislev && DaysInYear(year)%10 == 3:
		return 29
	}
	return 30
}

func fixedFromHebrew(year, month, day int) int {
	f := newYear(year) + day - 1
	if month < Tishrei {
		for m := Tishrei; m <= MonthsInYear(year); m++ {
			f += lastDayOfMonth(year, m)
		}
		for m := Nisan; m < month; m++ {
			f += lastDayOfMonth(year, m)
		}
		return f
	}
	for m := Tishrei; m < month; m++ {
		f += lastDayOfMonth(year, m)
	}
	return f
}

func hebrewFromFixed(f int) HebrewDate {
	approx := floorDiv64(int64(f-hebrewEpoch)*98496, 35975351) + 1
	year := int(approx) - 1
	for newYear(year+1) <= f {
		year++
	}

	month := Nisan
	if f < fixedFromHebrew(year, Nisan, 1) {
		month = Tishrei
	}
	for f > fixedFromHebrew(year, month, lastDayOfMonth(year, month)) {
		month++
	}

	return HebrewDate{
		Year:  year,
		Month: month,
		Day:   f - fixedFromHebrew(year, month, 1) + 1,
	}
}

// =============================================================================
// Conversion
// =============================================================================

// HebrewOf converts a Gregorian date to its Hebrew date. The Hebrew day is
// taken to coincide with the civil day; see EffectiveHebrewDate for the
// sunset boundary.
func HebrewOf(g GregorianDate) (HebrewDate, error) {
	f := g.fixed()
	if f < newYear(MinYear) || f >= newYear(MaxYear+1) {
		return HebrewDate{}, fmt.Errorf("%w: %s", ErrOutOfRange, g)
	}
	return hebrewFromFixed(f), nil
}

// GregorianOf converts a Hebrew date to its Gregorian date.
// It returns ErrInvalidHebrewDate if the month or day does not exist in
// that year, which callers use to probe whether a month has a 30th day.
func GregorianOf(h HebrewDate) (GregorianDate, error) {
	if h.Year < MinYear || h.Year > MaxYear {
		return GregorianDate{}, fmt.Errorf("%w: hebrew year %d", ErrOutOfRange, h.Year)
	}
	if h.Month < 1 || h.Month > MonthsInYear(h.Year) {
		return GregorianDate{}, fmt.Errorf("%w: year %d has no month %d", ErrInvalidHebrewDate, h.Year, h.Month)
	}
	if h.Day < 1 || h.Day > MonthLength(h.Year, h.Month) {
		return GregorianDate{}, fmt.Errorf("%w: %s has %d days, got day %d",
			ErrInvalidHebrewDate, MonthName(h.Year, h.Month), MonthLength(h.Year, h.Month), h.Day)
	}
	return gregorianFromFixed(fixedFromHebrew(h.Year, h.Month, h.Day)), nil
}

// Validate reports whether h names a real day.
func (h HebrewDate) Validate() error {
	_, err := GregorianOf(h)
	return err
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorDiv64(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - b*floorDiv(a, b)
}
