package calendar

import (
	"fmt"
	"time"
)

// Chalakim arithmetic. All molad reckoning is exact integer arithmetic in
// chalakim (1/1080 of an hour).
const (
	partsPerMinute = 18
	partsPerHour   = 1080
	partsPerDay    = 24 * partsPerHour
	partsPerWeek   = 7 * partsPerDay

	// LunarMonth is the mean synodic month: 29 days 12 hours 793 chalakim.
	LunarMonth = 29*partsPerDay + 12*partsPerHour + 793

	monthsPerCycle = 235

	// Molad of Tishrei, year 1: day 2, 5 hours, 204 chalakim, counting
	// hours from 6 PM of the previous evening.
	epochMolad = (2-1)*partsPerDay + 5*partsPerHour + 204

	// Halachic hour 0 is 6 PM civil time.
	halachicHourOffset = 6
)

// Period is the half of the civil day: "am" or "pm".
type Period string

const (
	AM Period = "am"
	PM Period = "pm"
)

// MoladMoment is the civil-time rendering of a molad.
type MoladMoment struct {
	Year      int           `json:"hebrew_year"`
	Month     int           `json:"hebrew_month"`
	MonthName string        `json:"month_name"`
	Weekday   time.Weekday  `json:"-"`
	Day       string        `json:"day"`
	Hours     int           `json:"hours"`
	Minutes   int           `json:"minutes"`
	AmOrPm    Period        `json:"am_or_pm"`
	Chalakim  int           `json:"chalakim"`
	Friendly  string        `json:"friendly"`
	Date      GregorianDate `json:"date"` // civil date in Jerusalem mean time
}

// MoladOf computes the molad of month in the Hebrew year.
func MoladOf(year, month int) (MoladMoment, error) {
	if year < MinYear || year > MaxYear {
		return MoladMoment{}, fmt.Errorf("%w: hebrew year %d", ErrOutOfRange, year)
	}
	if month < 1 || month > MonthsInYear(year) {
		return MoladMoment{}, fmt.Errorf("%w: year %d has no month %d", ErrInvalidHebrewDate, year, month)
	}

	elapsed := monthsElapsed(year, month)

	// Position within the week, 0 = start of halachic Sunday.
	inWeek := floorMod(floorMod(elapsed, partsPerWeek)*LunarMonth+epochMolad, partsPerWeek)

	day, inDay := divmod(inWeek, partsPerDay)
	hour, parts := divmod(inDay, partsPerHour)
	weekday := day + 1 // 1 = Sunday .. 7 = Shabbos
	mustBeWithin("weekday", weekday, 1, 7)
	mustBeWithin("hour", hour, 0, 23)
	mustBeWithin("chalakim", parts, 0, partsPerHour-1)

	civilHour := hour - halachicHourOffset
	if civilHour < 0 {
		civilHour += 24
		weekday--
		if weekday < 1 {
			weekday = 7
		}
	}

	period := AM
	if civilHour >= 12 {
		period = PM
	}
	hours := civilHour % 12
	if hours == 0 {
		hours = 12
	}
	minutes, chalakim := divmod(parts, partsPerMinute)

	wd := time.Weekday(weekday - 1)
	m := MoladMoment{
		Year:      year,
		Month:     month,
		MonthName: MonthName(year, month),
		Weekday:   wd,
		Day:       WeekdayName(wd),
		Hours:     hours,
		Minutes:   minutes,
		AmOrPm:    period,
		Chalakim:  chalakim,
		Date:      moladDate(elapsed),
	}
	m.Friendly = fmt.Sprintf("%s, %d:%02d %s and %d chalakim", m.Day, m.Hours, m.Minutes, m.AmOrPm, m.Chalakim)
	return m, nil
}

// MoladChalakim returns the molad of month as chalakim since the start of
// the halachic week in which the year-1 Tishrei molad fell.
func MoladChalakim(year, month int) int64 {
	return int64(monthsElapsed(year, month))*LunarMonth + epochMolad
}

// monthsElapsed counts whole lunar months from the year-1 Tishrei molad to
// the molad of month.
func monthsElapsed(year, month int) int {
	completeCycles := (year - 1) / 19
	months := completeCycles * monthsPerCycle

	for y := 1; y <= (year-1)%19; y++ {
		months += 12
		if IsLeapYear(y) {
			months++
		}
	}

	if month >= Tishrei {
		return months + month - Tishrei
	}
	// Tishrei through Adar (or Adar II) precede Nisan.
	beforeNisan := 6
	if IsLeapYear(year) {
		beforeNisan = 7
	}
	return months + beforeNisan + month - 1
}

// moladDate places the molad on the civil calendar.
func moladDate(elapsed int) GregorianDate {
	sinceSundayMidnight := int64(elapsed)*LunarMonth + epochMolad - halachicHourOffset*partsPerHour
	days := floorDiv64(sinceSundayMidnight, partsPerDay)
	// The epoch day is a Monday; its week's Sunday is the day before.
	return gregorianFromFixed(hebrewEpoch - 1 + int(days))
}

// divmod splits n into a quotient and a remainder in [0, unit), borrowing
// one from the quotient when the remainder comes out negative.
func divmod(n, unit int) (int, int) {
	q, r := n/unit, n%unit
	if r < 0 {
		r += unit
		q--
	}
	return q, r
}

func mustBeWithin(name string, v, lo, hi int) {
	if v < lo || v > hi {
		panic(fmt.Sprintf("calendar: molad %s %d outside [%d, %d]", name, v, lo, hi))
	}
}
