package calendar

import (
	"fmt"
	"time"
)

var monthNames = map[int]string{
	Nisan:    "Nisan",
	Iyar:     "Iyar",
	Sivan:    "Sivan",
	Tammuz:   "Tammuz",
	Av:       "Av",
	Elul:     "Elul",
	Tishrei:  "Tishrei",
	Cheshvan: "Cheshvan",
	Kislev:   "Kislev",
	Teves:    "Teves",
	Shevat:   "Shevat",
	Adar:     "Adar",
	AdarII:   "Adar II",
}

// MonthName returns the canonical English name of month in year.
// Month 12 of a leap year is "Adar I".
func MonthName(year, month int) string {
	if month == Adar && IsLeapYear(year) {
		return "Adar I"
	}
	if name, ok := monthNames[month]; ok {
		return name
	}
	return fmt.Sprintf("Month %d", month)
}

// WeekdayName returns the day of week name, with Saturday as "Shabbos".
func WeekdayName(d time.Weekday) string {
	days := []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Shabbos"}
	return days[floorMod(int(d), 7)]
}

// ParseDateString parses a date string in YYYY-MM-DD format
func ParseDateString(dateStr string) (GregorianDate, error) {
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return GregorianDate{}, err
	}
	return DateOf(t), nil
}
