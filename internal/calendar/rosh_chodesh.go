package calendar

import (
	"fmt"
	"strings"
)

// RoshChodeshInfo describes the announcement of the coming month.
// Days is empty when the coming month is Tishrei: Rosh Hashanah is not
// announced.
type RoshChodeshInfo struct {
	MonthName string          `json:"month_name"`
	Year      int             `json:"hebrew_year"`
	Month     int             `json:"hebrew_month"`
	Days      []string        `json:"rosh_chodesh_days"`
	Dates     []GregorianDate `json:"rosh_chodesh_dates"`
	Text      string          `json:"rosh_chodesh"`
}

// RoshChodeshOf determines the Rosh Chodesh that follows the Hebrew month
// containing date.
func RoshChodeshOf(date GregorianDate) (RoshChodeshInfo, error) {
	current, err := HebrewOf(date)
	if err != nil {
		return RoshChodeshInfo{}, err
	}
	next := NextMonth(current)

	info := RoshChodeshInfo{
		MonthName: MonthName(next.Year, next.Month),
		Year:      next.Year,
		Month:     next.Month,
		Days:      []string{},
		Dates:     []GregorianDate{},
	}
	if next.Month == Tishrei {
		return info, nil
	}

	firstOfNext, err := GregorianOf(next)
	if err != nil {
		return RoshChodeshInfo{}, fmt.Errorf("first of %s: %w", info.MonthName, err)
	}

	thirtieth, err := GregorianOf(HebrewDate{Year: current.Year, Month: current.Month, Day: 30})
	switch {
	case err == nil:
		info.Dates = append(info.Dates, thirtieth)
		info.Days = append(info.Days, WeekdayName(thirtieth.Weekday()))
		if name := WeekdayName(firstOfNext.Weekday()); name != info.Days[0] {
			info.Dates = append(info.Dates, firstOfNext)
			info.Days = append(info.Days, name)
		}
	case IsInvalidHebrewDate(err):
		// 29-day month: Rosh Chodesh is the 1st only.
		info.Dates = append(info.Dates, firstOfNext)
		info.Days = append(info.Days, WeekdayName(firstOfNext.Weekday()))
	default:
		return RoshChodeshInfo{}, fmt.Errorf("30 %s: %w", MonthName(current.Year, current.Month), err)
	}

	info.Text = strings.Join(info.Days, " & ")
	return info, nil
}
