package calendar

import "fmt"

// MonthInfo summarizes one month of a Hebrew year.
type MonthInfo struct {
	Month  int           `json:"month"`
	Name   string        `json:"name"`
	Length int           `json:"length"`
	Start  GregorianDate `json:"start"`
	Molad  MoladMoment   `json:"molad"`
}

// YearInfo summarizes a Hebrew year. Months are listed from Tishrei.
type YearInfo struct {
	Year   int         `json:"year"`
	Leap   bool        `json:"leap"`
	Days   int         `json:"days"`
	Months []MonthInfo `json:"months"`
}

// DescribeYear builds the month table for year.
func DescribeYear(year int) (*YearInfo, error) {
	if year < MinYear || year > MaxYear {
		return nil, fmt.Errorf("%w: hebrew year %d", ErrOutOfRange, year)
	}

	info := &YearInfo{
		Year:   year,
		Leap:   IsLeapYear(year),
		Days:   DaysInYear(year),
		Months: make([]MonthInfo, 0, MonthsInYear(year)),
	}

	h := HebrewDate{Year: year, Month: Tishrei, Day: 1}
	for h.Year == year {
		start, err := GregorianOf(h)
		if err != nil {
			return nil, err
		}
		molad, err := MoladOf(h.Year, h.Month)
		if err != nil {
			return nil, err
		}
		info.Months = append(info.Months, MonthInfo{
			Month:  h.Month,
			Name:   MonthName(h.Year, h.Month),
			Length: MonthLength(h.Year, h.Month),
			Start:  start,
			Molad:  molad,
		})
		h = NextMonth(h)
	}

	return info, nil
}
