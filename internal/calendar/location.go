package calendar

import (
	"context"
	"errors"
	"fmt"
	"time"
	_ "time/tzdata" // zone database for minimal containers
)

// Location is where a query is made. Diaspora is carried for the
// presentation layer; the calendar rules here do not depend on it.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	TimeZone  string  `json:"timezone"`
	Diaspora  bool    `json:"diaspora"`
}

// TimeLocation loads the location's IANA time zone.
func (l Location) TimeLocation() (*time.Location, error) {
	tz, err := time.LoadLocation(l.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", l.TimeZone, err)
	}
	return tz, nil
}

// Validate checks coordinates and time zone.
func (l Location) Validate() error {
	var errs []error
	if l.Latitude < -90 || l.Latitude > 90 {
		errs = append(errs, fmt.Errorf("latitude must be between -90 and 90, got %g", l.Latitude))
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		errs = append(errs, fmt.Errorf("longitude must be between -180 and 180, got %g", l.Longitude))
	}
	if l.TimeZone == "" {
		errs = append(errs, errors.New("timezone is required"))
	} else if _, err := l.TimeLocation(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SolarTimes are the sunset-anchored boundaries of one civil date.
// CandleLighting is meaningful on Fridays and Havdalah on Saturdays.
type SolarTimes struct {
	Sunset         time.Time `json:"sunset"`
	CandleLighting time.Time `json:"candle_lighting"`
	Havdalah       time.Time `json:"havdalah"`
}

// SolarProvider looks up solar times for a date at a location. It returns
// an error wrapping ErrMissingSolarData when the times do not exist, e.g.
// during polar day or night.
type SolarProvider interface {
	SolarTimes(ctx context.Context, date GregorianDate, loc Location) (SolarTimes, error)
}
