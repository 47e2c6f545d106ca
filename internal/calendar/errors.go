package calendar

import "errors"

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrInvalidHebrewDate is returned when a Hebrew date names a month the
	// year does not have, or a day past the end of its month (e.g. 30 Tevet).
	ErrInvalidHebrewDate = errors.New("invalid hebrew date")

	// ErrOutOfRange is returned for dates outside the supported Hebrew years.
	ErrOutOfRange = errors.New("date out of supported range")

	// ErrMissingSolarData is returned when sunset, candle-lighting or Havdalah
	// cannot be determined for a date and location. Shabbat status is then
	// indeterminate, which is not the same as false.
	ErrMissingSolarData = errors.New("solar times unavailable")
)

// IsInvalidHebrewDate checks if an error is an invalid-hebrew-date error.
func IsInvalidHebrewDate(err error) bool {
	return errors.Is(err, ErrInvalidHebrewDate)
}

// IsOutOfRange checks if an error is an out-of-range error.
func IsOutOfRange(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}

// IsMissingSolarData checks if an error reports missing solar times.
func IsMissingSolarData(err error) bool {
	return errors.Is(err, ErrMissingSolarData)
}
