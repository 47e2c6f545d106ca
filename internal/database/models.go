package database

import (
	"time"

	"github.com/zapponejosh/molad-api/internal/calendar"
)

// Location is a saved place whose facts are refreshed on a schedule.
type Location struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	TimeZone  string    `json:"timezone"`
	Diaspora  bool      `json:"diaspora"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Calendar converts the stored row into a calendar location.
func (l *Location) Calendar() calendar.Location {
	return calendar.Location{
		Name:      l.Name,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		TimeZone:  l.TimeZone,
		Diaspora:  l.Diaspora,
	}
}

// LocationFromCalendar builds an unsaved row from a calendar location.
func LocationFromCalendar(loc calendar.Location) *Location {
	return &Location{
		Name:      loc.Name,
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		TimeZone:  loc.TimeZone,
		Diaspora:  loc.Diaspora,
	}
}

// FactsSnapshot is one stored refresh of a location's facts.
type FactsSnapshot struct {
	ID         string               `json:"id"`
	LocationID int64                `json:"location_id"`
	ComputedAt time.Time            `json:"computed_at"`
	Facts      *calendar.MoladFacts `json:"facts"`
	CreatedAt  time.Time            `json:"created_at"`
}

// ImportData is the JSON document loaded by cmd/import.
type ImportData struct {
	Metadata  ImportMetadata      `json:"metadata"`
	Locations []calendar.Location `json:"locations"`
}

// ImportMetadata describes where an import file came from.
type ImportMetadata struct {
	Source      string `json:"source"`
	GeneratedAt string `json:"generated_at"`
}
