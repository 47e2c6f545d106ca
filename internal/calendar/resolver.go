package calendar

import (
	"context"
	"fmt"
	"time"
)

// MoladFacts is everything computed for one query. It is rebuilt in full on
// every query.
type MoladFacts struct {
	Location   Location   `json:"location"`
	ComputedAt time.Time  `json:"computed_at"`
	HebrewDate HebrewDate `json:"hebrew_date"`

	// Molad is the molad of the month being announced; CurrentMolad is the
	// molad that began the month containing the query date.
	Molad        MoladMoment     `json:"molad"`
	CurrentMolad MoladMoment     `json:"current_molad"`
	RoshChodesh  RoshChodeshInfo `json:"rosh_chodesh"`

	IsShabbat                  bool          `json:"is_shabbat"`
	IsShabbosMevorchim         bool          `json:"is_shabbos_mevorchim"`
	IsUpcomingShabbosMevorchim bool          `json:"is_upcoming_shabbos_mevorchim"`
	UpcomingShabbos            GregorianDate `json:"upcoming_shabbos"`
}

// Resolver composes the calendar components into MoladFacts.
type Resolver struct {
	classifier *Classifier
}

// NewResolver creates a new resolver.
func NewResolver(solar SolarProvider) *Resolver {
	return &Resolver{classifier: NewClassifier(solar)}
}

// Classifier returns the Shabbos Mevorchim classifier used by the resolver.
func (r *Resolver) Classifier() *Classifier {
	return r.classifier
}

// Facts computes the molad, Rosh Chodesh and Shabbos Mevorchim facts for now
// at loc. Any error aborts the whole query; no partial facts are returned.
func (r *Resolver) Facts(ctx context.Context, now time.Time, loc Location) (*MoladFacts, error) {
	tz, err := loc.TimeLocation()
	if err != nil {
		return nil, err
	}
	local := now.In(tz)
	today := DateOf(local)

	hebrew, err := HebrewOf(today)
	if err != nil {
		return nil, fmt.Errorf("hebrew date: %w", err)
	}

	next := NextMonth(hebrew)
	molad, err := MoladOf(next.Year, next.Month)
	if err != nil {
		return nil, fmt.Errorf("molad of %s %d: %w", MonthName(next.Year, next.Month), next.Year, err)
	}
	currentMolad, err := MoladOf(hebrew.Year, hebrew.Month)
	if err != nil {
		return nil, fmt.Errorf("molad of %s %d: %w", MonthName(hebrew.Year, hebrew.Month), hebrew.Year, err)
	}

	roshChodesh, err := RoshChodeshOf(today)
	if err != nil {
		return nil, fmt.Errorf("rosh chodesh: %w", err)
	}

	isShabbat, err := r.classifier.IsActualShabbat(ctx, local, loc)
	if err != nil {
		return nil, fmt.Errorf("shabbat status: %w", err)
	}
	mevorchim, err := r.classifier.IsShabbosMevorchim(ctx, local, loc)
	if err != nil {
		return nil, fmt.Errorf("shabbos mevorchim: %w", err)
	}
	upcoming, err := r.classifier.IsUpcomingShabbosMevorchim(ctx, local, loc)
	if err != nil {
		return nil, fmt.Errorf("upcoming shabbos mevorchim: %w", err)
	}

	return &MoladFacts{
		Location:                   loc,
		ComputedAt:                 local,
		HebrewDate:                 hebrew,
		Molad:                      molad,
		CurrentMolad:               currentMolad,
		RoshChodesh:                roshChodesh,
		IsShabbat:                  isShabbat,
		IsShabbosMevorchim:         mevorchim,
		IsUpcomingShabbosMevorchim: upcoming,
		UpcomingShabbos:            UpcomingShabbos(today),
	}, nil
}
