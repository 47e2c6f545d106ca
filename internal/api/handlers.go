package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/molad-api/internal/calendar"
	"github.com/zapponejosh/molad-api/internal/config"
	"github.com/zapponejosh/molad-api/internal/database"
	"github.com/zapponejosh/molad-api/internal/logger"
	"github.com/zapponejosh/molad-api/internal/refresh"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db        *database.DB
	resolver  *calendar.Resolver
	refresher *refresh.Refresher
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(db *database.DB, resolver *calendar.Resolver, refresher *refresh.Refresher, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:        db,
		resolver:  resolver,
		refresher: refresher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Health(r.Context()); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", CodeHealthCheckFailed)
		return
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

// HebrewDateResponse is a Gregorian date with its Hebrew equivalent.
type HebrewDateResponse struct {
	Gregorian  calendar.GregorianDate `json:"gregorian"`
	Weekday    string                 `json:"weekday"`
	Hebrew     calendar.HebrewDate    `json:"hebrew"`
	MonthName  string                 `json:"month_name"`
	HebrewText string                 `json:"hebrew_text"`
	LeapYear   bool                   `json:"leap_year"`
}

func newHebrewDateResponse(g calendar.GregorianDate, h calendar.HebrewDate) HebrewDateResponse {
	return HebrewDateResponse{
		Gregorian:  g,
		Weekday:    calendar.WeekdayName(g.Weekday()),
		Hebrew:     h,
		MonthName:  calendar.MonthName(h.Year, h.Month),
		HebrewText: h.String(),
		LeapYear:   calendar.IsLeapYear(h.Year),
	}
}

// GetHebrewDate handles GET /api/v1/hebrew/{date}
func (h *Handlers) GetHebrewDate(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r)
	if !ok {
		return
	}

	hebrew, err := calendar.HebrewOf(date)
	if err != nil {
		h.writeErr(w, r, "convert to hebrew date", err)
		return
	}

	WriteSuccess(w, newHebrewDateResponse(date, hebrew))
}

// GetGregorianDate handles GET /api/v1/gregorian/{year}/{month}/{day}
func (h *Handlers) GetGregorianDate(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := pathInt(w, r, "month")
	if !ok {
		return
	}
	day, ok := pathInt(w, r, "day")
	if !ok {
		return
	}

	hebrew := calendar.HebrewDate{Year: year, Month: month, Day: day}
	date, err := calendar.GregorianOf(hebrew)
	if err != nil {
		h.writeErr(w, r, "convert to gregorian date", err)
		return
	}

	WriteSuccess(w, newHebrewDateResponse(date, hebrew))
}

// GetYear handles GET /api/v1/years/{year}
func (h *Handlers) GetYear(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}

	info, err := calendar.DescribeYear(year)
	if err != nil {
		h.writeErr(w, r, "describe year", err)
		return
	}

	WriteSuccess(w, info)
}

// GetMolad handles GET /api/v1/molad/{year}/{month}
func (h *Handlers) GetMolad(w http.ResponseWriter, r *http.Request) {
	year, ok := pathInt(w, r, "year")
	if !ok {
		return
	}
	month, ok := pathInt(w, r, "month")
	if !ok {
		return
	}

	molad, err := calendar.MoladOf(year, month)
	if err != nil {
		h.writeErr(w, r, "compute molad", err)
		return
	}

	WriteSuccess(w, molad)
}

// GetRoshChodesh handles GET /api/v1/rosh-chodesh/{date}
func (h *Handlers) GetRoshChodesh(w http.ResponseWriter, r *http.Request) {
	date, ok := h.pathDate(w, r)
	if !ok {
		return
	}

	info, err := calendar.RoshChodeshOf(date)
	if err != nil {
		h.writeErr(w, r, "resolve rosh chodesh", err)
		return
	}

	WriteSuccess(w, info)
}

// GetFacts handles GET /api/v1/facts?at=&lat=&lon=&tz=&diaspora=&name=
//
// Without coordinates the configured default location is used. The at
// parameter accepts RFC 3339 or YYYY-MM-DD (midday local time) and
// defaults to now.
func (h *Handlers) GetFacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	loc, err := h.locationFromQuery(q)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}

	at, err := h.momentFromQuery(q.Get("at"), loc)
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	r = r.WithContext(logger.WithLocation(r.Context(), loc.Name))

	facts, err := h.resolver.Facts(r.Context(), at, loc)
	if err != nil {
		h.writeErr(w, r, "compute facts", err)
		return
	}

	WriteSuccess(w, facts)
}

// =============================================================================
// Helpers
// =============================================================================

func (h *Handlers) locationFromQuery(q url.Values) (calendar.Location, error) {
	loc := h.cfg.DefaultLocation()

	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr != "" || lonStr != "" {
		if latStr == "" || lonStr == "" {
			return loc, fmt.Errorf("lat and lon must be given together")
		}
		lat, err := strconv.ParseFloat(latStr, 64)
		if err != nil {
			return loc, fmt.Errorf("invalid lat: %s", latStr)
		}
		lon, err := strconv.ParseFloat(lonStr, 64)
		if err != nil {
			return loc, fmt.Errorf("invalid lon: %s", lonStr)
		}
		if q.Get("tz") == "" {
			return loc, fmt.Errorf("tz is required with lat and lon")
		}
		loc.Latitude, loc.Longitude = lat, lon
		loc.Name = fmt.Sprintf("%s,%s", latStr, lonStr)
	}

	if tz := q.Get("tz"); tz != "" {
		loc.TimeZone = tz
	}
	if name := strings.TrimSpace(q.Get("name")); name != "" {
		loc.Name = name
	}
	if d := q.Get("diaspora"); d != "" {
		diaspora, err := strconv.ParseBool(d)
		if err != nil {
			return loc, fmt.Errorf("invalid diaspora: %s", d)
		}
		loc.Diaspora = diaspora
	}

	if err := loc.Validate(); err != nil {
		return loc, err
	}
	return loc, nil
}

func (h *Handlers) momentFromQuery(s string, loc calendar.Location) (time.Time, error) {
	if s == "" {
		return h.now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}

	date, err := calendar.ParseDateString(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid at: %s. Use RFC 3339 or YYYY-MM-DD", s)
	}
	tz, err := loc.TimeLocation()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year, date.Month, date.Day, 12, 0, 0, 0, tz), nil
}

func (h *Handlers) pathDate(w http.ResponseWriter, r *http.Request) (calendar.GregorianDate, bool) {
	dateStr := chi.URLParam(r, "date")
	if dateStr == "" {
		WriteBadRequest(w, "Date parameter is required")
		return calendar.GregorianDate{}, false
	}

	date, err := calendar.ParseDateString(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return calendar.GregorianDate{}, false
	}
	return date, true
}

func pathInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := chi.URLParam(r, name)
	n, err := strconv.Atoi(raw)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid %s: %q", name, raw))
		return 0, false
	}
	return n, true
}

// writeErr maps err to a response, logging unexpected failures.
func (h *Handlers) writeErr(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code, known := errorStatus(err)
	if !known {
		logger.Error(r.Context(), "failed to "+op, err, slog.String("path", r.URL.Path))
		WriteInternalError(w, "Failed to "+op)
		return
	}
	logger.Debug(r.Context(), op+" rejected", slog.Any("error", err))
	WriteError(w, status, err.Error(), code)
}

// decodeJSON decodes JSON request body.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("request body is empty")
	}
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
