package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapponejosh/molad-api/internal/calendar"
	"github.com/zapponejosh/molad-api/internal/config"
	"github.com/zapponejosh/molad-api/internal/database"
	"github.com/zapponejosh/molad-api/internal/refresh"
)

// =============================================================================
// TEST SETUP HELPERS
// =============================================================================

const testAPIKey = "test-key-0123456789"

// stubSolar reports sunset at 17:00 local time every day and has no data
// above the Arctic Circle.
type stubSolar struct{}

func (stubSolar) SolarTimes(_ context.Context, d calendar.GregorianDate, loc calendar.Location) (calendar.SolarTimes, error) {
	if loc.Latitude > 66 {
		return calendar.SolarTimes{}, fmt.Errorf("%w: polar night", calendar.ErrMissingSolarData)
	}
	tz, err := loc.TimeLocation()
	if err != nil {
		return calendar.SolarTimes{}, err
	}
	sunset := time.Date(d.Year, d.Month, d.Day, 17, 0, 0, 0, tz)
	return calendar.SolarTimes{
		Sunset:         sunset,
		CandleLighting: sunset.Add(-18 * time.Minute),
		Havdalah:       sunset.Add(50 * time.Minute),
	}, nil
}

// testEnv sets up a complete test environment with database, config, and router
type testEnv struct {
	db       *database.DB
	cfg      *config.Config
	handlers *Handlers
	router   http.Handler
}

// fixedNow is Friday 24 Teves 5785 after sunset in Jerusalem.
var fixedNow = time.Date(2025, time.January, 24, 16, 0, 0, 0, time.UTC)

// setupTest creates a fresh test environment
func setupTest(t *testing.T, modify ...func(*config.Config)) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError + 4, // Quiet during tests
	}))

	db, err := database.Open(database.DefaultConfig(":memory:"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Migrate(context.Background())
	require.NoError(t, err)

	cfg := &config.Config{
		Port:                  8080,
		Env:                   config.EnvDevelopment,
		DatabasePath:          ":memory:",
		APIKey:                testAPIKey,
		LogLevel:              "error",
		LogFormat:             "text",
		DefaultLocationName:   "Jerusalem",
		DefaultLatitude:       31.778,
		DefaultLongitude:      35.235,
		DefaultTimeZone:       "Asia/Jerusalem",
		Diaspora:              true,
		CandleLightingMinutes: 18,
		HavdalahMinutes:       50,
		RateLimitRPS:          0,
	}
	for _, m := range modify {
		m(cfg)
	}

	clock := func() time.Time { return fixedNow }
	resolver := calendar.NewResolver(stubSolar{})
	refresher := refresh.New(db, resolver, logger, refresh.WithClock(clock))

	handlers := NewHandlers(db, resolver, refresher, cfg, logger)
	handlers.now = clock

	return &testEnv{
		db:       db,
		cfg:      cfg,
		handlers: handlers,
		router:   SetupRoutes(handlers, cfg, logger),
	}
}

// envelope mirrors Response with the data left raw for typed decoding.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *ErrorInfo      `json:"error"`
}

// makeRequest is a helper to make HTTP requests with optional API key
func makeRequest(method, path string, body interface{}, apiKey string) *http.Request {
	var bodyReader io.Reader
	if body != nil {
		jsonData, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(jsonData)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")

	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	return req
}

func (env *testEnv) do(t *testing.T, method, path string, body interface{}, apiKey string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, makeRequest(method, path, body, apiKey))

	var resp envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp), "body: %s", rr.Body.String())
	return rr, resp
}

// parseData decodes the data field of a response
func parseData(t *testing.T, resp envelope, v interface{}) {
	t.Helper()
	require.True(t, resp.Success, "response error: %+v", resp.Error)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func floatPtr(f float64) *float64 { return &f }

// =============================================================================
// CALENDAR ROUTES
// =============================================================================

func TestHealthCheck(t *testing.T) {
	env := setupTest(t)

	rr, resp := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, resp.Success)
}

func TestGetHebrewDate(t *testing.T) {
	env := setupTest(t)

	rr, resp := env.do(t, http.MethodGet, "/api/v1/hebrew/2024-10-03", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got HebrewDateResponse
	parseData(t, resp, &got)
	assert.Equal(t, calendar.HebrewDate{Year: 5785, Month: calendar.Tishrei, Day: 1}, got.Hebrew)
	assert.Equal(t, "1 Tishrei 5785", got.HebrewText)
	assert.Equal(t, "Thursday", got.Weekday)
	assert.Equal(t, calendar.NewGregorianDate(2024, time.October, 3), got.Gregorian)
	assert.False(t, got.LeapYear)
}

func TestGetHebrewDate_Errors(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"bad format", "/api/v1/hebrew/03-10-2024", http.StatusBadRequest, CodeBadRequest},
		{"out of range", "/api/v1/hebrew/9999-01-01", http.StatusBadRequest, CodeOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := env.do(t, http.MethodGet, tt.path, nil, "")
			assert.Equal(t, tt.status, rr.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestGetGregorianDate(t *testing.T) {
	env := setupTest(t)

	rr, resp := env.do(t, http.MethodGet, "/api/v1/gregorian/5784/13/1", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got HebrewDateResponse
	parseData(t, resp, &got)
	assert.Equal(t, calendar.NewGregorianDate(2024, time.March, 11), got.Gregorian)
	assert.Equal(t, "Adar II", got.MonthName)
	assert.True(t, got.LeapYear)

	// Adar II does not exist in a common year.
	rr, resp = env.do(t, http.MethodGet, "/api/v1/gregorian/5785/13/1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeInvalidHebrewDate, resp.Error.Code)

	rr, _ = env.do(t, http.MethodGet, "/api/v1/gregorian/5785/x/1", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetMolad(t *testing.T) {
	env := setupTest(t)

	rr, resp := env.do(t, http.MethodGet, "/api/v1/molad/5785/11", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got calendar.MoladMoment
	parseData(t, resp, &got)
	assert.Equal(t, "Wednesday, 6:17 am and 17 chalakim", got.Friendly)
	assert.Equal(t, "Shevat", got.MonthName)
	assert.Equal(t, calendar.NewGregorianDate(2025, time.January, 29), got.Date)
}

func TestGetYear(t *testing.T) {
	env := setupTest(t)

	rr, resp := env.do(t, http.MethodGet, "/api/v1/years/5784", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got calendar.YearInfo
	parseData(t, resp, &got)
	assert.True(t, got.Leap)
	assert.Len(t, got.Months, 13)
	assert.Equal(t, 383, got.Days)

	rr, resp = env.do(t, http.MethodGet, "/api/v1/years/10000", nil, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, CodeOutOfRange, resp.Error.Code)
}

func TestGetRoshChodesh(t *testing.T) {
	env := setupTest(t)

	rr, resp := env.do(t, http.MethodGet, "/api/v1/rosh-chodesh/2024-10-20", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got calendar.RoshChodeshInfo
	parseData(t, resp, &got)
	assert.Equal(t, "Cheshvan", got.MonthName)
	assert.Equal(t, "Friday & Shabbos", got.Text)
	assert.Len(t, got.Dates, 2)
}

func TestGetFacts_DefaultLocation(t *testing.T) {
	env := setupTest(t)

	rr, resp := env.do(t, http.MethodGet, "/api/v1/facts", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got calendar.MoladFacts
	parseData(t, resp, &got)
	assert.Equal(t, "Jerusalem", got.Location.Name)
	assert.True(t, got.Location.Diaspora)
	assert.Equal(t, "Wednesday, 6:17 am and 17 chalakim", got.Molad.Friendly)
	assert.True(t, got.IsShabbat)
	assert.True(t, got.IsShabbosMevorchim)
	assert.True(t, got.IsUpcomingShabbosMevorchim)
	assert.Equal(t, calendar.NewGregorianDate(2025, time.January, 25), got.UpcomingShabbos)
}

func TestGetFacts_QueryParameters(t *testing.T) {
	env := setupTest(t)

	rr, resp := env.do(t, http.MethodGet,
		"/api/v1/facts?at=2025-01-22&lat=40.7128&lon=-74.006&tz=America/New_York&diaspora=false&name=NYC", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var got calendar.MoladFacts
	parseData(t, resp, &got)
	assert.Equal(t, "NYC", got.Location.Name)
	assert.Equal(t, "America/New_York", got.Location.TimeZone)
	assert.False(t, got.Location.Diaspora)
	assert.False(t, got.IsShabbat)
	assert.True(t, got.IsUpcomingShabbosMevorchim)
	assert.Equal(t, 12, got.ComputedAt.Hour())
}

func TestGetFacts_Errors(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name   string
		query  string
		status int
		code   string
	}{
		{"lat without lon", "?lat=31", http.StatusBadRequest, CodeBadRequest},
		{"coordinates without tz", "?lat=31&lon=35", http.StatusBadRequest, CodeBadRequest},
		{"bad latitude", "?lat=95&lon=35&tz=UTC", http.StatusBadRequest, CodeBadRequest},
		{"bad time zone", "?tz=Nowhere/Special", http.StatusBadRequest, CodeBadRequest},
		{"bad at", "?at=yesterday", http.StatusBadRequest, CodeBadRequest},
		{"bad diaspora", "?diaspora=maybe", http.StatusBadRequest, CodeBadRequest},
		{"polar night", "?lat=69.65&lon=18.95&tz=Europe/Oslo&at=2025-01-25", http.StatusUnprocessableEntity, CodeSolarUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := env.do(t, http.MethodGet, "/api/v1/facts"+tt.query, nil, "")
			assert.Equal(t, tt.status, rr.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestNotFoundRoute(t *testing.T) {
	env := setupTest(t)

	rr, resp := env.do(t, http.MethodGet, "/api/v1/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, CodeNotFound, resp.Error.Code)
}

// =============================================================================
// LOCATION ROUTES
// =============================================================================

func TestLocations_RequireAPIKey(t *testing.T) {
	env := setupTest(t)

	rr, resp := env.do(t, http.MethodGet, "/api/v1/locations", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Missing API key", resp.Error.Message)

	rr, resp = env.do(t, http.MethodGet, "/api/v1/locations", nil, "wrong-key")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "Invalid API key", resp.Error.Message)
}

func TestLocations_DevelopmentWithoutKey(t *testing.T) {
	env := setupTest(t, func(c *config.Config) { c.APIKey = "" })

	rr, _ := env.do(t, http.MethodGet, "/api/v1/locations", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLocations_Lifecycle(t *testing.T) {
	env := setupTest(t)

	// Create
	rr, resp := env.do(t, http.MethodPost, "/api/v1/locations", CreateLocationRequest{
		Name:      "Jerusalem",
		Latitude:  floatPtr(31.778),
		Longitude: floatPtr(35.235),
		TimeZone:  "Asia/Jerusalem",
	}, testAPIKey)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created database.Location
	parseData(t, resp, &created)
	require.NotZero(t, created.ID)
	assert.True(t, created.Diaspora, "defaults to configured diaspora flag")
	base := fmt.Sprintf("/api/v1/locations/%d", created.ID)

	// Duplicate
	rr, resp = env.do(t, http.MethodPost, "/api/v1/locations", CreateLocationRequest{
		Name:      "Jerusalem",
		Latitude:  floatPtr(0),
		Longitude: floatPtr(0),
		TimeZone:  "UTC",
	}, testAPIKey)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, CodeDuplicate, resp.Error.Code)

	// List
	rr, resp = env.do(t, http.MethodGet, "/api/v1/locations", nil, testAPIKey)
	require.Equal(t, http.StatusOK, rr.Code)
	var list []database.Location
	parseData(t, resp, &list)
	assert.Len(t, list, 1)

	// Get
	rr, resp = env.do(t, http.MethodGet, base, nil, testAPIKey)
	require.Equal(t, http.StatusOK, rr.Code)
	var fetched database.Location
	parseData(t, resp, &fetched)
	assert.Equal(t, "Asia/Jerusalem", fetched.TimeZone)

	// Live facts
	rr, resp = env.do(t, http.MethodGet, base+"/facts", nil, testAPIKey)
	require.Equal(t, http.StatusOK, rr.Code)
	var facts calendar.MoladFacts
	parseData(t, resp, &facts)
	assert.True(t, facts.IsShabbosMevorchim)

	// No snapshot until refreshed
	rr, _ = env.do(t, http.MethodGet, base+"/snapshot", nil, testAPIKey)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, resp = env.do(t, http.MethodPost, base+"/refresh", nil, testAPIKey)
	require.Equal(t, http.StatusOK, rr.Code)
	var refreshed database.FactsSnapshot
	parseData(t, resp, &refreshed)

	rr, resp = env.do(t, http.MethodGet, base+"/snapshot", nil, testAPIKey)
	require.Equal(t, http.StatusOK, rr.Code)
	var snap database.FactsSnapshot
	parseData(t, resp, &snap)
	assert.Equal(t, refreshed.ID, snap.ID)
	assert.Equal(t, "Shevat", snap.Facts.Molad.MonthName)

	// Delete
	rr, _ = env.do(t, http.MethodDelete, base, nil, testAPIKey)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr, _ = env.do(t, http.MethodGet, base, nil, testAPIKey)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, _ = env.do(t, http.MethodDelete, base, nil, testAPIKey)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCreateLocation_Invalid(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"missing coordinates", CreateLocationRequest{Name: "Nowhere", TimeZone: "UTC"}},
		{"bad time zone", CreateLocationRequest{Name: "Nowhere", Latitude: floatPtr(0), Longitude: floatPtr(0), TimeZone: "Nowhere/Special"}},
		{"missing name", CreateLocationRequest{Latitude: floatPtr(0), Longitude: floatPtr(0), TimeZone: "UTC"}},
		{"unknown field", map[string]interface{}{"name": "X", "altitude": 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := env.do(t, http.MethodPost, "/api/v1/locations", tt.body, testAPIKey)
			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Equal(t, CodeBadRequest, resp.Error.Code)
		})
	}
}

func TestRefreshLocation_PolarNight(t *testing.T) {
	env := setupTest(t)

	loc := &database.Location{Name: "Tromso", Latitude: 69.65, Longitude: 18.95, TimeZone: "Europe/Oslo"}
	require.NoError(t, env.db.CreateLocation(context.Background(), loc))

	// fixedNow is a Friday, so the Shabbat check needs solar data.
	rr, resp := env.do(t, http.MethodPost, fmt.Sprintf("/api/v1/locations/%d/refresh", loc.ID), nil, testAPIKey)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, CodeSolarUnavailable, resp.Error.Code)

	_, err := env.db.LatestSnapshot(context.Background(), loc.ID)
	assert.True(t, database.IsNotFound(err))
}

func TestLocation_BadID(t *testing.T) {
	env := setupTest(t)

	rr, _ := env.do(t, http.MethodGet, "/api/v1/locations/abc", nil, testAPIKey)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// =============================================================================
// MIDDLEWARE TESTS
// =============================================================================

func TestRequestIDMiddleware(t *testing.T) {
	env := setupTest(t)

	rr, _ := env.do(t, http.MethodGet, "/health", nil, "")
	_, err := uuid.Parse(rr.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := makeRequest(http.MethodGet, "/health", nil, "")
	req.Header.Set("X-Request-ID", id)
	rr = httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	assert.Equal(t, id, rr.Header().Get("X-Request-ID"))
}

func TestRateLimitMiddleware(t *testing.T) {
	env := setupTest(t, func(c *config.Config) {
		c.RateLimitRPS = 0.001
		c.RateLimitBurst = 2
	})

	for i := 0; i < 2; i++ {
		rr, _ := env.do(t, http.MethodGet, "/api/v1/molad/5785/7", nil, "")
		require.Equal(t, http.StatusOK, rr.Code)
	}

	rr, resp := env.do(t, http.MethodGet, "/api/v1/molad/5785/7", nil, "")
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, CodeRateLimited, resp.Error.Code)

	// Health is outside the limited group.
	rr, _ = env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := RecoveryMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, makeRequest(http.MethodGet, "/", nil, ""))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	env := setupTest(t)

	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, makeRequest(http.MethodOptions, "/api/v1/facts", nil, ""))
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
