package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// =============================================================================
// Response Types - Match the actual API response structure
// =============================================================================

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HebrewDateResponse is the response for /hebrew/{date} and /gregorian/...
type HebrewDateResponse struct {
	Gregorian  string `json:"gregorian"`
	Weekday    string `json:"weekday"`
	MonthName  string `json:"month_name"`
	HebrewText string `json:"hebrew_text"`
	LeapYear   bool   `json:"leap_year"`
}

// MoladResponse is the response for /molad/{year}/{month}
type MoladResponse struct {
	MonthName string `json:"month_name"`
	Friendly  string `json:"friendly"`
	Date      string `json:"date"`
}

// RoshChodeshResponse is the response for /rosh-chodesh/{date}
type RoshChodeshResponse struct {
	MonthName string   `json:"month_name"`
	Days      []string `json:"rosh_chodesh_days"`
	Dates     []string `json:"rosh_chodesh_dates"`
	Text      string   `json:"rosh_chodesh"`
}

// YearResponse is the response for /years/{year}
type YearResponse struct {
	Year   int  `json:"year"`
	Leap   bool `json:"leap"`
	Days   int  `json:"days"`
	Months []struct {
		Name   string `json:"name"`
		Length int    `json:"length"`
		Start  string `json:"start"`
	} `json:"months"`
}

// FactsResponse is the response for /facts and /locations/{id}/facts
type FactsResponse struct {
	Location struct {
		Name string `json:"name"`
	} `json:"location"`
	Molad                      MoladResponse       `json:"molad"`
	CurrentMolad               MoladResponse       `json:"current_molad"`
	RoshChodesh                RoshChodeshResponse `json:"rosh_chodesh"`
	IsShabbat                  bool                `json:"is_shabbat"`
	IsShabbosMevorchim         bool                `json:"is_shabbos_mevorchim"`
	IsUpcomingShabbosMevorchim bool                `json:"is_upcoming_shabbos_mevorchim"`
	UpcomingShabbos            string              `json:"upcoming_shabbos"`
}

// LocationResponse is a saved location.
type LocationResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	TimeZone string `json:"timezone"`
}

// SnapshotResponse is the response for /locations/{id}/snapshot
type SnapshotResponse struct {
	ID         string        `json:"id"`
	LocationID int64         `json:"location_id"`
	Facts      FactsResponse `json:"facts"`
}

// HealthResponse is the response for /health
type HealthResponse struct {
	Status string `json:"status"`
}

// =============================================================================
// Test Runner
// =============================================================================

type TestRunner struct {
	baseURL      string
	apiKey       string
	client       *http.Client
	verbose      bool
	successCount int
	errorCount   int
	errors       []string
}

func NewTestRunner(baseURL, apiKey string, verbose bool) *TestRunner {
	return &TestRunner{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		verbose: verbose,
	}
}

func (tr *TestRunner) Run() {
	fmt.Println("==============================================")
	fmt.Println("Molad API Test Suite")
	fmt.Println("==============================================")
	fmt.Printf("Base URL: %s\n", tr.baseURL)
	fmt.Println()

	tr.testHealth()
	tr.testConversions()
	tr.testMolad()
	tr.testRoshChodesh()
	tr.testYear()
	tr.testFacts()
	tr.testEdgeCases()
	tr.testLocations()

	tr.printSummary()
}

// =============================================================================
// Test Groups
// =============================================================================

func (tr *TestRunner) testHealth() {
	tr.printSection("Health Check")

	resp, err := tr.get("/health")
	if err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	var health HealthResponse
	if err := tr.parseDataAs(resp, &health); err != nil {
		tr.recordError("Health", err.Error())
		return
	}

	if health.Status == "healthy" {
		tr.recordSuccess("Health check passed")
	} else {
		tr.recordError("Health", fmt.Sprintf("Unexpected status: %s", health.Status))
	}
}

func (tr *TestRunner) testConversions() {
	tr.printSection("Date Conversion")

	cases := []struct {
		path string
		want string
	}{
		{"/api/v1/hebrew/2024-10-03", "1 Tishrei 5785"},
		{"/api/v1/hebrew/2025-01-25", "25 Teves 5785"},
		{"/api/v1/hebrew/2024-03-24", "14 Adar II 5784"},
	}
	for _, c := range cases {
		var data HebrewDateResponse
		if !tr.getData(c.path, &data) {
			continue
		}
		if data.HebrewText == c.want {
			tr.recordSuccess(fmt.Sprintf("%s -> %s (%s)", data.Gregorian, data.HebrewText, data.Weekday))
		} else {
			tr.recordError(c.path, fmt.Sprintf("got %q, want %q", data.HebrewText, c.want))
		}
	}

	var data HebrewDateResponse
	if tr.getData("/api/v1/gregorian/5784/12/1", &data) {
		if data.Gregorian == "2024-02-10" && data.MonthName == "Adar I" && data.LeapYear {
			tr.recordSuccess("1 Adar I 5784 -> 2024-02-10")
		} else {
			tr.recordError("Gregorian", fmt.Sprintf("got %s %s leap=%v", data.Gregorian, data.MonthName, data.LeapYear))
		}
	}
}

func (tr *TestRunner) testMolad() {
	tr.printSection("Molad")

	cases := []struct {
		year, month int
		want        string
	}{
		{5785, 7, "Thursday, 3:21 am and 13 chalakim"},
		{5785, 11, "Wednesday, 6:17 am and 17 chalakim"},
		{5785, 1, "Shabbos, 7:46 am and 1 chalakim"},
		{5784, 13, "Sunday, 10:13 am and 6 chalakim"},
	}
	for _, c := range cases {
		var data MoladResponse
		if !tr.getData(fmt.Sprintf("/api/v1/molad/%d/%d", c.year, c.month), &data) {
			continue
		}
		if data.Friendly == c.want {
			tr.recordSuccess(fmt.Sprintf("Molad %s %d: %s", data.MonthName, c.year, data.Friendly))
		} else {
			tr.recordError(fmt.Sprintf("Molad %d/%d", c.year, c.month), fmt.Sprintf("got %q, want %q", data.Friendly, c.want))
		}
	}
}

func (tr *TestRunner) testRoshChodesh() {
	tr.printSection("Rosh Chodesh")

	cases := []struct {
		date  string
		month string
		text  string
	}{
		{"2024-10-20", "Cheshvan", "Friday & Shabbos"},
		{"2025-01-10", "Shevat", "Thursday"},
		{"2024-02-20", "Adar II", "Sunday & Monday"},
	}
	for _, c := range cases {
		var data RoshChodeshResponse
		if !tr.getData("/api/v1/rosh-chodesh/"+c.date, &data) {
			continue
		}
		if data.MonthName == c.month && data.Text == c.text {
			tr.recordSuccess(fmt.Sprintf("%s: Rosh Chodesh %s is %s %v", c.date, data.MonthName, data.Text, data.Dates))
		} else {
			tr.recordError(c.date, fmt.Sprintf("got %s %q", data.MonthName, data.Text))
		}
	}
}

func (tr *TestRunner) testYear() {
	tr.printSection("Year Table")

	var data YearResponse
	if !tr.getData("/api/v1/years/5784", &data) {
		return
	}
	if !data.Leap || data.Days != 383 || len(data.Months) != 13 {
		tr.recordError("Year 5784", fmt.Sprintf("leap=%v days=%d months=%d", data.Leap, data.Days, len(data.Months)))
		return
	}
	tr.recordSuccess("5784: leap year, 383 days, 13 months")

	if tr.verbose {
		for _, m := range data.Months {
			fmt.Printf("    %-10s %s  %d days\n", m.Name, m.Start, m.Length)
		}
		fmt.Println()
	}
}

func (tr *TestRunner) testFacts() {
	tr.printSection("Facts")

	// Friday night before Rosh Chodesh Shevat 5785 in Jerusalem.
	path := "/api/v1/facts?lat=31.778&lon=35.235&tz=Asia/Jerusalem&name=Jerusalem&at=2025-01-24T20:00:00%2B02:00"
	var data FactsResponse
	if tr.getData(path, &data) {
		if data.IsShabbat && data.IsShabbosMevorchim && data.IsUpcomingShabbosMevorchim && data.Molad.MonthName == "Shevat" {
			tr.recordSuccess(fmt.Sprintf("Jerusalem 2025-01-24 20:00: Shabbos Mevorchim %s, molad %s", data.Molad.MonthName, data.Molad.Friendly))
		} else {
			tr.recordError("Facts Friday night", fmt.Sprintf("shabbat=%v mevorchim=%v upcoming=%v molad=%s",
				data.IsShabbat, data.IsShabbosMevorchim, data.IsUpcomingShabbosMevorchim, data.Molad.MonthName))
		}
	}

	// Default location, right now.
	var now FactsResponse
	if tr.getData("/api/v1/facts", &now) {
		tr.recordSuccess(fmt.Sprintf("Now at %s: next molad %s, upcoming Shabbos %s",
			now.Location.Name, now.Molad.Friendly, now.UpcomingShabbos))
	}
}

func (tr *TestRunner) testEdgeCases() {
	tr.printSection("Edge Cases")

	cases := []struct {
		name   string
		path   string
		status int
		code   string
	}{
		{"Invalid date format", "/api/v1/hebrew/2025/01/01", http.StatusNotFound, ""},
		{"Impossible date", "/api/v1/hebrew/2025-02-30", http.StatusBadRequest, ""},
		{"Adar II in a common year", "/api/v1/molad/5785/13", http.StatusBadRequest, "INVALID_HEBREW_DATE"},
		{"Year out of range", "/api/v1/years/0", http.StatusBadRequest, "OUT_OF_RANGE"},
		{"Lat without lon", "/api/v1/facts?lat=31.7", http.StatusBadRequest, ""},
		{"Unknown time zone", "/api/v1/facts?tz=Mars/Olympus", http.StatusBadRequest, ""},
		{"Polar night", "/api/v1/facts?lat=69.65&lon=18.96&tz=Europe/Oslo&at=2025-12-20", http.StatusUnprocessableEntity, "SOLAR_DATA_UNAVAILABLE"},
	}
	for _, c := range cases {
		tr.expectStatus(c.name, http.MethodGet, c.path, nil, c.status, c.code)
	}
}

func (tr *TestRunner) testLocations() {
	tr.printSection("Saved Locations")

	if tr.apiKey == "" {
		fmt.Println("  (skipped: no -key given)")
		return
	}

	tr.expectStatusNoKey("Missing API key", "/api/v1/locations", http.StatusUnauthorized)

	name := fmt.Sprintf("apitest-%d", time.Now().UnixNano())
	body := map[string]any{
		"name":      name,
		"latitude":  40.7128,
		"longitude": -74.006,
		"timezone":  "America/New_York",
		"diaspora":  true,
	}

	resp, err := tr.do(http.MethodPost, "/api/v1/locations", body)
	if err != nil {
		tr.recordError("Create location", err.Error())
		return
	}
	var loc LocationResponse
	if err := tr.parseDataAs(resp, &loc); err != nil {
		tr.recordError("Create location", err.Error())
		return
	}
	tr.recordSuccess(fmt.Sprintf("Created location %d (%s)", loc.ID, loc.Name))

	base := fmt.Sprintf("/api/v1/locations/%d", loc.ID)
	defer func() {
		if _, err := tr.do(http.MethodDelete, base, nil); err != nil {
			tr.recordError("Delete location", err.Error())
			return
		}
		tr.recordSuccess("Deleted location")
		tr.expectStatus("Deleted location is gone", http.MethodGet, base, nil, http.StatusNotFound, "NOT_FOUND")
	}()

	tr.expectStatus("Duplicate name", http.MethodPost, "/api/v1/locations", body, http.StatusConflict, "DUPLICATE")

	var facts FactsResponse
	if tr.doData(http.MethodGet, base+"/facts", &facts) {
		tr.recordSuccess(fmt.Sprintf("Live facts for %s: next molad %s", facts.Location.Name, facts.Molad.Friendly))
	}

	var snap SnapshotResponse
	if tr.doData(http.MethodPost, base+"/refresh", &snap) {
		tr.recordSuccess(fmt.Sprintf("Refreshed snapshot %s", snap.ID))
	}

	var latest SnapshotResponse
	if tr.doData(http.MethodGet, base+"/snapshot", &latest) {
		if latest.ID == snap.ID {
			tr.recordSuccess("Latest snapshot matches refresh")
		} else {
			tr.recordError("Snapshot", fmt.Sprintf("got %s, want %s", latest.ID, snap.ID))
		}
	}
}

// =============================================================================
// Helper Methods
// =============================================================================

func (tr *TestRunner) get(path string) (*APIResponse, error) {
	return tr.do(http.MethodGet, path, nil)
}

// getData fetches path and decodes its data, recording any failure.
func (tr *TestRunner) getData(path string, target interface{}) bool {
	return tr.doData(http.MethodGet, path, target)
}

func (tr *TestRunner) doData(method, path string, target interface{}) bool {
	resp, err := tr.do(method, path, nil)
	if err != nil {
		tr.recordError(path, err.Error())
		return false
	}
	if err := tr.parseDataAs(resp, target); err != nil {
		tr.recordError(path, err.Error())
		return false
	}
	return true
}

func (tr *TestRunner) do(method, path string, body interface{}) (*APIResponse, error) {
	resp, err := tr.request(method, path, body, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	apiResp, err := decodeResponse(resp.Body)
	if err != nil {
		return nil, err
	}

	if !apiResp.Success {
		errMsg := "unknown error"
		if apiResp.Error != nil {
			errMsg = apiResp.Error.Message
		}
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, errMsg)
	}

	return apiResp, nil
}

func (tr *TestRunner) request(method, path string, body interface{}, withKey bool) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, tr.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withKey && tr.apiKey != "" {
		req.Header.Set("X-API-Key", tr.apiKey)
	}
	return tr.client.Do(req)
}

func (tr *TestRunner) expectStatus(name, method, path string, body interface{}, status int, code string) {
	resp, err := tr.request(method, path, body, true)
	if err != nil {
		tr.recordError(name, err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != status {
		tr.recordError(name, fmt.Sprintf("status %d, want %d", resp.StatusCode, status))
		return
	}
	if code != "" {
		apiResp, err := decodeResponse(resp.Body)
		if err != nil {
			tr.recordError(name, err.Error())
			return
		}
		if apiResp.Error == nil || apiResp.Error.Code != code {
			tr.recordError(name, fmt.Sprintf("missing error code %s", code))
			return
		}
	}
	tr.recordSuccess(fmt.Sprintf("%s rejected with %d", name, status))
}

func (tr *TestRunner) expectStatusNoKey(name, path string, status int) {
	resp, err := tr.request(http.MethodGet, path, nil, false)
	if err != nil {
		tr.recordError(name, err.Error())
		return
	}
	resp.Body.Close()

	if resp.StatusCode == status {
		tr.recordSuccess(fmt.Sprintf("%s rejected with %d", name, status))
	} else {
		tr.recordError(name, fmt.Sprintf("status %d, want %d", resp.StatusCode, status))
	}
}

func decodeResponse(r io.Reader) (*APIResponse, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return &apiResp, nil
}

func (tr *TestRunner) parseDataAs(resp *APIResponse, target interface{}) error {
	// Re-marshal and unmarshal to convert map to struct
	dataBytes, err := json.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}
	return json.Unmarshal(dataBytes, target)
}

func (tr *TestRunner) printSection(name string) {
	fmt.Println()
	fmt.Printf("--- %s ---\n", name)
	fmt.Println()
}

func (tr *TestRunner) recordSuccess(msg string) {
	tr.successCount++
	fmt.Printf("  ✓ %s\n", msg)
}

func (tr *TestRunner) recordError(context, msg string) {
	tr.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	tr.errors = append(tr.errors, errStr)
	fmt.Printf("  ✗ %s\n", errStr)
}

func (tr *TestRunner) printSummary() {
	fmt.Println()
	fmt.Println("==============================================")
	fmt.Println("Summary")
	fmt.Println("==============================================")
	fmt.Printf("  Passed: %d\n", tr.successCount)
	fmt.Printf("  Failed: %d\n", tr.errorCount)
	fmt.Println()

	if tr.errorCount > 0 {
		fmt.Println("Failures:")
		for _, err := range tr.errors {
			fmt.Printf("  • %s\n", err)
		}
		fmt.Println()
	}

	if tr.errorCount == 0 {
		fmt.Println("All tests passed! ✓")
	} else {
		fmt.Printf("Tests completed with %d failure(s)\n", tr.errorCount)
	}
}

// =============================================================================
// Main
// =============================================================================

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	apiKey := flag.String("key", os.Getenv("API_KEY"), "API key for location routes")
	verbose := flag.Bool("v", false, "Verbose output (show year table)")
	flag.Parse()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	runner := NewTestRunner(*baseURL, *apiKey, *verbose)
	runner.Run()

	if runner.errorCount > 0 {
		os.Exit(1)
	}
}
