// Command coverage sweeps every civil date in a range of years through the
// running API and checks that Gregorian -> Hebrew -> Gregorian returns the
// date it started from.
//
// Usage:
//
//	go run ./cmd/coverage -start 2024 -years 4 -o coverage.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"time"
)

// APIResponse matches the API response structure
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *ErrorInfo      `json:"error,omitempty"`
}

type ErrorInfo struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type HebrewDateResponse struct {
	Gregorian string `json:"gregorian"`
	Hebrew    struct {
		Year  int `json:"year"`
		Month int `json:"month"`
		Day   int `json:"day"`
	} `json:"hebrew"`
	MonthName  string `json:"month_name"`
	HebrewText string `json:"hebrew_text"`
}

// TestResult holds the result for a single date
type TestResult struct {
	Date       string `json:"date"`
	Success    bool   `json:"success"`
	MonthName  string `json:"month_name,omitempty"`
	HebrewText string `json:"hebrew_text,omitempty"`
	Error      string `json:"error,omitempty"`
}

// MonthStats tracks statistics for each Hebrew month name
type MonthStats struct {
	MonthName   string   `json:"month_name"`
	TotalDays   int      `json:"total_days"`
	SuccessDays int      `json:"success_days"`
	FailedDays  int      `json:"failed_days"`
	FailedDates []string `json:"failed_dates,omitempty"`
}

type YearStats struct {
	Year        int
	TotalDays   int
	SuccessDays int
	FailedDays  int
}

// Analysis holds the analyzed results
type Analysis struct {
	TotalDays    int
	TotalSuccess int
	TotalFailed  int
	ByMonth      map[string]*MonthStats
	ByYear       map[int]*YearStats
	AllFailures  []TestResult
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the API")
	startYear := flag.Int("start", 2024, "Start year")
	years := flag.Int("years", 4, "Number of years to test")
	verbose := flag.Bool("v", false, "Verbose output (show each date)")
	outputFile := flag.String("o", "", "Output results to JSON file")
	flag.Parse()

	endYear := *startYear + *years - 1

	fmt.Println("================================================================")
	fmt.Println("Molad API - Date Round-Trip Coverage")
	fmt.Println("================================================================")
	fmt.Printf("Base URL:    %s\n", *baseURL)
	fmt.Printf("Date Range:  %d-01-01 to %d-12-31\n", *startYear, endYear)
	fmt.Printf("Total Years: %d\n", *years)
	fmt.Println()

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(*baseURL + "/health")
	if err != nil {
		fmt.Printf("Error: Cannot connect to %s\n", *baseURL)
		fmt.Println("Make sure the API server is running.")
		os.Exit(1)
	}
	resp.Body.Close()

	results := testAllDates(client, *baseURL, *startYear, endYear, *verbose)
	analysis := analyzeResults(results)

	printSummary(analysis, *startYear, endYear)
	printFailuresByMonth(analysis)

	if *outputFile != "" {
		saveResults(*outputFile, analysis)
	}

	if analysis.TotalFailed > 0 {
		os.Exit(1)
	}
}

func testAllDates(client *http.Client, baseURL string, startYear, endYear int, verbose bool) []TestResult {
	start := time.Date(startYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, 12, 31, 0, 0, 0, 0, time.UTC)
	totalDays := int(end.Sub(start).Hours()/24) + 1

	fmt.Printf("Testing %d days...\n\n", totalDays)

	var results []TestResult
	failed := 0
	lastProgress := -1

	for current := start; !current.After(end); current = current.AddDate(0, 0, 1) {
		result := testDate(client, baseURL, current.Format("2006-01-02"))
		results = append(results, result)
		if !result.Success {
			failed++
		}

		progress := (len(results) * 100) / totalDays
		if progress != lastProgress && progress%5 == 0 {
			fmt.Printf("  Progress: %d%% (%d/%d) - Failures: %d\n", progress, len(results), totalDays, failed)
			lastProgress = progress
		}

		if verbose {
			status := "✓"
			if !result.Success {
				status = "✗"
			}
			fmt.Printf("  %s %s: %s\n", status, result.Date, result.HebrewText)
			if !result.Success {
				fmt.Printf("      Error: %s\n", result.Error)
			}
		}
	}

	fmt.Println()
	return results
}

// testDate converts the date to Hebrew and back.
func testDate(client *http.Client, baseURL, dateStr string) TestResult {
	result := TestResult{Date: dateStr}

	var hebrew HebrewDateResponse
	if err := fetch(client, fmt.Sprintf("%s/api/v1/hebrew/%s", baseURL, dateStr), &hebrew); err != nil {
		result.Error = err.Error()
		return result
	}
	result.MonthName = hebrew.MonthName
	result.HebrewText = hebrew.HebrewText

	var back HebrewDateResponse
	url := fmt.Sprintf("%s/api/v1/gregorian/%d/%d/%d", baseURL, hebrew.Hebrew.Year, hebrew.Hebrew.Month, hebrew.Hebrew.Day)
	if err := fetch(client, url, &back); err != nil {
		result.Error = "reverse: " + err.Error()
		return result
	}

	if back.Gregorian != dateStr {
		result.Error = fmt.Sprintf("round trip gave %s", back.Gregorian)
		return result
	}

	result.Success = true
	return result
}

func fetch(client *http.Client, url string, target interface{}) error {
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("connection error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read error: %w", err)
	}

	var apiResp APIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if !apiResp.Success {
		if apiResp.Error != nil {
			return fmt.Errorf("%s (%s)", apiResp.Error.Message, apiResp.Error.Code)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	return json.Unmarshal(apiResp.Data, target)
}

func analyzeResults(results []TestResult) *Analysis {
	analysis := &Analysis{
		ByMonth: make(map[string]*MonthStats),
		ByYear:  make(map[int]*YearStats),
	}

	for _, r := range results {
		analysis.TotalDays++

		date, _ := time.Parse("2006-01-02", r.Date)
		year := date.Year()
		if _, ok := analysis.ByYear[year]; !ok {
			analysis.ByYear[year] = &YearStats{Year: year}
		}
		ys := analysis.ByYear[year]
		ys.TotalDays++

		month := r.MonthName
		if month == "" {
			month = "(conversion failed)"
		}
		if _, ok := analysis.ByMonth[month]; !ok {
			analysis.ByMonth[month] = &MonthStats{MonthName: month}
		}
		ms := analysis.ByMonth[month]
		ms.TotalDays++

		if r.Success {
			analysis.TotalSuccess++
			ys.SuccessDays++
			ms.SuccessDays++
			continue
		}

		analysis.TotalFailed++
		ys.FailedDays++
		ms.FailedDays++
		ms.FailedDates = append(ms.FailedDates, r.Date)
		analysis.AllFailures = append(analysis.AllFailures, r)
	}

	return analysis
}

func printSummary(analysis *Analysis, startYear, endYear int) {
	fmt.Println("================================================================")
	fmt.Println("SUMMARY")
	fmt.Println("================================================================")
	fmt.Printf("Total Days Tested: %d\n", analysis.TotalDays)
	fmt.Printf("Successful:        %d (%.1f%%)\n", analysis.TotalSuccess, percent(analysis.TotalSuccess, analysis.TotalDays))
	fmt.Printf("Failed:            %d (%.1f%%)\n", analysis.TotalFailed, percent(analysis.TotalFailed, analysis.TotalDays))
	fmt.Println()

	fmt.Println("By Year:")
	for year := startYear; year <= endYear; year++ {
		stats, ok := analysis.ByYear[year]
		if !ok {
			continue
		}
		status := "✓"
		if stats.FailedDays > 0 {
			status = "✗"
		}
		fmt.Printf("  %s %d: %d/%d days (%.1f%% success)\n",
			status, year, stats.SuccessDays, stats.TotalDays, percent(stats.SuccessDays, stats.TotalDays))
	}
	fmt.Println()
}

func printFailuresByMonth(analysis *Analysis) {
	if analysis.TotalFailed == 0 {
		fmt.Println("No failures! 🎉")
		return
	}

	fmt.Println("================================================================")
	fmt.Println("FAILURES BY HEBREW MONTH")
	fmt.Println("================================================================")

	var months []*MonthStats
	for _, stats := range analysis.ByMonth {
		if stats.FailedDays > 0 {
			months = append(months, stats)
		}
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].FailedDays > months[j].FailedDays
	})

	for _, stats := range months {
		fmt.Printf("\n%s: %d failures\n", stats.MonthName, stats.FailedDays)
		for i, date := range stats.FailedDates {
			if i == 5 {
				fmt.Printf("  ... and %d more\n", len(stats.FailedDates)-5)
				break
			}
			fmt.Printf("  - %s\n", date)
		}
	}
	fmt.Println()
}

func saveResults(filename string, analysis *Analysis) {
	output := struct {
		GeneratedAt string                 `json:"generated_at"`
		Summary     map[string]interface{} `json:"summary"`
		ByMonth     map[string]*MonthStats `json:"by_month"`
		Failures    []TestResult           `json:"failures"`
	}{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Summary: map[string]interface{}{
			"total_days":    analysis.TotalDays,
			"total_success": analysis.TotalSuccess,
			"total_failed":  analysis.TotalFailed,
			"success_rate":  fmt.Sprintf("%.2f%%", percent(analysis.TotalSuccess, analysis.TotalDays)),
		},
		ByMonth:  analysis.ByMonth,
		Failures: analysis.AllFailures,
	}

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		fmt.Printf("Error marshaling results: %v\n", err)
		return
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		fmt.Printf("Error writing file: %v\n", err)
		return
	}

	fmt.Printf("Results saved to: %s\n", filename)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
