// Command import loads saved locations from a JSON file into the SQLite
// database.
//
// Usage:
//
//	go run ./cmd/import -json data/locations.json -db data/molad.db
//
// This tool:
// 1. Parses the locations JSON file
// 2. Creates/opens the SQLite database
// 3. Runs migrations to ensure schema is current
// 4. Inserts all locations in a single transaction
// 5. Optionally computes a first facts snapshot for every location
//
// Locations whose name already exists are skipped, so the import can be
// rerun after adding entries to the file.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/molad-api/internal/calendar"
	"github.com/zapponejosh/molad-api/internal/database"
	"github.com/zapponejosh/molad-api/internal/refresh"
	"github.com/zapponejosh/molad-api/internal/zmanim"
)

func main() {
	jsonPath := flag.String("json", "data/locations.json", "Path to locations JSON file")
	dbPath := flag.String("db", "data/molad.db", "Path to SQLite database")
	snapshot := flag.Bool("refresh", false, "Compute a facts snapshot for every location after import")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	if err := run(*jsonPath, *dbPath, *snapshot, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

func run(jsonPath, dbPath string, snapshot bool, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and parse JSON
	// =========================================================================
	logger.Info("reading JSON file", slog.String("path", jsonPath))

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("read JSON file: %w", err)
	}

	var importData database.ImportData
	if err := json.Unmarshal(data, &importData); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}

	logger.Info("parsed JSON",
		slog.Int("locations", len(importData.Locations)),
		slog.String("source", importData.Metadata.Source),
		slog.String("generated_at", importData.Metadata.GeneratedAt),
	)

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	logger.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 3: Import locations in a transaction
	// =========================================================================
	var stats ImportStats
	err = db.WithTx(ctx, func(tx *database.Tx) error {
		return importLocations(ctx, tx, importData.Locations, logger, &stats)
	})
	if err != nil {
		return fmt.Errorf("import data: %w", err)
	}

	// =========================================================================
	// Step 4: Optional first snapshots
	// =========================================================================
	if snapshot {
		r := refresh.New(db, calendar.NewResolver(zmanim.NewProvider()), logger)
		n, err := r.RefreshAll(ctx)
		stats.Snapshots = n
		if err != nil {
			logger.Warn("some snapshots failed", slog.String("error", err.Error()))
		}
	}

	// =========================================================================
	// Step 5: Verify import
	// =========================================================================
	total, err := db.CountLocations(ctx)
	if err != nil {
		return fmt.Errorf("count locations: %w", err)
	}

	elapsed := time.Since(startTime)

	logger.Info("import verified",
		slog.Int("locations", total),
		slog.Duration("elapsed", elapsed),
	)

	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Locations imported:  %d\n", stats.Imported)
	fmt.Printf("Already present:     %d\n", stats.Skipped)
	fmt.Printf("Locations in DB:     %d\n", total)
	if snapshot {
		fmt.Printf("Snapshots computed:  %d\n", stats.Snapshots)
	}
	fmt.Printf("Time elapsed:        %v\n", elapsed.Round(time.Millisecond))

	return nil
}

// ImportStats tracks import statistics.
type ImportStats struct {
	Imported  int
	Skipped   int
	Snapshots int
}

// importLocations inserts every location, skipping names already saved.
func importLocations(ctx context.Context, tx *database.Tx, locations []calendar.Location, logger *slog.Logger, stats *ImportStats) error {
	for i, l := range locations {
		loc := database.LocationFromCalendar(l)

		err := tx.CreateLocation(ctx, loc)
		switch {
		case database.IsDuplicate(err):
			logger.Debug("location exists", slog.String("name", loc.Name))
			stats.Skipped++
			continue
		case err != nil:
			return fmt.Errorf("create location %d (%s): %w", i+1, l.Name, err)
		}

		logger.Debug("location imported",
			slog.Int64("id", loc.ID),
			slog.String("name", loc.Name),
		)
		stats.Imported++
	}

	return nil
}
