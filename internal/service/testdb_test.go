package service

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roadcare/roadcare-backend-go/internal/config"
	"github.com/roadcare/roadcare-backend-go/internal/database"
)

// openTestDB opens a migrated in-memory database. Single connection:
// every sqlite :memory: connection is its own database.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	require.NoError(t, database.NewMigrationManager(db).RunMigrations())

	t.Cleanup(func() { db.Close() })
	return db
}

// testScoring mirrors the default production policy
func testScoring(t *testing.T) config.ScoringConfig {
	t.Helper()

	s := config.ScoringConfig{
		WeightSeverity:      0.35,
		WeightTraffic:       0.25,
		WeightDensity:       0.20,
		WeightAge:           0.15,
		WeightAccessibility: 0.05,
		CriticalThreshold:   85.0,
		HighThreshold:       70.0,
		MediumThreshold:     50.0,
		DensityScalePerKm:   5.0,
		AgeScaleDays:        365.0,
		BaseCostPerDefect:   500.0,
		BaseHoursPerDefect:  4.0,
		WorkdayHours:        8.0,
	}
	require.NoError(t, s.Validate())
	return s
}
