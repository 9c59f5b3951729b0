package database

import (
	"database/sql"
	"fmt"
	"log"
	"sort"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations holds the full schema history, applied in version order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_road_segments",
		SQL: `
			CREATE TABLE IF NOT EXISTS road_segments (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				osm_id TEXT UNIQUE,
				name TEXT NOT NULL DEFAULT '',
				road_type TEXT NOT NULL DEFAULT '',
				geometry TEXT NOT NULL,
				length_meters REAL NOT NULL DEFAULT 0,
				traffic_importance INTEGER NOT NULL DEFAULT 5,
				min_lat REAL NOT NULL DEFAULT 0,
				min_lon REAL NOT NULL DEFAULT 0,
				max_lat REAL NOT NULL DEFAULT 0,
				max_lon REAL NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_road_segments_bbox
				ON road_segments (min_lat, max_lat, min_lon, max_lon);
		`,
	},
	{
		Version: 2,
		Name:    "create_georeferenced_defects",
		SQL: `
			CREATE TABLE IF NOT EXISTS georeferenced_defects (
				id TEXT PRIMARY KEY,
				detection_id TEXT NOT NULL,
				segment_id INTEGER REFERENCES road_segments(id),
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				matched_lat REAL,
				matched_lon REAL,
				distance_to_road REAL,
				confidence REAL,
				heading REAL,
				defect_type TEXT NOT NULL DEFAULT '',
				severity_score REAL,
				is_matched INTEGER NOT NULL DEFAULT 0,
				needs_review INTEGER NOT NULL DEFAULT 0,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_georef_defects_detection
				ON georeferenced_defects (detection_id);
			CREATE INDEX IF NOT EXISTS idx_georef_defects_segment
				ON georeferenced_defects (segment_id);
			CREATE INDEX IF NOT EXISTS idx_georef_defects_location
				ON georeferenced_defects (latitude, longitude);
		`,
	},
	{
		Version: 3,
		Name:    "create_priority_scores",
		SQL: `
			CREATE TABLE IF NOT EXISTS priority_scores (
				id TEXT PRIMARY KEY,
				segment_id INTEGER NOT NULL UNIQUE,
				severity_score REAL NOT NULL,
				traffic_score REAL NOT NULL DEFAULT 50,
				density_score REAL NOT NULL DEFAULT 50,
				age_score REAL NOT NULL DEFAULT 50,
				accessibility_score REAL NOT NULL DEFAULT 50,
				total_priority_score REAL NOT NULL,
				priority_level TEXT NOT NULL,
				defect_count INTEGER NOT NULL DEFAULT 0,
				avg_severity REAL NOT NULL DEFAULT 0,
				max_severity REAL NOT NULL DEFAULT 0,
				road_name TEXT NOT NULL DEFAULT '',
				road_type TEXT NOT NULL DEFAULT '',
				estimated_cost REAL NOT NULL DEFAULT 0,
				estimated_duration_days INTEGER NOT NULL DEFAULT 1,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL,
				calculated_at TIMESTAMP NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_priority_scores_total
				ON priority_scores (total_priority_score);
		`,
	},
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db *sql.DB
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *sql.DB) *MigrationManager {
	return &MigrationManager{db: db}
}

// InitMigrationsTable creates the migrations tracking table
func (m *MigrationManager) InitMigrationsTable() error {
	query := `
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := m.db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// GetAppliedMigrations returns a list of applied migration versions
func (m *MigrationManager) GetAppliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}

	return applied, nil
}

// ApplyMigration applies a single migration
func (m *MigrationManager) ApplyMigration(migration Migration) error {
	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	// Execute migration SQL
	_, err = tx.Exec(migration.SQL)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to execute migration %d: %w", migration.Version, err)
	}

	// Record migration
	_, err = tx.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", migration.Version, migration.Name)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
	}

	return nil
}

// RunMigrations runs all pending migrations
func (m *MigrationManager) RunMigrations() error {
	// Initialize migrations table
	if err := m.InitMigrationsTable(); err != nil {
		return err
	}

	// Get applied migrations
	applied, err := m.GetAppliedMigrations()
	if err != nil {
		return err
	}

	// Apply pending migrations in version order
	pending := make([]Migration, len(migrations))
	copy(pending, migrations)
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].Version < pending[j].Version
	})

	for _, migration := range pending {
		if applied[migration.Version] {
			continue
		}

		if err := m.ApplyMigration(migration); err != nil {
			return err
		}
		log.Printf("Applied migration %d: %s", migration.Version, migration.Name)
	}

	return nil
}
