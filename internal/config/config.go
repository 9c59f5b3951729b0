package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
)

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// Map matching
	DistanceThreshold float64 // meters; default map-matching tolerance
	MaxNearbyRadius   float64 // meters; cap on nearby defect searches

	Scoring ScoringConfig
}

// ScoringConfig holds the priority algorithm policy. Weights must sum to
// 1.0 and level thresholds must be strictly ordered; both are checked once
// at startup.
type ScoringConfig struct {
	WeightSeverity      float64
	WeightTraffic       float64
	WeightDensity       float64
	WeightAge           float64
	WeightAccessibility float64

	CriticalThreshold float64
	HighThreshold     float64
	MediumThreshold   float64

	// Policy constants flagged for product calibration: defect density
	// saturates at 5 defects/km, age at 365 days.
	DensityScalePerKm float64
	AgeScaleDays      float64

	BaseCostPerDefect  float64
	BaseHoursPerDefect float64
	WorkdayHours       float64
}

// Load 加载配置
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/roadcare.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	return &Config{
		Port:              port,
		DBPath:            dbPath,
		JWTSecret:         jwtSecret,
		DistanceThreshold: envFloat("DISTANCE_THRESHOLD", 50.0),
		MaxNearbyRadius:   envFloat("MAX_NEARBY_RADIUS", 5000.0),
		Scoring: ScoringConfig{
			WeightSeverity:      envFloat("WEIGHT_SEVERITY", 0.35),
			WeightTraffic:       envFloat("WEIGHT_TRAFFIC", 0.25),
			WeightDensity:       envFloat("WEIGHT_DENSITY", 0.20),
			WeightAge:           envFloat("WEIGHT_AGE", 0.15),
			WeightAccessibility: envFloat("WEIGHT_ACCESSIBILITY", 0.05),
			CriticalThreshold:   envFloat("CRITICAL_PRIORITY_THRESHOLD", 85.0),
			HighThreshold:       envFloat("HIGH_PRIORITY_THRESHOLD", 70.0),
			MediumThreshold:     envFloat("MEDIUM_PRIORITY_THRESHOLD", 50.0),
			DensityScalePerKm:   envFloat("DENSITY_SCALE_PER_KM", 5.0),
			AgeScaleDays:        envFloat("AGE_SCALE_DAYS", 365.0),
			BaseCostPerDefect:   envFloat("BASE_COST_PER_DEFECT", 500.0),
			BaseHoursPerDefect:  envFloat("BASE_HOURS_PER_DEFECT", 4.0),
			WorkdayHours:        envFloat("WORKDAY_HOURS", 8.0),
		},
	}
}

// Validate fails fast on inconsistent scoring policy
func (c *Config) Validate() error {
	if c.DistanceThreshold <= 0 {
		return fmt.Errorf("distance threshold must be positive, got %v", c.DistanceThreshold)
	}
	return c.Scoring.Validate()
}

// Validate checks the weight-sum and threshold-ordering invariants
func (s ScoringConfig) Validate() error {
	sum := s.WeightSeverity + s.WeightTraffic + s.WeightDensity + s.WeightAge + s.WeightAccessibility
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("priority weights must sum to 1.0, got %v", sum)
	}

	if s.CriticalThreshold <= s.HighThreshold {
		return fmt.Errorf("critical threshold (%v) must exceed high threshold (%v)",
			s.CriticalThreshold, s.HighThreshold)
	}
	if s.HighThreshold <= s.MediumThreshold {
		return fmt.Errorf("high threshold (%v) must exceed medium threshold (%v)",
			s.HighThreshold, s.MediumThreshold)
	}

	if s.DensityScalePerKm <= 0 || s.AgeScaleDays <= 0 {
		return fmt.Errorf("density and age scales must be positive")
	}
	if s.WorkdayHours <= 0 {
		return fmt.Errorf("workday hours must be positive")
	}

	return nil
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
