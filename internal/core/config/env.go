package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: VUESCOPE_[SECTION]_[KEY] (e.g., VUESCOPE_SCAN_CONCURRENCY).
// PROJECT_ROOT is honoured as well since existing migration scripts set it.
func ApplyEnvOverrides(cfg *Config) {
	// Paths
	setEnvString(&cfg.Paths.ProjectRoot, "PROJECT_ROOT")
	setEnvString(&cfg.Paths.ProjectRoot, "VUESCOPE_PATHS_PROJECT_ROOT")
	setEnvString(&cfg.Paths.SourceRoot, "VUESCOPE_PATHS_SOURCE_ROOT")
	setEnvString(&cfg.Paths.DependencyDir, "VUESCOPE_PATHS_DEPENDENCY_DIR")

	// Resolution
	setEnvString(&cfg.Resolution.AliasPrefix, "VUESCOPE_RESOLUTION_ALIAS_PREFIX")
	setEnvString(&cfg.Resolution.DefaultExtension, "VUESCOPE_RESOLUTION_DEFAULT_EXTENSION")
	setEnvList(&cfg.Resolution.GlobalComponents, "VUESCOPE_RESOLUTION_GLOBAL_COMPONENTS")

	// Parsing
	if val, ok := os.LookupEnv("VUESCOPE_PARSING_STRICT_TEMPLATES"); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			log.Printf("Applying env override: %s=%s", "VUESCOPE_PARSING_STRICT_TEMPLATES", val)
			cfg.Parsing.StrictTemplates = &b
		}
	}

	// Scan
	setEnvInt(&cfg.Scan.Concurrency, "VUESCOPE_SCAN_CONCURRENCY")
	setEnvFloat64(&cfg.Scan.RateLimit, "VUESCOPE_SCAN_RATE_LIMIT")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "VUESCOPE_WATCH_DEBOUNCE")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddress, "VUESCOPE_OBSERVABILITY_METRICS_ADDRESS")
	setEnvString(&cfg.Observability.OTLPEndpoint, "VUESCOPE_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvString(&cfg.Observability.ServiceName, "VUESCOPE_OBSERVABILITY_SERVICE_NAME")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		*target = val
	}
}

func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		parts := strings.Split(val, ",")
		out := make([]string, 0, len(parts))
		for _, part := range parts {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*target = out
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = i
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = d
		}
	}
}
