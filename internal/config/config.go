package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Host         string
	Port         int
	AllowOrigins []string
	LogLevel     string
	MaxUploadMB  int
	LogFile      string

	Store         string
	DatabaseDSN   string
	BatchSize     int
	ToleranceM    float64
	ToleranceFile string

	// env values that failed to parse, reported by Validate
	parseErrs []error
}

// LoadDotEnv preloads variables from the given .env files (default ".env").
// Variables already set in the environment win. A missing file is not an
// error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func Load() Config {
	var errs []error
	port := envInt("PORT", "8082", &errs)
	mb := envInt("MAX_UPLOAD_MB", "64", &errs)
	batch := envInt("BATCH_SIZE", "100", &errs)
	tol := envFloat("MATCH_TOLERANCE_M", "50", &errs)
	origins := strings.Split(getenv("ALLOW_ORIGINS", "*"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return Config{
		Host:          getenv("HOST", "127.0.0.1"),
		Port:          port,
		AllowOrigins:  origins,
		LogLevel:      getenv("LOG_LEVEL", "info"),
		MaxUploadMB:   mb,
		LogFile:       getenv("LOG_FILE", "logs/sinaliza-recon.log"),
		Store:         strings.ToLower(getenv("STORE", StoreSQLite)),
		DatabaseDSN:   getenv("DATABASE_DSN", "sinaliza-recon.db"),
		BatchSize:     batch,
		ToleranceM:    tol,
		ToleranceFile: os.Getenv("TOLERANCE_FILE"),
		parseErrs:     errs,
	}
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	errs := append([]error(nil), c.parseErrs...)
	if (c.Port <= 0 || c.Port > 65535) && !c.failedToParse("PORT") {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.Port))
	}
	if c.Store != StoreSQLite && c.Store != StorePostgres {
		errs = append(errs, fmt.Errorf("STORE must be %q or %q, got %q", StoreSQLite, StorePostgres, c.Store))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is empty"))
	}
	if c.BatchSize <= 0 && !c.failedToParse("BATCH_SIZE") {
		errs = append(errs, fmt.Errorf("BATCH_SIZE must be positive, got %d", c.BatchSize))
	}
	if !(c.ToleranceM > 0) && !c.failedToParse("MATCH_TOLERANCE_M") {
		errs = append(errs, fmt.Errorf("MATCH_TOLERANCE_M must be positive, got %g", c.ToleranceM))
	}
	return errors.Join(errs...)
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

type parseError struct {
	key, value string
	err        error
}

func (e *parseError) Error() string {
	return fmt.Sprintf("%s: cannot parse %q: %v", e.key, e.value, e.err)
}

func (e *parseError) Unwrap() error { return e.err }

func (c Config) failedToParse(key string) bool {
	for _, err := range c.parseErrs {
		var pe *parseError
		if errors.As(err, &pe) && pe.key == key {
			return true
		}
	}
	return false
}

func envInt(k, def string, errs *[]error) int {
	v := getenv(k, def)
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		*errs = append(*errs, &parseError{key: k, value: v, err: err})
	}
	return n
}

func envFloat(k, def string, errs *[]error) float64 {
	v := getenv(k, def)
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		*errs = append(*errs, &parseError{key: k, value: v, err: err})
	}
	return f
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
