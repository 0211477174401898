package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/valmyr/matchops/internal/platform/logging"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv                      string
	ServiceName                 string
	ServiceVersion              string
	HTTPAddr                    string
	DBURL                       string
	DBDisablePreparedBinary     bool
	CacheTTL                    time.Duration
	CORSAllowedOrigins          []string
	ReadTimeout                 time.Duration
	WriteTimeout                time.Duration
	PprofEnabled                bool
	PprofAddr                   string
	UptraceEnabled              bool
	UptraceDSN                  string
	UptraceLogsEnabled          bool
	PyroscopeEnabled            bool
	PyroscopeServerAddress      string
	PyroscopeAppName            string
	PyroscopeAuthToken          string
	PyroscopeBasicAuthUser      string
	PyroscopeBasicAuthPassword  string
	PyroscopeUploadRate         time.Duration
	RiotEnabled                 bool
	RiotAPIKey                  string
	RiotVersionsURL             string
	RiotTimeout                 time.Duration
	RiotMaxRetries              int
	RiotCircuitEnabled          bool
	RiotCircuitFailureCount     int
	RiotCircuitOpenTimeout      time.Duration
	RiotCircuitHalfOpenMaxReq   int
	FaceitEnabled               bool
	FaceitBaseURL               string
	FaceitToken                 string
	FaceitTimeout               time.Duration
	FaceitMaxRetries            int
	FaceitCircuitEnabled        bool
	FaceitCircuitFailureCount   int
	FaceitCircuitOpenTimeout    time.Duration
	FaceitCircuitHalfOpenMaxReq int
	InternalJobToken            string
	ImportMaxWorkers            int
	LogLevel                    logging.Level
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}
	uptraceLogsEnabled, err := strconv.ParseBool(getEnv("UPTRACE_LOGS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_LOGS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	riotEnabled, err := strconv.ParseBool(getEnv("RIOT_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RIOT_ENABLED: %w", err)
	}
	riotAPIKey := strings.TrimSpace(getEnv("RIOT_API_KEY", ""))
	if riotEnabled && riotAPIKey == "" {
		return Config{}, fmt.Errorf("RIOT_API_KEY is required when RIOT_ENABLED=true")
	}
	riotTimeout, err := time.ParseDuration(getEnv("RIOT_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RIOT_TIMEOUT: %w", err)
	}
	if riotTimeout <= 0 {
		return Config{}, fmt.Errorf("RIOT_TIMEOUT must be > 0")
	}
	riotMaxRetries, err := getEnvAsInt("RIOT_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse RIOT_MAX_RETRIES: %w", err)
	}
	if riotMaxRetries < 0 {
		return Config{}, fmt.Errorf("RIOT_MAX_RETRIES must be >= 0")
	}
	riotCircuitEnabled, err := strconv.ParseBool(getEnv("RIOT_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RIOT_CIRCUIT_ENABLED: %w", err)
	}
	riotCircuitFailureCount, err := getEnvAsInt("RIOT_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse RIOT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if riotCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("RIOT_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	riotCircuitOpenTimeout, err := time.ParseDuration(getEnv("RIOT_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse RIOT_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if riotCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("RIOT_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	riotCircuitHalfOpenMaxReq, err := getEnvAsInt("RIOT_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse RIOT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if riotCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("RIOT_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	faceitEnabled, err := strconv.ParseBool(getEnv("FACEIT_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FACEIT_ENABLED: %w", err)
	}
	faceitToken := strings.TrimSpace(getEnv("FACEIT_TOKEN", ""))
	if faceitEnabled && faceitToken == "" {
		return Config{}, fmt.Errorf("FACEIT_TOKEN is required when FACEIT_ENABLED=true")
	}
	faceitTimeout, err := time.ParseDuration(getEnv("FACEIT_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FACEIT_TIMEOUT: %w", err)
	}
	if faceitTimeout <= 0 {
		return Config{}, fmt.Errorf("FACEIT_TIMEOUT must be > 0")
	}
	faceitMaxRetries, err := getEnvAsInt("FACEIT_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FACEIT_MAX_RETRIES: %w", err)
	}
	if faceitMaxRetries < 0 {
		return Config{}, fmt.Errorf("FACEIT_MAX_RETRIES must be >= 0")
	}
	faceitCircuitEnabled, err := strconv.ParseBool(getEnv("FACEIT_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FACEIT_CIRCUIT_ENABLED: %w", err)
	}
	faceitCircuitFailureCount, err := getEnvAsInt("FACEIT_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FACEIT_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if faceitCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("FACEIT_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	faceitCircuitOpenTimeout, err := time.ParseDuration(getEnv("FACEIT_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FACEIT_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if faceitCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("FACEIT_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	faceitCircuitHalfOpenMaxReq, err := getEnvAsInt("FACEIT_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FACEIT_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if faceitCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("FACEIT_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	importMaxWorkers, err := getEnvAsInt("IMPORT_MAX_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse IMPORT_MAX_WORKERS: %w", err)
	}
	if importMaxWorkers < 1 {
		return Config{}, fmt.Errorf("IMPORT_MAX_WORKERS must be >= 1")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	cfg := Config{
		AppEnv:                      appEnv,
		ServiceName:                 getEnv("APP_SERVICE_NAME", "matchops-api"),
		ServiceVersion:              getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                    getEnv("APP_HTTP_ADDR", ":8080"),
		DBURL:                       strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary:     dbDisablePreparedBinary,
		CacheTTL:                    cacheTTL,
		CORSAllowedOrigins:          splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		ReadTimeout:                 readTimeout,
		WriteTimeout:                writeTimeout,
		PprofEnabled:                pprofEnabled,
		PprofAddr:                   pprofAddr,
		UptraceEnabled:              uptraceEnabled,
		UptraceDSN:                  uptraceDSN,
		UptraceLogsEnabled:          uptraceLogsEnabled,
		PyroscopeEnabled:            pyroscopeEnabled,
		PyroscopeServerAddress:      pyroscopeServerAddress,
		PyroscopeAuthToken:          strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:      strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:  strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:         pyroscopeUploadRate,
		RiotEnabled:                 riotEnabled,
		RiotAPIKey:                  riotAPIKey,
		RiotVersionsURL:             strings.TrimSpace(getEnv("RIOT_VERSIONS_URL", "https://ddragon.leagueoflegends.com")),
		RiotTimeout:                 riotTimeout,
		RiotMaxRetries:              riotMaxRetries,
		RiotCircuitEnabled:          riotCircuitEnabled,
		RiotCircuitFailureCount:     riotCircuitFailureCount,
		RiotCircuitOpenTimeout:      riotCircuitOpenTimeout,
		RiotCircuitHalfOpenMaxReq:   riotCircuitHalfOpenMaxReq,
		FaceitEnabled:               faceitEnabled,
		FaceitBaseURL:               strings.TrimSpace(getEnv("FACEIT_BASE_URL", "https://open.faceit.com/data/v4")),
		FaceitToken:                 faceitToken,
		FaceitTimeout:               faceitTimeout,
		FaceitMaxRetries:            faceitMaxRetries,
		FaceitCircuitEnabled:        faceitCircuitEnabled,
		FaceitCircuitFailureCount:   faceitCircuitFailureCount,
		FaceitCircuitOpenTimeout:    faceitCircuitOpenTimeout,
		FaceitCircuitHalfOpenMaxReq: faceitCircuitHalfOpenMaxReq,
		InternalJobToken:            strings.TrimSpace(getEnv("INTERNAL_JOB_TOKEN", "")),
		ImportMaxWorkers:            importMaxWorkers,
		LogLevel:                    parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.AppEnv == EnvProd && cfg.InternalJobToken == "" {
		return Config{}, fmt.Errorf("INTERNAL_JOB_TOKEN is required when APP_ENV=prod")
	}

	return cfg, nil
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
