package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAppEnv      = "local"
	defaultAppPort     = "3000"
	defaultAPIBaseURL  = "http://localhost:8080/api"
	defaultAPITimeout  = 5 * time.Second
	defaultRedisAddr   = "localhost:6379"
	defaultQueryTTL    = 30 * time.Second
	defaultSessionTTL  = 24 * time.Hour
	defaultCookieName  = "smartshelf_session"
	defaultGRPCPort    = "3001"
	defaultExportPool  = 4
	defaultLocalStore  = ".smartshelf/session.db"
	defaultAppKey      = "change-me-in-production"
	defaultReportZone  = "Local"
	defaultCORSOrigins = "*"
)

var (
	loadOnce sync.Once
	loadErr  error

	mu     sync.RWMutex
	values = defaultValues()
)

// Load merges config/app.json, config/app.yaml, .env and the process
// environment, in that order of increasing precedence.
func Load() error {
	loadOnce.Do(func() {
		loadErr = loadFromFiles("config/app.json", "config/app.yaml", ".env")
	})
	return loadErr
}

func defaultValues() map[string]string {
	return map[string]string{
		"APP_ENV":         defaultAppEnv,
		"APP_PORT":        defaultAppPort,
		"APP_KEY":         defaultAppKey,
		"API_BASE_URL":    defaultAPIBaseURL,
		"API_TIMEOUT":     defaultAPITimeout.String(),
		"CACHE_DRIVER":    "memory",
		"REDIS_ADDR":      defaultRedisAddr,
		"REDIS_PASSWORD":  "",
		"QUERY_TTL":       defaultQueryTTL.String(),
		"SESSION_COOKIE":  defaultCookieName,
		"SESSION_TTL":     defaultSessionTTL.String(),
		"SESSION_SECURE":  "false",
		"STORAGE_DISK":    "local",
		"GRPC_PORT":       defaultGRPCPort,
		"EXPORT_WORKERS":  strconv.Itoa(defaultExportPool),
		"LOG_MONGO_DB":    "smartshelf",
		"CORS_ORIGINS":    defaultCORSOrigins,
		"REPORT_TIMEZONE": defaultReportZone,
	}
}

func AppEnv() string {
	_ = Load()
	return get("APP_ENV", defaultAppEnv)
}

func AppPort() string {
	_ = Load()
	return get("APP_PORT", defaultAppPort)
}

// AppKey is the secret used to derive the session encryption key.
func AppKey() string {
	_ = Load()
	return get("APP_KEY", defaultAppKey)
}

// ── Backend API ──────────────────────────────────────────────────────────────

func APIBaseURL() string {
	_ = Load()
	return strings.TrimRight(get("API_BASE_URL", defaultAPIBaseURL), "/")
}

// APITimeout is the fixed per-request timeout for every backend call.
func APITimeout() time.Duration {
	_ = Load()
	return duration("API_TIMEOUT", defaultAPITimeout)
}

// ── Cache / session ──────────────────────────────────────────────────────────

func CacheDriver() string {
	_ = Load()
	switch d := strings.ToLower(get("CACHE_DRIVER", "memory")); d {
	case "redis", "memory":
		return d
	default:
		return "memory"
	}
}

func RedisAddr() string {
	_ = Load()
	return get("REDIS_ADDR", defaultRedisAddr)
}

func RedisPassword() string {
	_ = Load()
	return get("REDIS_PASSWORD", "")
}

// QueryTTL bounds how long a cached backend read stays fresh.
func QueryTTL() time.Duration {
	_ = Load()
	return duration("QUERY_TTL", defaultQueryTTL)
}

func SessionCookie() string {
	_ = Load()
	return get("SESSION_COOKIE", defaultCookieName)
}

// SessionTTL applies when the backend token carries no usable expiry.
func SessionTTL() time.Duration {
	_ = Load()
	return duration("SESSION_TTL", defaultSessionTTL)
}

func SessionSecure() bool {
	_ = Load()
	return boolean("SESSION_SECURE", false)
}

// LocalStorePath is the SQLite file the CLI keeps its session in.
func LocalStorePath() string {
	_ = Load()
	if p := get("LOCAL_STORE_PATH", ""); p != "" {
		return p
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home + string(os.PathSeparator) + defaultLocalStore
	}
	return defaultLocalStore
}

// ── Storage ──────────────────────────────────────────────────────────────────

func StorageDefault() string {
	_ = Load()
	return get("STORAGE_DISK", "local")
}

func StorageLocalRoot() string {
	_ = Load()
	return get("STORAGE_LOCAL_ROOT", "storage")
}

func StorageURL() string {
	_ = Load()
	return get("STORAGE_URL", "")
}

func StorageS3Bucket() string   { _ = Load(); return get("S3_BUCKET", "") }
func StorageS3Region() string   { _ = Load(); return get("S3_REGION", "us-east-1") }
func StorageS3Key() string      { _ = Load(); return get("S3_KEY", "") }
func StorageS3Secret() string   { _ = Load(); return get("S3_SECRET", "") }
func StorageS3Endpoint() string { _ = Load(); return get("S3_ENDPOINT", "") }
func StorageS3URL() string      { _ = Load(); return get("S3_URL", "") }

// ── Runtime ──────────────────────────────────────────────────────────────────

func GRPCPort() string {
	_ = Load()
	return get("GRPC_PORT", defaultGRPCPort)
}

func ExportWorkers() int {
	_ = Load()
	n, err := strconv.Atoi(get("EXPORT_WORKERS", ""))
	if err != nil || n <= 0 {
		return defaultExportPool
	}
	return n
}

func LogMongoURI() string {
	_ = Load()
	return get("LOG_MONGO_URI", "")
}

func LogMongoDB() string {
	_ = Load()
	return get("LOG_MONGO_DB", "smartshelf")
}

func CORSOrigins() []string {
	_ = Load()
	var out []string
	for _, o := range strings.Split(get("CORS_ORIGINS", defaultCORSOrigins), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// ReportLocation is the time zone sale timestamps are bucketed in.
func ReportLocation() *time.Location {
	_ = Load()
	name := get("REPORT_TIMEZONE", defaultReportZone)
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.Local
	}
	return loc
}

// ── Loading ──────────────────────────────────────────────────────────────────

func loadFromFiles(jsonPath, yamlPath, envPath string) error {
	loaded := defaultValues()

	if err := mergeJSONConfig(jsonPath, loaded); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := mergeYAMLConfig(yamlPath, loaded); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := mergeDotEnv(envPath, loaded); err != nil && !os.IsNotExist(err) {
		return err
	}
	mergeEnviron(loaded)

	mu.Lock()
	values = loaded
	mu.Unlock()

	return nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	mergeRaw(raw, out)
	return nil
}

func mergeYAMLConfig(path string, out map[string]string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	mergeRaw(raw, out)
	return nil
}

func mergeRaw(raw map[string]interface{}, out map[string]string) {
	for key, val := range raw {
		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" || val == nil {
			continue
		}
		switch v := val.(type) {
		case string:
			out[k] = strings.TrimSpace(v)
		case bool, int, int64, float64:
			out[k] = fmt.Sprint(v)
		}
	}
}

func mergeDotEnv(path string, out map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return err
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	for key, value := range env {
		if k := strings.ToUpper(strings.TrimSpace(key)); k != "" {
			out[k] = strings.TrimSpace(value)
		}
	}
	return nil
}

// mergeEnviron lets the process environment override any known key.
func mergeEnviron(out map[string]string) {
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, known := out[key]; known || strings.HasPrefix(key, "S3_") || isOptionalKey(key) {
			out[key] = value
		}
	}
}

func isOptionalKey(key string) bool {
	switch key {
	case "LOCAL_STORE_PATH", "LOG_MONGO_URI", "STORAGE_LOCAL_ROOT", "STORAGE_URL", "MAX_BODY_BYTES":
		return true
	}
	return false
}

func get(key, fallback string) string {
	mu.RLock()
	defer mu.RUnlock()

	if value := strings.TrimSpace(values[key]); value != "" {
		return value
	}

	return fallback
}

func duration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(get(key, ""))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func boolean(key string, fallback bool) bool {
	b, err := strconv.ParseBool(get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

// Get reads any config key by name with an optional fallback.
func Get(key, fallback string) string {
	_ = Load()
	return get(key, fallback)
}

// Override replaces the given keys until the returned restore func is called.
// Intended for tests.
func Override(kv map[string]string) (restore func()) {
	_ = Load()

	mu.Lock()
	prev := make(map[string]string, len(values))
	for k, v := range values {
		prev[k] = v
	}
	for k, v := range kv {
		values[strings.ToUpper(k)] = v
	}
	mu.Unlock()

	return func() {
		mu.Lock()
		values = prev
		mu.Unlock()
	}
}
