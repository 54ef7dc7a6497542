package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Profile string

const (
	ProfileDev  Profile = "dev"
	ProfileTest Profile = "test"
	ProfileProd Profile = "prod"
)

// Config is the explicit configuration record built once at process start and
// handed to each component constructor. Nothing reads the environment after
// Load returns.
type Config struct {
	Profile       Profile
	Service       ServiceConfig
	HTTP          HTTPConfig
	Warehouse     WarehouseConfig
	AI            AIConfig
	Answer        AnswerConfig
	Observability ObservabilityConfig
	Auth          AuthConfig
}

type ServiceConfig struct {
	Name string
}

type HTTPConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// WarehouseConfig describes the Fabric warehouse connection. Authentication is
// an Azure AD service-principal exchange performed by the driver; the token is
// attached to the connection, never passed through SQL.
type WarehouseConfig struct {
	Server          string
	Port            int
	Database        string
	AADTenantID     string
	ClientID        string
	ClientSecret    string
	ConnectTimeout  time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

type AIConfig struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string
	Timeout    time.Duration
}

// AnswerConfig carries the fixed user-facing messages for the two
// short-circuit outcomes of the answer pipeline.
type AnswerConfig struct {
	UnanswerableMessage string
	NoDataMessage       string
}

type ObservabilityConfig struct {
	LogLevel slog.Level
	LogJSON  bool
}

type AuthConfig struct {
	Required   bool
	StaticKeys string
}

func LoadFromEnv(serviceName string) (Config, error) {
	return Load(serviceName, os.LookupEnv)
}

func Load(serviceName string, lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	profile := ProfileDev
	if raw, ok := lookup("FIRMSIGHT_PROFILE"); ok {
		profile = Profile(strings.ToLower(strings.TrimSpace(raw)))
	}
	if !isValidProfile(profile) {
		return Config{}, fmt.Errorf("invalid FIRMSIGHT_PROFILE: %q", profile)
	}

	cfg := defaultsForProfile(profile)
	if serviceName != "" {
		cfg.Service.Name = serviceName
	}

	if err := applyString(lookup, "FIRMSIGHT_SERVICE_NAME", &cfg.Service.Name); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_HTTP_ADDR", &cfg.HTTP.Address); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FIRMSIGHT_HTTP_READ_TIMEOUT", &cfg.HTTP.ReadTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FIRMSIGHT_HTTP_WRITE_TIMEOUT", &cfg.HTTP.WriteTimeout); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FIRMSIGHT_HTTP_IDLE_TIMEOUT", &cfg.HTTP.IdleTimeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_WAREHOUSE_SERVER", &cfg.Warehouse.Server); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "FIRMSIGHT_WAREHOUSE_PORT", &cfg.Warehouse.Port); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_WAREHOUSE_DATABASE", &cfg.Warehouse.Database); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_WAREHOUSE_AAD_TENANT_ID", &cfg.Warehouse.AADTenantID); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_WAREHOUSE_CLIENT_ID", &cfg.Warehouse.ClientID); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_WAREHOUSE_CLIENT_SECRET", &cfg.Warehouse.ClientSecret); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FIRMSIGHT_WAREHOUSE_CONNECT_TIMEOUT", &cfg.Warehouse.ConnectTimeout); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "FIRMSIGHT_WAREHOUSE_MAX_OPEN_CONNS", &cfg.Warehouse.MaxOpenConns); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "FIRMSIGHT_WAREHOUSE_MAX_IDLE_CONNS", &cfg.Warehouse.MaxIdleConns); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FIRMSIGHT_WAREHOUSE_CONN_MAX_IDLE_TIME", &cfg.Warehouse.ConnMaxIdleTime); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FIRMSIGHT_WAREHOUSE_CONN_MAX_LIFETIME", &cfg.Warehouse.ConnMaxLifetime); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_AI_ENDPOINT", &cfg.AI.Endpoint); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_AI_API_KEY", &cfg.AI.APIKey); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_AI_API_VERSION", &cfg.AI.APIVersion); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_AI_DEPLOYMENT", &cfg.AI.Deployment); err != nil {
		return Config{}, err
	}
	if err := applyDuration(lookup, "FIRMSIGHT_AI_TIMEOUT", &cfg.AI.Timeout); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_ANSWER_UNANSWERABLE_MESSAGE", &cfg.Answer.UnanswerableMessage); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_ANSWER_NO_DATA_MESSAGE", &cfg.Answer.NoDataMessage); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "FIRMSIGHT_LOG_JSON", &cfg.Observability.LogJSON); err != nil {
		return Config{}, err
	}
	if err := applyLogLevel(lookup, "FIRMSIGHT_LOG_LEVEL", &cfg.Observability.LogLevel); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "FIRMSIGHT_AUTH_REQUIRED", &cfg.Auth.Required); err != nil {
		return Config{}, err
	}
	if err := applyString(lookup, "FIRMSIGHT_AUTH_STATIC_KEYS", &cfg.Auth.StaticKeys); err != nil {
		return Config{}, err
	}

	if cfg.Service.Name == "" {
		return Config{}, fmt.Errorf("service name is required")
	}
	if cfg.HTTP.Address == "" {
		return Config{}, fmt.Errorf("http address is required")
	}
	if cfg.Answer.UnanswerableMessage == "" {
		return Config{}, fmt.Errorf("unanswerable message is required")
	}
	if cfg.Answer.NoDataMessage == "" {
		return Config{}, fmt.Errorf("no-data message is required")
	}
	return cfg, nil
}

func defaultsForProfile(profile Profile) Config {
	cfg := Config{
		Profile: profile,
		Service: ServiceConfig{Name: "firmsight-api"},
		HTTP: HTTPConfig{
			Address:      ":8000",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Warehouse: WarehouseConfig{
			Port:            1433,
			ConnectTimeout:  30 * time.Second,
			MaxOpenConns:    10,
			MaxIdleConns:    10,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnMaxLifetime: 30 * time.Minute,
		},
		AI: AIConfig{
			APIVersion: "2024-12-01-preview",
			Deployment: "gpt-4o-mini",
			Timeout:    30 * time.Second,
		},
		Answer: AnswerConfig{
			UnanswerableMessage: "I couldn’t find enough data to answer that question.",
			NoDataMessage:       "No data was found for this question.",
		},
		Observability: ObservabilityConfig{
			LogLevel: slog.LevelDebug,
			LogJSON:  true,
		},
		Auth: AuthConfig{
			Required:   false,
			StaticKeys: "",
		},
	}

	switch profile {
	case ProfileTest:
		cfg.HTTP.Address = ":18000"
		cfg.Observability.LogLevel = slog.LevelWarn
		cfg.Auth.Required = false
	case ProfileProd:
		cfg.Observability.LogLevel = slog.LevelInfo
		cfg.Auth.Required = true
	}

	return cfg
}

func isValidProfile(profile Profile) bool {
	switch profile {
	case ProfileDev, ProfileTest, ProfileProd:
		return true
	default:
		return false
	}
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyDuration(lookup LookupFunc, key string, dst *time.Duration) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = value
	return nil
}

func applyLogLevel(lookup LookupFunc, key string, dst *slog.Level) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	level := strings.ToLower(strings.TrimSpace(raw))
	switch level {
	case "debug":
		*dst = slog.LevelDebug
	case "info":
		*dst = slog.LevelInfo
	case "warn", "warning":
		*dst = slog.LevelWarn
	case "error":
		*dst = slog.LevelError
	default:
		return fmt.Errorf("invalid %s: %q", key, raw)
	}
	return nil
}
