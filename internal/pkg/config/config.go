package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	EarthEngine EarthEngineConfig `mapstructure:"earthengine"`
	Telemetry   TelemetryConfig   `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// EarthEngineConfig selects credentials and the source imagery collection.
// When ServiceAccount is empty, application default credentials are used.
// Otherwise CredentialsFile wins over PrivateKeyJSON.
type EarthEngineConfig struct {
	Project         string `mapstructure:"project"`
	Collection      string `mapstructure:"collection"`
	ServiceAccount  string `mapstructure:"service_account"`
	CredentialsFile string `mapstructure:"credentials_file"`
	PrivateKeyJSON  string `mapstructure:"private_key_json"`
	TimeoutSeconds  int    `mapstructure:"timeout"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 60)
	v.SetDefault("earthengine.project", "")
	v.SetDefault("earthengine.collection", "COPERNICUS/S2_SR_HARMONIZED")
	v.SetDefault("earthengine.service_account", "")
	v.SetDefault("earthengine.credentials_file", "")
	v.SetDefault("earthengine.private_key_json", "")
	v.SetDefault("earthengine.timeout", 45)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", false)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: EARTHLENS_SERVER_PORT → server.port
	v.SetEnvPrefix("EARTHLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Short variable names used by existing deployments keep working.
	_ = v.BindEnv("server.port", "EARTHLENS_SERVER_PORT", "PORT")
	_ = v.BindEnv("earthengine.service_account", "EARTHLENS_EARTHENGINE_SERVICE_ACCOUNT", "EE_SERVICE_ACCOUNT")
	_ = v.BindEnv("earthengine.credentials_file", "EARTHLENS_EARTHENGINE_CREDENTIALS_FILE", "EE_CREDENTIALS_FILE")
	_ = v.BindEnv("earthengine.private_key_json", "EARTHLENS_EARTHENGINE_PRIVATE_KEY_JSON", "EE_PRIVATE_KEY_JSON")
	_ = v.BindEnv("earthengine.collection", "EARTHLENS_EARTHENGINE_COLLECTION", "EE_S2_COLLECTION")
	_ = v.BindEnv("earthengine.project", "EARTHLENS_EARTHENGINE_PROJECT", "EE_PROJECT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}
	if c.EarthEngine.Collection == "" {
		errs = append(errs, "earthengine.collection is required")
	}
	if c.EarthEngine.TimeoutSeconds <= 0 {
		errs = append(errs, "earthengine.timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
