package config

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Layers LayersConfig `yaml:"layers" mapstructure:"layers"`
	Faults FaultsConfig `yaml:"faults" mapstructure:"faults"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// LayersConfig locates the reference layers. Land and Fault are file paths
// or http(s) URLs of a shapefile, zipped shapefile or GeoJSON file.
type LayersConfig struct {
	Land            string `yaml:"land" mapstructure:"land"`
	Fault           string `yaml:"fault" mapstructure:"fault"`
	CacheDir        string `yaml:"cache_dir" mapstructure:"cache_dir" validate:"required"`
	LoadTimeoutSecs int    `yaml:"load_timeout_secs" mapstructure:"load_timeout_secs" validate:"min=1"`
	MaxCached       int    `yaml:"max_cached" mapstructure:"max_cached" validate:"min=1"`
}

// LoadTimeout returns the layer loading timeout.
func (c LayersConfig) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutSecs) * time.Second
}

// FaultsConfig configures how fault records are read.
type FaultsConfig struct {
	Fields FaultFieldsConfig `yaml:"fields" mapstructure:"fields"`
}

// FaultFieldsConfig names the fault layer attribute columns.
type FaultFieldsConfig struct {
	ID           string `yaml:"id" mapstructure:"id"`
	Name         string `yaml:"name" mapstructure:"name" validate:"required"`
	Type         string `yaml:"type" mapstructure:"type"`
	MaxMagnitude string `yaml:"max_magnitude" mapstructure:"max_magnitude"`
	SlipRate     string `yaml:"slip_rate" mapstructure:"slip_rate"`
}

// ServerConfig configures the HTTP classification server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	RateLimit      float64  `yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`
	RateBurst      int      `yaml:"rate_burst" mapstructure:"rate_burst" validate:"gte=0"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`

	// AllowRequestLayers permits /v1/classify bodies to name their own land
	// and fault layers.
	AllowRequestLayers bool `yaml:"allow_request_layers" mapstructure:"allow_request_layers"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("EQSOURCE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("layers.land", "")
	v.SetDefault("layers.fault", "")
	v.SetDefault("layers.cache_dir", "/tmp/eqsource")
	v.SetDefault("layers.load_timeout_secs", 60)
	v.SetDefault("layers.max_cached", 16)
	v.SetDefault("faults.fields.id", "Id")
	v.SetDefault("faults.fields.name", "Segment")
	v.SetDefault("faults.fields.type", "Type")
	v.SetDefault("faults.fields.max_magnitude", "Mmax")
	v.SetDefault("faults.fields.slip_rate", "SlipRate")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.rate_limit", 20.0)
	v.SetDefault("server.rate_burst", 40)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.allow_request_layers", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints declared in validate tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return eris.Wrap(err, "config: validate")
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
