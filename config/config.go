// Package config loads the service configuration from a YAML file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/Keksclan/goMensaSquirrel/schedule"
	"github.com/Keksclan/goMensaSquirrel/upstream"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when neither --config nor EnvPath name a file.
	DefaultPath = "mensa_api.yaml"
	EnvPath     = "MENSA_CONFIG"
)

// Durable drivers.
const (
	DriverNone   = ""
	DriverMongo  = "mongo"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

var (
	ErrReadFailed     = zerr.New("failed to read config file")
	ErrParseFailed    = zerr.New("failed to parse config file")
	ErrUnknownDriver  = zerr.New("unknown durable driver")
	ErrBadTimezone    = zerr.New("unknown timezone")
	ErrMissingAddress = zerr.New("missing address")
	ErrBadLogLevel    = zerr.New("unknown log level")
	ErrBadLogFormat   = zerr.New("unknown log format")
)

type Config struct {
	Server   Server   `yaml:"server"`
	Upstream Upstream `yaml:"upstream"`
	Durable  Durable  `yaml:"durable"`
	Refresh  Refresh  `yaml:"refresh"`
	Cache    Cache    `yaml:"cache"`
	Tracing  Tracing  `yaml:"tracing"`
	Log      Log      `yaml:"log"`
}

type Server struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`
	// Timezone decides which calendar date "today" is.
	Timezone string `yaml:"timezone"`
}

type Upstream struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Durable selects the persistent tier. Only the fields of the chosen driver
// are read.
type Durable struct {
	Driver     string `yaml:"driver"`
	URL        string `yaml:"url"`
	Database   string `yaml:"database"`
	RedisAddr  string `yaml:"redis_addr"`
	SQLitePath string `yaml:"sqlite_path"`
}

type Refresh struct {
	Schedule string `yaml:"schedule"`
	// Rate caps upstream fetches per second during a sweep; 0 disables it.
	Rate float64 `yaml:"rate"`
}

type Cache struct {
	DayCacheSize int64         `yaml:"day_cache_size"`
	DayCacheTTL  time.Duration `yaml:"day_cache_ttl"`
}

type Tracing struct {
	Stdout bool `yaml:"stdout"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Server: Server{
			HTTPAddr: "0.0.0.0:3000",
			GRPCAddr: "0.0.0.0:3001",
			Timezone: "UTC",
		},
		Upstream: Upstream{URL: upstream.DefaultURL, Timeout: upstream.DefaultTimeout},
		Durable: Durable{
			URL:        "mongodb://localhost:27017",
			Database:   "stw_mensa",
			RedisAddr:  "localhost:6379",
			SQLitePath: "mensa.db",
		},
		Refresh: Refresh{Schedule: schedule.DefaultSpec},
		Cache:   Cache{DayCacheSize: 10_000, DayCacheTTL: time.Hour},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Path picks the config file: flag, then EnvPath, then DefaultPath.
func Path(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path over the defaults. A missing file is not an error; the
// second result reports whether a file was read.
func Load(path string) (Config, bool, error) {
	cfg := Default()
	// #nosec G304 -- path is chosen by the operator
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, zerr.With(zerr.Wrap(err, ErrReadFailed.Error()), "path", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, true, zerr.With(zerr.Wrap(err, ErrParseFailed.Error()), "path", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, true, zerr.With(err, "path", path)
	}
	return cfg, true, nil
}

// Validate checks the fields that would otherwise fail late at startup.
func (c Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return zerr.With(ErrMissingAddress, "field", "server.http_addr")
	}
	if c.Server.GRPCAddr == "" {
		return zerr.With(ErrMissingAddress, "field", "server.grpc_addr")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Durable.Driver {
	case DriverNone:
	case DriverMongo:
		if c.Durable.URL == "" {
			return zerr.With(ErrMissingAddress, "field", "durable.url")
		}
	case DriverRedis:
		if c.Durable.RedisAddr == "" {
			return zerr.With(ErrMissingAddress, "field", "durable.redis_addr")
		}
	case DriverSQLite:
		if c.Durable.SQLitePath == "" {
			return zerr.With(ErrMissingAddress, "field", "durable.sqlite_path")
		}
	default:
		return zerr.With(ErrUnknownDriver, "driver", c.Durable.Driver)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return zerr.With(ErrBadLogLevel, "level", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return zerr.With(ErrBadLogFormat, "format", c.Log.Format)
	}
	return nil
}

// Location resolves Server.Timezone. An empty zone is UTC.
func (c Config) Location() (*time.Location, error) {
	if c.Server.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, ErrBadTimezone.Error()), "timezone", c.Server.Timezone)
	}
	return loc, nil
}
