package config

import (
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

// Config holds every setting for the API server and the series browser. Values
// come from struct defaults, then the YAML file named by CONFIG_FILE, then
// environment variables named after the upper-cased koanf key.
type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout" default:"5s"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count" default:"5"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay" default:"2s"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path" required:"true"`
	ServerHost                string        `koanf:"server_host" default:"0.0.0.0"`
	ServerPort                int           `koanf:"server_port" default:"3689"`

	SeriesAPIBaseURL    string        `koanf:"series_api_base_url" default:"https://gateway.marvel.com"`
	SeriesAPIPublicKey  string        `koanf:"series_api_public_key"`
	SeriesAPIPrivateKey string        `koanf:"series_api_private_key"`
	SeriesAPITimeout    time.Duration `koanf:"series_api_timeout"`
	TUILogLevel         string        `koanf:"tui_log_level" default:"error"`

	Hostname string `koanf:"-"`
}

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "/config/seriesdesk.yaml"
)

// New loads the configuration and fails if any required setting is missing.
func New() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if err := checkRequired(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads the configuration without enforcing required settings. Tools that
// never touch the database use it directly.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.WithStack(err)
	}

	known := keys()
	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(s)
		if _, ok := known[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	cfg.Hostname = hostname

	return cfg, nil
}

// NewForTest returns a configuration backed by an in-memory database.
func NewForTest() *Config {
	cfg := &Config{}
	_ = defaults.Set(cfg)
	cfg.DatabaseFilePath = ":memory:"
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.ServerHost = "127.0.0.1"
	cfg.ServerPort = 0
	return cfg
}

// keys returns the koanf key of every configurable field.
func keys() map[string]reflect.StructField {
	t := reflect.TypeOf(Config{})
	out := make(map[string]reflect.StructField, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := f.Tag.Get("koanf")
		if key == "" || key == "-" {
			continue
		}
		out[key] = f
	}
	return out
}

func checkRequired(cfg *Config) error {
	v := reflect.ValueOf(cfg).Elem()
	var missing []string
	for key, f := range keys() {
		if f.Tag.Get("required") != "true" {
			continue
		}
		if v.FieldByIndex(f.Index).IsZero() {
			missing = append(missing, envName(key)+" (env) / "+key+" (yaml)")
		}
	}
	if len(missing) > 0 {
		return errors.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}

func envName(key string) string {
	return strings.ToUpper(key)
}
