package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agentx-labs/emuscan/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognised configuration keys.
const (
	KeyDiscoveryDirs = "discovery_dirs"
	KeyProbe         = "probe"
	KeyProbeTimeout  = "probe_timeout"
	KeyDefaultSerial = "default_serial"
	KeyLogLevel      = "log_level"
)

// DefaultProbeTimeout is used when probe_timeout is unset.
const DefaultProbeTimeout = 500 * time.Millisecond

// Config is the resolved configuration. It is built once by Load and passed
// to whatever needs it.
type Config struct {
	DiscoveryDirs []string
	Probe         bool
	ProbeTimeout  time.Duration
	DefaultSerial string
	LogLevel      string

	// Path is the file the values were read from, empty if none existed.
	Path string
}

// Keys returns the recognised keys in sorted order.
func Keys() []string {
	keys := []string{KeyDiscoveryDirs, KeyProbe, KeyProbeTimeout, KeyDefaultSerial, KeyLogLevel}
	sort.Strings(keys)
	return keys
}

// Dir returns the path to the config directory (~/.emuscan/).
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the config file location. EMUSCAN_CONFIG overrides the
// default ~/.emuscan/config.yaml.
func FilePath() string {
	if v := os.Getenv(branding.EnvVar("CONFIG")); v != "" {
		return v
	}
	return filepath.Join(Dir(), fileName+"."+fileType)
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	v.SetDefault(KeyDiscoveryDirs, []string{})
	v.SetDefault(KeyProbe, false)
	v.SetDefault(KeyProbeTimeout, DefaultProbeTimeout.String())
	v.SetDefault(KeyDefaultSerial, "")
	v.SetDefault(KeyLogLevel, "")
	return v
}

// Load reads the config file at path (FilePath() when empty) overlaid with
// EMUSCAN_* environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = FilePath()
	}
	v := newViper(path)

	cfg := &Config{}
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		cfg.Path = path
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("checking config file %s: %w", path, err)
	}

	timeout, err := time.ParseDuration(v.GetString(KeyProbeTimeout))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", KeyProbeTimeout, err)
	}

	cfg.DiscoveryDirs = v.GetStringSlice(KeyDiscoveryDirs)
	cfg.Probe = v.GetBool(KeyProbe)
	cfg.ProbeTimeout = timeout
	cfg.DefaultSerial = v.GetString(KeyDefaultSerial)
	cfg.LogLevel = v.GetString(KeyLogLevel)
	return cfg, nil
}

// Get returns the effective value of key as a display string.
func Get(path, key string) (string, error) {
	cfg, err := Load(path)
	if err != nil {
		return "", err
	}
	switch key {
	case KeyDiscoveryDirs:
		return strings.Join(cfg.DiscoveryDirs, ","), nil
	case KeyProbe:
		return strconv.FormatBool(cfg.Probe), nil
	case KeyProbeTimeout:
		return cfg.ProbeTimeout.String(), nil
	case KeyDefaultSerial:
		return cfg.DefaultSerial, nil
	case KeyLogLevel:
		return cfg.LogLevel, nil
	default:
		return "", fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
}

// Set validates value for key and writes it to the config file at path
// (FilePath() when empty), creating the file and its directory if needed.
func Set(path, key, value string) error {
	if path == "" {
		path = FilePath()
	}
	typed, err := parseValue(key, value)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", filepath.Dir(path), err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	v.Set(key, typed)
	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func parseValue(key, value string) (interface{}, error) {
	switch key {
	case KeyDiscoveryDirs:
		var dirs []string
		for _, d := range strings.Split(value, ",") {
			if d = strings.TrimSpace(d); d != "" {
				dirs = append(dirs, d)
			}
		}
		return dirs, nil
	case KeyProbe:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false: %w", key, err)
		}
		return b, nil
	case KeyProbeTimeout:
		d, err := time.ParseDuration(value)
		if err != nil {
			return nil, fmt.Errorf("%s must be a duration such as 500ms: %w", key, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("%s must be positive", key)
		}
		return d.String(), nil
	case KeyDefaultSerial, KeyLogLevel:
		return value, nil
	default:
		return nil, fmt.Errorf("unknown config key %q (known: %s)", key, strings.Join(Keys(), ", "))
	}
}
