// Package core contains configuration shared across every lobbyhub
// component.
package core

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options available to the
// session multiplexer and its collaborators.
type Config struct {
	// Hostname or IP address on which the control channel listener binds.
	Hostname string `mapstructure:"hostname"`
	// Port for the control channel listener.
	Port int `mapstructure:"port"`
	// Maximum number of concurrent client connections. The hub does not
	// read this value; connections are not capped.
	MaxConnections int `mapstructure:"max_connections"`
	// Base port added to a room's id to derive its game_port.
	GamePortBase int `mapstructure:"game_port_base"`
	// How long a session may sit idle before the hub disconnects it.
	// Zero disables idle reaping entirely.
	IdleSessionTTL time.Duration `mapstructure:"idle_session_ttl"`
	// Full path to the log file. Blank writes to stdout.
	LogFilePath string `mapstructure:"log_file_path"`
	// Minimum level of a log required to be written.
	LogLevel string `mapstructure:"log_level"`

	Catalog struct {
		// Path to the JSON catalog document.
		Path string `mapstructure:"path"`
		// Directory under which uploaded game artifacts are stored.
		ArtifactDir string `mapstructure:"artifact_dir"`
	} `mapstructure:"catalog"`

	Debugging struct {
		// Log every request/reply/broadcast at debug level. The hub does
		// not read this flag; it logs each request's action at debug level
		// regardless, and does not log replies or broadcasts.
		PacketLoggingEnabled bool `mapstructure:"packet_logging_enabled"`
	} `mapstructure:"debugging"`
}

const envVarPrefix = "LOBBYHUB"

// Defaults mirrors the values a fresh deployment gets without a config
// file, matching the ports and paths named in spec.md §6.
func Defaults() *Config {
	cfg := &Config{
		Hostname:       "0.0.0.0",
		Port:           10988,
		MaxConnections: 256,
		GamePortBase:   14010,
		IdleSessionTTL: 30 * time.Minute,
		LogLevel:       "info",
	}
	cfg.Catalog.Path = "database.json"
	cfg.Catalog.ArtifactDir = "uploaded_games"
	return cfg
}

// LoadConfig initializes viper with the contents of the config file under
// configPath (if any) layered over Defaults, and returns the resolved
// Config. A missing config file is not an error -- the server can run
// entirely off defaults and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viper.AddConfigPath(configPath)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()

	defaults := Defaults()
	viper.SetDefault("hostname", defaults.Hostname)
	viper.SetDefault("port", defaults.Port)
	viper.SetDefault("max_connections", defaults.MaxConnections)
	viper.SetDefault("game_port_base", defaults.GamePortBase)
	viper.SetDefault("idle_session_ttl", defaults.IdleSessionTTL)
	viper.SetDefault("log_level", defaults.LogLevel)
	viper.SetDefault("catalog.path", defaults.Catalog.Path)
	viper.SetDefault("catalog.artifact_dir", defaults.Catalog.ArtifactDir)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			if _, ok := err.(*os.PathError); !ok {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	for _, k := range viper.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := viper.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			return nil, fmt.Errorf("binding %s to env var: %w", k, err)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}

// Address returns the host:port the control channel listener should bind.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.Port)
}
