// Package config holds the configuration of the TunaMUD client and loads it
// from its TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPath           = "/ws"
	DefaultDialTimeoutMS  = 5000
	DefaultWriteTimeoutMS = 5000
	DefaultWidth          = 80

	dirName  = "tunamud"
	fileName = "config.toml"
)

// Config is the full configuration of the client.
type Config struct {
	Server  Server  `toml:"server"`
	Store   string  `toml:"store"`
	Log     Log     `toml:"log"`
	Console Console `toml:"console"`
}

// Server is where and how to connect to the game server.
type Server struct {
	// Host is the HOST[:PORT] of the game server.
	Host string `toml:"host"`

	// Path is the path of the websocket endpoint on the host.
	Path string `toml:"path"`

	// Insecure skips the secure connection attempt and goes straight to an
	// unencrypted one. By default a secure connection is tried first.
	Insecure bool `toml:"insecure"`

	// DialTimeoutMillis is how long each connection attempt may take.
	DialTimeoutMillis int `toml:"dial_timeout_ms"`

	// WriteTimeoutMillis is how long sending a single message may take.
	WriteTimeoutMillis int `toml:"write_timeout_ms"`
}

// DialTimeout returns the configured dial timeout as a time.Duration.
func (s Server) DialTimeout() time.Duration {
	return time.Millisecond * time.Duration(s.DialTimeoutMillis)
}

// WriteTimeout returns the configured write timeout as a time.Duration.
func (s Server) WriteTimeout() time.Duration {
	return time.Millisecond * time.Duration(s.WriteTimeoutMillis)
}

// Log configures the debug log. The console owns the terminal, so logging is
// only done to a file.
type Log struct {
	// File is the path to write the log to. If empty, nothing is logged.
	File string `toml:"file"`

	// Level is the minimum level logged: debug, info, warn, or error.
	Level string `toml:"level"`
}

// Console configures output.
type Console struct {
	// Width is the column to wrap output at.
	Width int `toml:"width"`

	// NoColor turns off styling of output.
	NoColor bool `toml:"no_color"`
}

// Dir returns the directory that holds the config file and, by default, the
// client's data. It is $XDG_CONFIG_HOME/tunamud or the OS equivalent, falling
// back to ~/.config/tunamud.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, dirName), nil
}

// Load reads the config at path. If path is empty, the file in Dir is used,
// and it not existing is not an error; the zero Config is returned instead.
// Defaults are not filled in.
func Load(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		dir, err := Dir()
		if err != nil {
			return cfg, fmt.Errorf("find config dir: %w", err)
		}
		path = filepath.Join(dir, fileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// FillDefaults returns a new Config identical to cfg but with unset values set
// to their defaults.
func (cfg Config) FillDefaults() Config {
	newCFG := cfg

	if newCFG.Server.Path == "" {
		newCFG.Server.Path = DefaultPath
	}
	if !strings.HasPrefix(newCFG.Server.Path, "/") {
		newCFG.Server.Path = "/" + newCFG.Server.Path
	}
	if newCFG.Server.DialTimeoutMillis == 0 {
		newCFG.Server.DialTimeoutMillis = DefaultDialTimeoutMS
	}
	if newCFG.Server.WriteTimeoutMillis == 0 {
		newCFG.Server.WriteTimeoutMillis = DefaultWriteTimeoutMS
	}
	if newCFG.Store == "" {
		dir, err := Dir()
		if err != nil {
			newCFG.Store = "inmem"
		} else {
			newCFG.Store = "sqlite:" + dir
		}
	}
	if newCFG.Log.Level == "" {
		newCFG.Log.Level = "info"
	}
	if newCFG.Console.Width == 0 {
		newCFG.Console.Width = DefaultWidth
	}

	return newCFG
}

// Validate returns an error if the Config has invalid field values set. Empty
// and unset values are considered invalid; if defaults are intended to be used,
// call Validate on the return value of FillDefaults.
func (cfg Config) Validate() error {
	if cfg.Server.Host == "" {
		return fmt.Errorf("server.host: must be set")
	}
	if strings.Contains(cfg.Server.Host, "://") {
		return fmt.Errorf("server.host: must be HOST[:PORT], not a URL")
	}
	if cfg.Server.DialTimeoutMillis < 1 {
		return fmt.Errorf("server.dial_timeout_ms: must be positive")
	}
	if cfg.Server.WriteTimeoutMillis < 1 {
		return fmt.Errorf("server.write_timeout_ms: must be positive")
	}
	if _, err := ParseStoreConnString(cfg.Store); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if _, err := parseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if cfg.Console.Width < 20 {
		return fmt.Errorf("console.width: must be at least 20")
	}
	return nil
}
