package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"

	"github.com/multitoken-xyz/go-multitoken/principal"
)

// config holds the runtime settings shared by every subcommand.
type config struct {
	StorePath string
	Self      principal.Principal
	Admin     principal.Principal
	LogLevel  string
}

func defaultConfig() config {
	return config{
		StorePath: "multitoken.db",
		Self:      "multi-token",
		LogLevel:  "warn",
	}
}

// mtoken.toml key mapping to runtime settings.
type fileConfig struct {
	StorePath string `toml:"store_path"`
	Self      string `toml:"self"`
	Admin     string `toml:"admin"`
	LogLevel  string `toml:"log_level"`
}

// loadConfig reads the TOML file at path over the defaults. Only keys
// present in the file override; unset keys keep their default value.
// A missing file is fine when optional is true.
func loadConfig(path string, optional bool) (config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(path); err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return config{}, fmt.Errorf("load config: %w", err)
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}

	if meta.IsDefined("store_path") {
		cfg.StorePath = strings.TrimSpace(raw.StorePath)
	}
	if meta.IsDefined("self") {
		cfg.Self = principal.Principal(strings.TrimSpace(raw.Self))
	}
	if meta.IsDefined("admin") {
		cfg.Admin = principal.Principal(strings.TrimSpace(raw.Admin))
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}

	if cfg.StorePath == "" {
		return config{}, fmt.Errorf("load config: store_path must not be empty")
	}
	if cfg.Self.IsZero() {
		return config{}, fmt.Errorf("load config: self must not be empty")
	}
	return cfg, nil
}

// logger builds a console logger at the configured level.
func (c config) logger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("parse log level %q: %w", c.LogLevel, err)
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
