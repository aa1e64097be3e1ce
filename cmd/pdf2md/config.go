// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2md/internal/secrets"
	"github.com/pdiddy/pdf2md/pkg/types"
)

// setDefaults registers every configuration key so that environment
// variables are seen by Unmarshal.
func setDefaults(v *viper.Viper) {
	def := types.DefaultServerConfig()
	v.SetDefault("server.addr", def.Addr)
	v.SetDefault("server.cors_origins", def.CORSOrigins)
	v.SetDefault("server.api_key", "")
	v.SetDefault("server.max_upload_bytes", def.MaxUploadBytes)
	v.SetDefault("server.read_timeout", def.ReadTimeout)
	v.SetDefault("server.write_timeout", def.WriteTimeout)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("secrets_dir", secrets.DefaultDir)
}

// loadServerConfig reads the server.* keys. An API key in the secrets
// directory is used when none is configured.
func loadServerConfig(v *viper.Viper, s secrets.Secrets) (types.ServerConfig, error) {
	var cfg types.ServerConfig
	if err := v.UnmarshalKey("server", &cfg); err != nil {
		return types.ServerConfig{}, fmt.Errorf("reading server config: %w", err)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = s.APIKey()
	}
	if cfg.MaxUploadBytes <= 0 {
		return types.ServerConfig{}, fmt.Errorf("server.max_upload_bytes must be positive, got %d", cfg.MaxUploadBytes)
	}
	return cfg, nil
}

// newLogger builds the slog logger described by the log.* keys.
func newLogger(v *viper.Viper, w io.Writer) (*slog.Logger, error) {
	var cfg types.LogConfig
	if err := v.UnmarshalKey("log", &cfg); err != nil {
		return nil, fmt.Errorf("reading log config: %w", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", cfg.Level)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log format %q (want text or json)", cfg.Format)
}
