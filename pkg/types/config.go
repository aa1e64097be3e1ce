// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ServerConfig holds settings for the HTTP transport.
type ServerConfig struct {
	// Addr is the listen address (default ":8000").
	Addr string `json:"addr" yaml:"addr" mapstructure:"addr"`

	// CORSOrigins lists allowed origins. "*" allows any origin; an empty
	// list disables CORS headers.
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" mapstructure:"cors_origins"`

	// APIKey enables bearer authentication when non-empty.
	APIKey string `json:"-" yaml:"-" mapstructure:"api_key"`

	// MaxUploadBytes bounds the size of an uploaded PDF (default 100 MiB).
	MaxUploadBytes int64 `json:"max_upload_bytes" yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`

	// ReadTimeout and WriteTimeout bound a single request.
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
}

// LogConfig selects the log handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "text" or "json" (default text).
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// OutputFormat selects how the CLI writes a conversion result.
type OutputFormat string

const (
	OutputMarkdown OutputFormat = "markdown"
	OutputJSON     OutputFormat = "json"
	OutputYAML     OutputFormat = "yaml"
)

// ConversionConfig holds CLI settings for a single conversion.
type ConversionConfig struct {
	IncludeImages bool         `json:"include_images" yaml:"include_images" mapstructure:"include_images"`
	EmbedImages   bool         `json:"embed_images" yaml:"embed_images" mapstructure:"embed_images"`
	Format        OutputFormat `json:"format" yaml:"format" mapstructure:"format"`
	Frontmatter   bool         `json:"frontmatter" yaml:"frontmatter" mapstructure:"frontmatter"`
}

// DefaultServerConfig returns the settings used when no config is given.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:           ":8000",
		CORSOrigins:    []string{"*"},
		MaxUploadBytes: 100 << 20,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   5 * time.Minute,
	}
}
