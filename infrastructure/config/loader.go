package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/joeywang/vidoer/domain/media"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Paths   PathsConfig   `yaml:"paths"`
	Encoder EncoderConfig `yaml:"encoder"`
	Cleanup CleanupConfig `yaml:"cleanup"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                 int      `yaml:"port" validate:"required,min=1,max=65535"`
	ShutdownGraceSeconds int      `yaml:"shutdown_grace_seconds" validate:"min=0"`
	AllowedOrigins       []string `yaml:"allowed_origins"`
}

// PathsConfig contains directory paths for uploads and generated videos
type PathsConfig struct {
	UploadDirectory string `yaml:"upload_directory" validate:"required"`
}

// EncoderConfig contains video generation settings
type EncoderConfig struct {
	FFmpegPath     string `yaml:"ffmpeg_path" validate:"required"`
	Resolution     string `yaml:"resolution" validate:"required,resolution"`
	VideoCodec     string `yaml:"video_codec" validate:"required"`
	AudioCodec     string `yaml:"audio_codec" validate:"required"`
	AudioBitrate   string `yaml:"audio_bitrate" validate:"required"`
	TimeoutSeconds int    `yaml:"timeout_seconds" validate:"min=1"`
}

// CleanupConfig contains settings for the periodic upload directory purge
type CleanupConfig struct {
	MaxAgeHours     int `yaml:"max_age_hours" validate:"min=1"`
	IntervalMinutes int `yaml:"interval_minutes" validate:"min=1"`
}

// Environment variables recognized by Load. PORT follows the platform
// convention used by most PaaS providers; the rest are namespaced.
const (
	EnvPort       = "PORT"
	EnvFFmpegPath = "VIDOER_FFMPEG_PATH"
	EnvUploadDir  = "VIDOER_UPLOAD_DIR"
)

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                 8080,
			ShutdownGraceSeconds: 10,
		},
		Paths: PathsConfig{
			UploadDirectory: "uploads",
		},
		Encoder: EncoderConfig{
			FFmpegPath:     "ffmpeg",
			Resolution:     media.DefaultResolution,
			VideoCodec:     media.DefaultVideoCodec,
			AudioCodec:     media.DefaultAudioCodec,
			AudioBitrate:   media.DefaultAudioBitrate,
			TimeoutSeconds: 300,
		},
		Cleanup: CleanupConfig{
			MaxAgeHours:     24,
			IntervalMinutes: 60,
		},
	}
}

// Load reads the configuration from the specified YAML file, applies
// environment overrides and validates the result. A missing file is not an
// error so the service can run with defaults alone.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults plus environment only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks cfg against its struct constraints.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for a blank tag, so the error is unreachable.
	_ = v.RegisterValidation("resolution", func(fl validator.FieldLevel) bool {
		return media.ValidResolution(fl.Field().String())
	})
	return v
}

func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv(EnvPort); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if path := os.Getenv(EnvFFmpegPath); path != "" {
		cfg.Encoder.FFmpegPath = path
	}
	if dir := os.Getenv(EnvUploadDir); dir != "" {
		cfg.Paths.UploadDirectory = dir
	}
}
