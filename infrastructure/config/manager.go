package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownKey reports a key that does not name a configuration value.
var ErrUnknownKey = errors.New("unknown configuration key")

// managedKeys lists every editable key in display order, grouped by section.
var managedKeys = []string{
	"server.port",
	"server.shutdown_grace_seconds",
	"server.allowed_origins",
	"paths.upload_directory",
	"encoder.ffmpeg_path",
	"encoder.resolution",
	"encoder.video_codec",
	"encoder.audio_codec",
	"encoder.audio_bitrate",
	"encoder.timeout_seconds",
	"cleanup.max_age_hours",
	"cleanup.interval_minutes",
}

// Manager provides keyed access to individual configuration values so they
// can be inspected and edited without hand-editing YAML.
type Manager struct {
	config     *Config
	configPath string
}

// NewManager creates a manager over cfg persisted at configPath.
func NewManager(cfg *Config, configPath string) *Manager {
	return &Manager{
		config:     cfg,
		configPath: configPath,
	}
}

// Entry is one configuration key with its current value.
type Entry struct {
	Key   string
	Value string
}

// Get returns the current value for key.
func (m *Manager) Get(key string) (string, error) {
	key = strings.ToLower(strings.TrimSpace(key))

	switch key {
	case "server.port":
		return strconv.Itoa(m.config.Server.Port), nil
	case "server.shutdown_grace_seconds":
		return strconv.Itoa(m.config.Server.ShutdownGraceSeconds), nil
	case "server.allowed_origins":
		return strings.Join(m.config.Server.AllowedOrigins, ","), nil
	case "paths.upload_directory":
		return m.config.Paths.UploadDirectory, nil
	case "encoder.ffmpeg_path":
		return m.config.Encoder.FFmpegPath, nil
	case "encoder.resolution":
		return m.config.Encoder.Resolution, nil
	case "encoder.video_codec":
		return m.config.Encoder.VideoCodec, nil
	case "encoder.audio_codec":
		return m.config.Encoder.AudioCodec, nil
	case "encoder.audio_bitrate":
		return m.config.Encoder.AudioBitrate, nil
	case "encoder.timeout_seconds":
		return strconv.Itoa(m.config.Encoder.TimeoutSeconds), nil
	case "cleanup.max_age_hours":
		return strconv.Itoa(m.config.Cleanup.MaxAgeHours), nil
	case "cleanup.interval_minutes":
		return strconv.Itoa(m.config.Cleanup.IntervalMinutes), nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownKey, key)
}

// Set parses value for key, validates the resulting configuration and saves
// it. An invalid value leaves both the in-memory config and the file
// untouched.
func (m *Manager) Set(key, value string) error {
	key = strings.ToLower(strings.TrimSpace(key))
	value = strings.TrimSpace(value)

	updated := *m.config
	// The origins slice is the only reference field; give the copy its own.
	updated.Server.AllowedOrigins = append([]string(nil), m.config.Server.AllowedOrigins...)

	switch key {
	case "server.port":
		port, err := parseIntValue(key, value)
		if err != nil {
			return err
		}
		updated.Server.Port = port
	case "server.shutdown_grace_seconds":
		grace, err := parseIntValue(key, value)
		if err != nil {
			return err
		}
		updated.Server.ShutdownGraceSeconds = grace
	case "server.allowed_origins":
		updated.Server.AllowedOrigins = splitOrigins(value)
	case "paths.upload_directory":
		updated.Paths.UploadDirectory = value
	case "encoder.ffmpeg_path":
		updated.Encoder.FFmpegPath = value
	case "encoder.resolution":
		updated.Encoder.Resolution = value
	case "encoder.video_codec":
		updated.Encoder.VideoCodec = value
	case "encoder.audio_codec":
		updated.Encoder.AudioCodec = value
	case "encoder.audio_bitrate":
		updated.Encoder.AudioBitrate = value
	case "encoder.timeout_seconds":
		timeout, err := parseIntValue(key, value)
		if err != nil {
			return err
		}
		updated.Encoder.TimeoutSeconds = timeout
	case "cleanup.max_age_hours":
		hours, err := parseIntValue(key, value)
		if err != nil {
			return err
		}
		updated.Cleanup.MaxAgeHours = hours
	case "cleanup.interval_minutes":
		minutes, err := parseIntValue(key, value)
		if err != nil {
			return err
		}
		updated.Cleanup.IntervalMinutes = minutes
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}

	if err := Validate(&updated); err != nil {
		return err
	}

	*m.config = updated
	return Save(m.config, m.configPath)
}

// List returns every configuration entry. The order is fixed, so output is
// stable across runs.
func (m *Manager) List() []Entry {
	entries := make([]Entry, 0, len(managedKeys))
	for _, key := range managedKeys {
		value, err := m.Get(key)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}
	return entries
}

func parseIntValue(key, value string) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", key, value)
	}
	return n, nil
}

// splitOrigins parses a comma-separated origin list. An empty value clears
// the list, which allows any origin.
func splitOrigins(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
