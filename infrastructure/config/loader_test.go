package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if cfg.Server.Port != want.Server.Port {
		t.Errorf("Port = %d, want %d", cfg.Server.Port, want.Server.Port)
	}
	if cfg.Encoder.Resolution != "1920x1080" {
		t.Errorf("Resolution = %q, want 1920x1080", cfg.Encoder.Resolution)
	}
	if cfg.Encoder.VideoCodec != "libx264" {
		t.Errorf("VideoCodec = %q, want libx264", cfg.Encoder.VideoCodec)
	}
	if cfg.Encoder.AudioCodec != "aac" {
		t.Errorf("AudioCodec = %q, want aac", cfg.Encoder.AudioCodec)
	}
	if cfg.Encoder.AudioBitrate != "192k" {
		t.Errorf("AudioBitrate = %q, want 192k", cfg.Encoder.AudioBitrate)
	}
	if cfg.Paths.UploadDirectory != "uploads" {
		t.Errorf("UploadDirectory = %q, want uploads", cfg.Paths.UploadDirectory)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9000
paths:
  upload_directory: /srv/vidoer/uploads
encoder:
  resolution: 1280x720
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Paths.UploadDirectory != "/srv/vidoer/uploads" {
		t.Errorf("UploadDirectory = %q, want /srv/vidoer/uploads", cfg.Paths.UploadDirectory)
	}
	if cfg.Encoder.Resolution != "1280x720" {
		t.Errorf("Resolution = %q, want 1280x720", cfg.Encoder.Resolution)
	}
	// Keys absent from the file keep their defaults.
	if cfg.Encoder.VideoCodec != "libx264" {
		t.Errorf("VideoCodec = %q, want default libx264", cfg.Encoder.VideoCodec)
	}
	if cfg.Cleanup.MaxAgeHours != 24 {
		t.Errorf("MaxAgeHours = %d, want default 24", cfg.Cleanup.MaxAgeHours)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv(EnvPort, "3000")
	t.Setenv(EnvFFmpegPath, "/usr/local/bin/ffmpeg")
	t.Setenv(EnvUploadDir, "/tmp/media")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want 3000 from %s", cfg.Server.Port, EnvPort)
	}
	if cfg.Encoder.FFmpegPath != "/usr/local/bin/ffmpeg" {
		t.Errorf("FFmpegPath = %q, want env override", cfg.Encoder.FFmpegPath)
	}
	if cfg.Paths.UploadDirectory != "/tmp/media" {
		t.Errorf("UploadDirectory = %q, want env override", cfg.Paths.UploadDirectory)
	}
}

func TestLoad_EnvironmentBeatsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9000\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	t.Setenv(EnvPort, "3000")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 3000 {
		t.Errorf("Port = %d, want env value 3000 over file value 9000", cfg.Server.Port)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a mapping"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("error %q missing parse wrapper", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "malformed resolution",
			mutate:  func(cfg *Config) { cfg.Encoder.Resolution = "1080p" },
			wantErr: true,
		},
		{
			name:    "missing upload directory",
			mutate:  func(cfg *Config) { cfg.Paths.UploadDirectory = "" },
			wantErr: true,
		},
		{
			name:    "zero encode timeout",
			mutate:  func(cfg *Config) { cfg.Encoder.TimeoutSeconds = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Error("expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Server.Port = 8123
	cfg.Encoder.Resolution = "640x480"

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Server.Port != 8123 {
		t.Errorf("Port = %d, want 8123", loaded.Server.Port)
	}
	if loaded.Encoder.Resolution != "640x480" {
		t.Errorf("Resolution = %q, want 640x480", loaded.Encoder.Resolution)
	}
}
