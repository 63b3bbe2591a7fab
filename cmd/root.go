package cmd

import (
	"fmt"
	"os"

	"github.com/joeywang/vidoer/infrastructure/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "vidoer",
	Short: "Turn a still image and an audio track into a shareable video",
	Long: `vidoer runs a small HTTP service that accepts an image and an audio
file, validates them, and renders them into an MP4 with ffmpeg:

  - POST /api/upload with multipart fields "image" and "audio"
  - Generated videos are served from the upload directory
  - Stale uploads are purged on a configurable schedule

Example:
  vidoer serve --port 8080`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
}

func initConfig() {
	// A .env file is optional; variables already set in the environment win.
	_ = godotenv.Load()

	if cfgFile == "" {
		cfgFile = "config/config.yaml"
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		// A missing file falls back to defaults inside Load, so an error
		// here means the file is unreadable or invalid. Commands that need
		// config report it.
		fmt.Fprintln(os.Stderr, err)
		cfg = nil
	}
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}
