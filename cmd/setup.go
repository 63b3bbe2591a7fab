package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joeywang/vidoer/domain/media"
	"github.com/joeywang/vidoer/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command guides you through setting up the HTTP port, the upload
directory, and the ffmpeg encoding parameters. Pressing enter keeps the
suggested default.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	return RunSetupWithPrompter(DefaultPrompter, "config/config.yaml")
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Println("Setup cancelled.")
			return nil
		}
	}

	fmt.Println("Welcome to vidoer setup!")
	fmt.Println()

	cfg := config.Default()

	if err := promptServer(prompter, cfg); err != nil {
		return err
	}
	if err := promptPaths(prompter, cfg); err != nil {
		return err
	}
	if err := promptEncoder(prompter, cfg); err != nil {
		return err
	}
	if err := promptCleanup(prompter, cfg); err != nil {
		return err
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Println()
	fmt.Printf("Configuration saved to %s\n", configPath)
	return nil
}

func promptServer(prompter Prompter, cfg *config.Config) error {
	port, err := prompter.Input("Port for the HTTP server?", strconv.Itoa(cfg.Server.Port))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("port must be a number, got %q", port)
		}
		cfg.Server.Port = p
	}
	return nil
}

func promptPaths(prompter Prompter, cfg *config.Config) error {
	dir, err := prompter.Input("Where should uploads and generated videos be stored?", cfg.Paths.UploadDirectory)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if dir != "" {
		cfg.Paths.UploadDirectory = dir
	}
	return nil
}

func promptEncoder(prompter Prompter, cfg *config.Config) error {
	ffmpegPath, err := prompter.Input("Path to the ffmpeg executable?", cfg.Encoder.FFmpegPath)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if ffmpegPath != "" {
		cfg.Encoder.FFmpegPath = ffmpegPath
	}

	resolution, err := prompter.Input("Output resolution (WIDTHxHEIGHT)?", cfg.Encoder.Resolution)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if resolution != "" {
		if !media.ValidResolution(resolution) {
			return fmt.Errorf("resolution must look like 1920x1080, got %q", resolution)
		}
		cfg.Encoder.Resolution = resolution
	}

	videoCodec, err := prompter.Input("Video codec?", cfg.Encoder.VideoCodec)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if videoCodec != "" {
		cfg.Encoder.VideoCodec = videoCodec
	}

	audioCodec, err := prompter.Input("Audio codec?", cfg.Encoder.AudioCodec)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if audioCodec != "" {
		cfg.Encoder.AudioCodec = audioCodec
	}

	bitrate, err := prompter.Input("Audio bitrate?", cfg.Encoder.AudioBitrate)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if bitrate != "" {
		cfg.Encoder.AudioBitrate = bitrate
	}

	return nil
}

func promptCleanup(prompter Prompter, cfg *config.Config) error {
	hours, err := prompter.Input("Delete stored files older than how many hours?", strconv.Itoa(cfg.Cleanup.MaxAgeHours))
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if hours != "" {
		h, err := strconv.Atoi(hours)
		if err != nil || h < 1 {
			return fmt.Errorf("maximum age must be a positive number of hours, got %q", hours)
		}
		cfg.Cleanup.MaxAgeHours = h
	}
	return nil
}
