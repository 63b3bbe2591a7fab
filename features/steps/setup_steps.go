//go:build integration

package steps

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"github.com/joeywang/vidoer/cmd"
	"github.com/joeywang/vidoer/infrastructure/config"
)

type setupContext struct {
	tempDir         string
	configPath      string
	setupCancelled  bool
	originalContent string
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses   []string
	confirmResponses []bool
	inputIndex       int
	confirmIndex     int
}

func NewMockPrompter(inputs []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:   inputs,
		confirmResponses: confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		// Out of scripted answers: behave as if the user hit enter.
		return "", nil
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.setupCancelled = false
		testCtx.originalContent = ""
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedSetupContext = &setupContext{}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, testCtx.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, testCtx.iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, testCtx.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^the config should have port (\d+)$`, testCtx.theConfigShouldHavePort)
	ctx.Step(`^the config should have upload_directory "([^"]*)"$`, testCtx.theConfigShouldHaveUploadDirectory)
	ctx.Step(`^the config should have resolution "([^"]*)"$`, testCtx.theConfigShouldHaveResolution)
	ctx.Step(`^the config should have video_codec "([^"]*)"$`, testCtx.theConfigShouldHaveVideoCodec)
	ctx.Step(`^the setup should be cancelled$`, testCtx.theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(s.configPath), 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `server:
  port: 7070
paths:
  upload_directory: "/original/uploads"
encoder:
  resolution: "640x480"
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0644)
}

func (s *setupContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	prompter := NewMockPrompter(parseInputTable(table), nil)

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	confirm := strings.ToLower(confirmation) == "y"
	prompter := NewMockPrompter(nil, []bool{confirm})

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath)
	if !confirm {
		s.setupCancelled = true
	}
	return nil
}

// parseInputTable reads prompt/value rows. The prompt column documents which
// question each answer belongs to; only the values are fed to the prompter,
// in order.
func parseInputTable(table *godog.Table) []string {
	var inputs []string
	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		inputs = append(inputs, row.Cells[1].Value)
	}
	return inputs
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) loadSavedConfig() (*config.Config, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (s *setupContext) theConfigShouldHavePort(expected int) error {
	cfg, err := s.loadSavedConfig()
	if err != nil {
		return err
	}
	if cfg.Server.Port != expected {
		return fmt.Errorf("expected port %d, got %d", expected, cfg.Server.Port)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveUploadDirectory(expected string) error {
	cfg, err := s.loadSavedConfig()
	if err != nil {
		return err
	}
	if cfg.Paths.UploadDirectory != expected {
		return fmt.Errorf("expected upload_directory %q, got %q", expected, cfg.Paths.UploadDirectory)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveResolution(expected string) error {
	cfg, err := s.loadSavedConfig()
	if err != nil {
		return err
	}
	if cfg.Encoder.Resolution != expected {
		return fmt.Errorf("expected resolution %q, got %q", expected, cfg.Encoder.Resolution)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveVideoCodec(expected string) error {
	cfg, err := s.loadSavedConfig()
	if err != nil {
		return err
	}
	if cfg.Encoder.VideoCodec != expected {
		return fmt.Errorf("expected video_codec %q, got %q", expected, cfg.Encoder.VideoCodec)
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if !s.setupCancelled {
		return fmt.Errorf("expected setup to be cancelled")
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config content was changed")
	}
	return nil
}
