//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cucumber/godog"

	"github.com/joeywang/vidoer/cmd"
	"github.com/joeywang/vidoer/infrastructure/config"
)

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	output     *bytes.Buffer
	err        error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.cfg = nil
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		SharedConfigContext = &configContext{}
		return c, nil
	})

	ctx.Step(`^a saved configuration with port (\d+)$`, testCtx.aSavedConfigurationWithPort)
	ctx.Step(`^I run config get "([^"]*)"$`, testCtx.iRunConfigGet)
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, testCtx.iRunConfigSet)
	ctx.Step(`^I run config list$`, testCtx.iRunConfigList)
	ctx.Step(`^the config command should succeed$`, testCtx.theConfigCommandShouldSucceed)
	ctx.Step(`^the config command should fail with "([^"]*)"$`, testCtx.theConfigCommandShouldFailWith)
	ctx.Step(`^the config output should contain "([^"]*)"$`, testCtx.theConfigOutputShouldContain)
	ctx.Step(`^the saved configuration should have resolution "([^"]*)"$`, testCtx.theSavedConfigurationShouldHaveResolution)
}

func (c *configContext) aSavedConfigurationWithPort(port int) error {
	cfg := config.Default()
	cfg.Server.Port = port
	if err := config.Save(cfg, c.configPath); err != nil {
		return fmt.Errorf("save fixture config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *configContext) iRunConfigGet(key string) error {
	c.err = cmd.RunConfigGetWithDependencies(c.cfg, c.configPath, key, c.output)
	return nil
}

func (c *configContext) iRunConfigSet(key, value string) error {
	c.err = cmd.RunConfigSetWithDependencies(c.cfg, c.configPath, key, value, c.output)
	return nil
}

func (c *configContext) iRunConfigList() error {
	c.err = cmd.RunConfigListWithDependencies(c.cfg, c.configPath, c.output)
	return nil
}

func (c *configContext) theConfigCommandShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got error: %v", c.err)
	}
	return nil
}

func (c *configContext) theConfigCommandShouldFailWith(fragment string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(c.err.Error(), fragment) {
		return fmt.Errorf("expected error containing %q, got: %v", fragment, c.err)
	}
	return nil
}

func (c *configContext) theConfigOutputShouldContain(fragment string) error {
	if !strings.Contains(c.output.String(), fragment) {
		return fmt.Errorf("expected output to contain %q, got %q", fragment, c.output.String())
	}
	return nil
}

func (c *configContext) theSavedConfigurationShouldHaveResolution(expected string) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Encoder.Resolution != expected {
		return fmt.Errorf("expected resolution %q, got %q", expected, cfg.Encoder.Resolution)
	}
	return nil
}
