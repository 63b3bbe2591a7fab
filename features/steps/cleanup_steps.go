//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/joeywang/vidoer/cmd"
	"github.com/joeywang/vidoer/infrastructure/filesystem"
)

// cleanupContext holds test state for cleanup scenarios
type cleanupContext struct {
	dir    string
	output *bytes.Buffer
	err    error
}

// SharedCleanupContext is reset before each scenario via Before hook
var SharedCleanupContext *cleanupContext

func getCleanupContext() *cleanupContext {
	return SharedCleanupContext
}

func InitializeCleanupScenario(ctx *godog.ScenarioContext) {
	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		SharedCleanupContext = &cleanupContext{
			output: &bytes.Buffer{},
		}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if SharedCleanupContext != nil && SharedCleanupContext.dir != "" {
			os.RemoveAll(SharedCleanupContext.dir)
		}
		SharedCleanupContext = nil
		return c, nil
	})

	ctx.Step(`^an upload directory with a file "([^"]*)" modified (\d+) hours ago$`, anUploadDirectoryWithAnAgedFile)
	ctx.Step(`^the upload directory has a file "([^"]*)" modified just now$`, theUploadDirectoryHasAFreshFile)
	ctx.Step(`^an empty upload directory$`, anEmptyUploadDirectory)
	ctx.Step(`^I purge files older than (\d+) hours?$`, iPurgeFilesOlderThan)
	ctx.Step(`^the purge output should report (\d+) deleted files?$`, thePurgeOutputShouldReport)
	ctx.Step(`^the file "([^"]*)" should still exist$`, theFileShouldStillExist)
	ctx.Step(`^the file "([^"]*)" should be gone$`, theFileShouldBeGone)
}

func (cc *cleanupContext) ensureDir() error {
	if cc.dir != "" {
		return nil
	}
	dir, err := os.MkdirTemp("", "vidoer-cleanup-")
	if err != nil {
		return fmt.Errorf("create upload directory: %v", err)
	}
	cc.dir = dir
	return nil
}

func anUploadDirectoryWithAnAgedFile(name string, hours int) error {
	cc := getCleanupContext()
	if err := cc.ensureDir(); err != nil {
		return err
	}

	path := filepath.Join(cc.dir, name)
	if err := os.WriteFile(path, []byte("stale content"), 0o644); err != nil {
		return fmt.Errorf("write %s: %v", name, err)
	}
	aged := time.Now().Add(-time.Duration(hours) * time.Hour)
	if err := os.Chtimes(path, aged, aged); err != nil {
		return fmt.Errorf("age %s: %v", name, err)
	}
	return nil
}

func theUploadDirectoryHasAFreshFile(name string) error {
	cc := getCleanupContext()
	if err := cc.ensureDir(); err != nil {
		return err
	}
	path := filepath.Join(cc.dir, name)
	if err := os.WriteFile(path, []byte("fresh content"), 0o644); err != nil {
		return fmt.Errorf("write %s: %v", name, err)
	}
	return nil
}

func anEmptyUploadDirectory() error {
	cc := getCleanupContext()
	return cc.ensureDir()
}

func iPurgeFilesOlderThan(hours int) error {
	cc := getCleanupContext()
	if err := cc.ensureDir(); err != nil {
		return err
	}

	cc.err = cmd.RunCleanupWithDependencies(
		filesystem.NewStore(),
		cc.dir,
		time.Duration(hours)*time.Hour,
		cc.output,
	)
	if cc.err != nil {
		return fmt.Errorf("unexpected error: %v", cc.err)
	}
	return nil
}

func thePurgeOutputShouldReport(count int) error {
	cc := getCleanupContext()
	want := fmt.Sprintf("Deleted %d stale files", count)
	if !strings.Contains(cc.output.String(), want) {
		return fmt.Errorf("expected output to contain %q, got %q", want, cc.output.String())
	}
	return nil
}

func theFileShouldStillExist(name string) error {
	cc := getCleanupContext()
	if _, err := os.Stat(filepath.Join(cc.dir, name)); err != nil {
		return fmt.Errorf("expected %q to exist: %v", name, err)
	}
	return nil
}

func theFileShouldBeGone(name string) error {
	cc := getCleanupContext()
	_, err := os.Stat(filepath.Join(cc.dir, name))
	if err == nil {
		return fmt.Errorf("expected %q to be deleted, but it still exists", name)
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat %q: %v", name, err)
	}
	return nil
}
