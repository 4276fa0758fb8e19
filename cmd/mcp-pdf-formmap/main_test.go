package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/a3tai/pdf-formmap/internal/config"
)

const testVersion = "1.2.3"

func TestPrintVersion(t *testing.T) {
	oldVersion, oldBuildTime, oldGitCommit := version, buildTime, gitCommit
	version = testVersion
	buildTime = "2023-12-01_10:30:00"
	gitCommit = "abc123"
	defer func() {
		version, buildTime, gitCommit = oldVersion, oldBuildTime, oldGitCommit
	}()

	var buf bytes.Buffer
	printVersion(&buf)
	output := buf.String()

	expectedStrings := []string{
		"MCP PDF Form Mapper",
		"Version: " + testVersion,
		"Build Time: 2023-12-01_10:30:00",
		"Git Commit: abc123",
		"Built with:",
	}
	for _, expected := range expectedStrings {
		if !strings.Contains(output, expected) {
			t.Errorf("printVersion() output missing expected string: %s\nActual output:\n%s", expected, output)
		}
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--version"}, &stdout, &stderr); code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "Version:") {
		t.Errorf("expected version output, got: %s", stdout.String())
	}
}

func TestRun_InvalidConfiguration(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"--loglevel", "verbose"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Failed to load configuration") {
		t.Errorf("expected configuration error, got: %s", stderr.String())
	}
}

func TestSetupLogging(t *testing.T) {
	cfg := config.DefaultConfig()

	var buf bytes.Buffer
	setupLogging(cfg, &buf).Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected no log output outside debug mode, got: %s", buf.String())
	}

	cfg.LogLevel = "debug"
	setupLogging(cfg, &buf).Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("expected debug output, got: %s", buf.String())
	}
}
