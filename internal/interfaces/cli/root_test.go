package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/turtacn/OrphaMine/pkg/errors"
)

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	if cmd == nil {
		t.Fatal("NewRootCommand should return a command")
	}
	if cmd.Use != "orphamine" {
		t.Errorf("expected Use='orphamine', got %q", cmd.Use)
	}
	if cmd.Short == "" {
		t.Error("Short should not be empty")
	}
	if cmd.Long == "" {
		t.Error("Long should not be empty")
	}
}

func TestNewRootCommand_SubcommandRegistration(t *testing.T) {
	cmd := NewRootCommand()

	subNames := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		subNames[sub.Name()] = true
	}
	for _, name := range []string{"fetch", "embed", "rank", "matches", "version"} {
		if !subNames[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"config", "log-level", "output", "verbose", "no-color"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("%s flag should exist", name)
		}
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	if verbose.Shorthand != "v" {
		t.Errorf("verbose flag shorthand should be 'v', got %q", verbose.Shorthand)
	}
	if verbose.DefValue != "false" {
		t.Errorf("verbose flag default should be 'false', got %q", verbose.DefValue)
	}

	output := cmd.PersistentFlags().Lookup("output")
	if output.DefValue != "table" {
		t.Errorf("output flag default should be 'table', got %q", output.DefValue)
	}
}

func TestFetchCmd_Flags(t *testing.T) {
	cmd := newFetchCmd()
	for _, name := range []string{"target", "page-size", "concurrency", "dataset", "publish"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("fetch flag %q should exist", name)
		}
	}
}

func TestRankCmd_Flags(t *testing.T) {
	cmd := newRankCmd()
	for _, name := range []string{"top-n", "diseases", "compounds", "metadata", "out", "parallelism"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("rank flag %q should exist", name)
		}
	}
	if cmd.Flags().Lookup("output") != nil {
		t.Error("rank must not shadow the global output flag")
	}
}

func TestVersionCmd_Output(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	Version, GitCommit = "1.2.3", "abc123"
	defer func() { Version, GitCommit = origVersion, origCommit }()

	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "orphamine 1.2.3") {
		t.Errorf("version output missing version: %q", out)
	}
	if !strings.Contains(out, "abc123") {
		t.Errorf("version output missing commit: %q", out)
	}
}

func TestExecute_Help(t *testing.T) {
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execution failed: %v", err)
	}
	if !strings.Contains(buf.String(), "fetch") {
		t.Error("help output should list the fetch command")
	}
}

func TestExecute_UnknownSubcommand(t *testing.T) {
	cmd := NewRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs([]string{"unknownsubcommand"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown subcommand")
	}
}

func TestExecute_BadFlagIsConfigurationError(t *testing.T) {
	err := Execute(context.Background(), []string{"rank", "--top-n", "many"})
	if err == nil {
		t.Fatal("expected error for malformed flag value")
	}
	if got := errors.ExitCode(err); got != errors.ExitConfiguration {
		t.Errorf("expected exit code %d, got %d", errors.ExitConfiguration, got)
	}
}

func TestExecute_UnknownOutputFormat(t *testing.T) {
	err := Execute(context.Background(), []string{"--output", "xml", "matches"})
	if !errors.IsCode(err, errors.ErrCodeConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestFormatTable(t *testing.T) {
	got := FormatTable([]string{"A", "LONGER"}, [][]string{{"xyz", "1"}, {"q"}})
	want := "A    LONGER\n---  ------\nxyz  1     \nq          \n"
	if got != want {
		t.Errorf("FormatTable mismatch:\n got %q\nwant %q", got, want)
	}
	if FormatTable(nil, nil) != "" {
		t.Error("FormatTable without headers should be empty")
	}
}

//Personal.AI order the ending
