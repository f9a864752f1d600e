package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		Name     string
		Args     []string
		ExitCode int
		Config   string
		Schedule string
	}{
		{"defaults", []string{"tgbotstatus"}, 0, "config.json", ""},
		{"config", []string{"tgbotstatus", "-c", "fleet.json"}, 0, "fleet.json", ""},
		{"schedule_interval", []string{"tgbotstatus", "-s", "30m"}, 0, "config.json", "30m0s"},
		{"schedule_cron", []string{"tgbotstatus", "--schedule", "@hourly"}, 0, "config.json", "@hourly"},
		{"invalid_schedule", []string{"tgbotstatus", "-s", "sometimes"}, 2, "", ""},
		{"unknown_flag", []string{"tgbotstatus", "--no-such-flag"}, 2, "", ""},
		{"unexpected_argument", []string{"tgbotstatus", "extra"}, 2, "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.Name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			cmd := &StatusCommand{OutStream: buf, ErrStream: buf}

			if code := cmd.ParseArgs(tt.Args); code != tt.ExitCode {
				t.Fatalf("expected exit code %d but got %d: %s", tt.ExitCode, code, buf)
			}
			if tt.ExitCode != 0 {
				return
			}

			if cmd.ConfigPath != tt.Config {
				t.Errorf("expected config path %q but got %q", tt.Config, cmd.ConfigPath)
			}

			if tt.Schedule == "" {
				if cmd.Schedule != nil {
					t.Errorf("expected no schedule but got %q", cmd.Schedule)
				}
			} else if cmd.Schedule == nil || cmd.Schedule.String() != tt.Schedule {
				t.Errorf("expected schedule %q but got %v", tt.Schedule, cmd.Schedule)
			}
		})
	}
}

func TestParseArgs_versionAndHelp(t *testing.T) {
	for _, args := range [][]string{
		{"tgbotstatus", "-v"},
		{"tgbotstatus", "--help"},
	} {
		buf := &bytes.Buffer{}
		cmd := &StatusCommand{OutStream: buf, ErrStream: buf}

		if code := cmd.ParseArgs(args); code != 0 {
			t.Errorf("%v: expected exit code 0 but got %d", args, code)
		}
		if !cmd.ShowVersion && !cmd.ShowHelp {
			t.Errorf("%v: expected version or help to be set", args)
		}
	}
}

func TestPrintUsage(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := &StatusCommand{OutStream: buf, ErrStream: buf}

	cmd.PrintUsage()

	for _, want := range []string{"tgbotstatus", "--schedule", "API_ID", "config.json"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("usage text is missing %q", want)
		}
	}
}
