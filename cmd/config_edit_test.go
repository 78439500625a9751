package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clockedout/config"
)

func TestResolveConfigEditPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		name string
		flag string
		used string
		want string
	}{
		{name: "explicit flag wins", flag: "./clockedout.yaml", used: "/tmp/active.yaml", want: "./clockedout.yaml"},
		{name: "active config", used: "/tmp/active.yaml", want: "/tmp/active.yaml"},
		{name: "home default", want: filepath.Join(home, ".clockedout.yaml")},
	}

	for _, tt := range tests {
		got, err := resolveConfigEditPath(tt.flag, tt.used)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestEnsureConfigFileWithTemplateIsValidConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "nested", "clockedout.yaml")

	created, err := ensureConfigFileWithTemplate(configPath)
	if err != nil || !created {
		t.Fatalf("expected template to be created: created=%v err=%v", created, err)
	}
	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("stat config file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected config file mode 0600, got %o", info.Mode().Perm())
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("read config file: %v", err)
	}
	cfg, err := config.ValidateYAMLContent(content)
	if err != nil {
		t.Fatalf("template must validate: %v", err)
	}
	if cfg.Calendar.WeekdayPolicy != "sun-thu" || cfg.Parser.FallbackOffset != "+05:30" {
		t.Fatalf("unexpected template calendar settings: %+v %+v", cfg.Calendar, cfg.Parser)
	}

	created, err = ensureConfigFileWithTemplate(configPath)
	if err != nil || created {
		t.Fatalf("existing file must be kept: created=%v err=%v", created, err)
	}
}

func TestDescribeCalendar(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "defaults",
			content: "calendar:\n  timezone: \"UTC\"\n",
			want: []string{
				"Timezone: UTC",
				"Fallback offset: UTC+05:30",
				"Weekday policy: sun-thu (weekend: Fri, Sat)",
				"Weeks start on: Sunday",
			},
		},
		{
			name: "mon-fri weeks from monday",
			content: "calendar:\n  timezone: \"utc\"\n  weekday_policy: \"mon-fri\"\n  week_start: \"monday\"\n" +
				"parser:\n  fallback_offset: \"-03:30\"\n",
			want: []string{
				"Timezone: UTC",
				"Fallback offset: UTC-03:30",
				"Weekday policy: mon-fri (weekend: Sun, Sat)",
				"Weeks start on: Monday",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.ValidateYAMLContent([]byte(tt.content))
			if err != nil {
				t.Fatalf("validate config: %v", err)
			}
			var out bytes.Buffer
			if err := describeCalendar(&out, cfg); err != nil {
				t.Fatalf("describe calendar: %v", err)
			}
			for _, line := range tt.want {
				if !strings.Contains(out.String(), line) {
					t.Fatalf("expected %q in output:\n%s", line, out.String())
				}
			}
		})
	}
}

func TestBuildEditorCommand(t *testing.T) {
	if got := resolveEditorValue("", ""); got != "vi" {
		t.Fatalf("expected vi fallback, got %q", got)
	}
	if got := resolveEditorValue("", "nano"); got != "nano" {
		t.Fatalf("expected $EDITOR, got %q", got)
	}

	editor := resolveEditorValue("code --wait", "nano")
	cmd, err := buildEditorCommand(editor, "/tmp/clockedout.yaml")
	if err != nil {
		t.Fatalf("build editor command: %v", err)
	}
	if len(cmd.Args) != 3 || cmd.Args[1] != "--wait" || cmd.Args[2] != "/tmp/clockedout.yaml" {
		t.Fatalf("unexpected command args: %#v", cmd.Args)
	}

	if _, err := buildEditorCommand("   ", "/tmp/clockedout.yaml"); err == nil {
		t.Fatalf("expected error for empty editor")
	}
}
