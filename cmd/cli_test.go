package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/spf13/viper"

	"clockedout/config"
)

// Monday 12/01: 2h, Friday 12/05: 1h, Saturday 12/06: 3h.
const cliExport = "Start,Time Tracked\n" +
	"1764579600000,7200000\n" +
	"1764925200000,3600000\n" +
	"1765011600000,10800000\n"

type cliEnv struct {
	dir        string
	configPath string
	dbPath     string
	csvPath    string
}

func newCLIEnv(t *testing.T) cliEnv {
	t.Helper()

	dir := t.TempDir()
	env := cliEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "clockedout.yaml"),
		dbPath:     filepath.Join(dir, "clockedout.db"),
		csvPath:    filepath.Join(dir, "export.csv"),
	}
	content := "database:\n  path: \"" + env.dbPath + "\"\n" +
		"preferences:\n  path: \"" + filepath.Join(dir, "preferences.yaml") + "\"\n" +
		"calendar:\n  timezone: \"UTC\"\n" +
		"log:\n  level: \"error\"\n"
	if err := os.WriteFile(env.configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := os.WriteFile(env.csvPath, []byte(cliExport), 0o600); err != nil {
		t.Fatalf("write export: %v", err)
	}

	pterm.DisableColor()
	t.Cleanup(func() {
		cfgFile = ""
		dbPath = ""
		logLevel = ""
		viper.Reset()
		config.SetDefaults()
	})
	return env
}

func (e cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	config.SetDefaults()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--configFile", e.configPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCLIImportReportExportAndDelete(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "import", "-i", env.csvPath, "--action", "replace", "--weekday-rate", "90", "--weekend-rate", "100", "--rate-source", "confirmed")
	if err != nil {
		t.Fatalf("import: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Month: 12/2025") || !strings.Contains(out, "580.00") {
		t.Fatalf("unexpected import output:\n%s", out)
	}

	out, err = env.run(t, "months")
	if err != nil {
		t.Fatalf("months: %v", err)
	}
	if !strings.Contains(out, "December 2025") {
		t.Fatalf("expected stored month in listing:\n%s", out)
	}

	out, err = env.run(t, "report", "--month", "12/2025", "--from", "", "--to", "")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(out, "30-6/11") || !strings.Contains(out, "Salary:") {
		t.Fatalf("unexpected report output:\n%s", out)
	}

	csvOut := filepath.Join(env.dir, "december.csv")
	if _, err := env.run(t, "export", "--month", "12/2025", "-o", csvOut, "--format", "", "--all=false"); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(csvOut)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(string(data), "30-6/11,2.00,4.00,6.00") {
		t.Fatalf("unexpected export:\n%s", data)
	}

	out, err = env.run(t, "rates", "set", "--weekday", "100", "--weekend", "", "--apply-to", "12/2025")
	if err != nil {
		t.Fatalf("rates set: %v\n%s", err, out)
	}
	out, err = env.run(t, "report", "--month", "12/2025")
	if err != nil {
		t.Fatalf("report after rates: %v", err)
	}
	if !strings.Contains(out, "600.00") {
		t.Fatalf("expected recalculated salary in report:\n%s", out)
	}

	deletePromptInput = strings.NewReader("Y\n")
	deletePromptOutput = &bytes.Buffer{}
	t.Cleanup(func() {
		deletePromptInput = os.Stdin
		deletePromptOutput = os.Stdout
	})
	if _, err := env.run(t, "delete", "--month", "12/2025", "--database=false"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	out, err = env.run(t, "months")
	if err != nil {
		t.Fatalf("months after delete: %v", err)
	}
	if !strings.Contains(out, "No months stored yet") {
		t.Fatalf("expected empty listing after delete:\n%s", out)
	}
}

func TestCLIImportCancelWritesNothing(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run(t, "import", "-i", env.csvPath, "--action", "cancel", "--weekday-rate", "", "--weekend-rate", "")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out, "Import cancelled") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = env.run(t, "months")
	if err != nil {
		t.Fatalf("months: %v", err)
	}
	if !strings.Contains(out, "No months stored yet") {
		t.Fatalf("expected no stored months:\n%s", out)
	}
}

func TestCLIRejectsInvalidMonth(t *testing.T) {
	env := newCLIEnv(t)

	if _, err := env.run(t, "report", "--month", "2025-12", "--from", "", "--to", ""); err == nil {
		t.Fatalf("expected invalid month error")
	}
}

func TestCLIRatesSetRejectsBadMonthBeforeSaving(t *testing.T) {
	env := newCLIEnv(t)

	if _, err := env.run(t, "rates", "set", "--weekday", "120", "--weekend", "", "--apply-to", "2025-12"); err == nil {
		t.Fatalf("expected invalid --apply-to error")
	}

	out, err := env.run(t, "rates", "show")
	if err != nil {
		t.Fatalf("rates show: %v", err)
	}
	if !strings.Contains(out, "Weekday rate: 90.00") {
		t.Fatalf("rates must be unchanged after a rejected --apply-to:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(env.dir, "preferences.yaml")); !os.IsNotExist(err) {
		t.Fatalf("preferences file must not be written, stat err: %v", err)
	}
}

func TestCLIBackupReportsSchemaVersion(t *testing.T) {
	env := newCLIEnv(t)

	dest := filepath.Join(env.dir, "backup.db")
	out, err := env.run(t, "backup", "-o", dest)
	if err != nil {
		t.Fatalf("backup: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Backup written: "+dest) || !strings.Contains(out, "schema version 2") {
		t.Fatalf("unexpected backup output:\n%s", out)
	}
	if info, err := os.Stat(dest); err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty backup, got %v", err)
	}
}
