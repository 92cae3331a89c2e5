package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/atmscope/internal/logger"
	"github.com/KaramelBytes/atmscope/internal/store"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const fixtureCSV = `NAME,ADDRESS,X,Y,WARD,ZIPCODE
PNC Bank,800 17th St NW,-77.0395,38.8995,2,20006
PNC Bank,1 Main St,-77.0300,38.9100,2,20005
Capital One,2 Main St,-77.0000,38.8800,6,20003
Wells Fargo,3 Main St,-77.0200,38.9000,,20001
Bad Row,4 Main St,-200,95,1,20001
`

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	// Reset sticky flag state between invocations
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// runCmd is a helper to execute the root command and fail on error.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, "", args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

type env struct {
	home string
	dsn  string
	out  string
}

func setup(t *testing.T) env {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	e := env{home: home, dsn: filepath.Join(home, "atm.db"), out: filepath.Join(home, "maps")}
	csvPath := filepath.Join(home, "ATM_Banking.csv")
	if err := os.WriteFile(csvPath, []byte(fixtureCSV), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	out := runCmd(t, "load", csvPath, "--reset", "--dsn", e.dsn)
	if !strings.Contains(out, "Loaded 5 ATM records") {
		t.Fatalf("load output: %s", out)
	}
	return e
}

func TestCLI_LoadDensity(t *testing.T) {
	e := setup(t)
	xlsx := filepath.Join(e.home, "density.xlsx")
	geo := filepath.Join(e.home, "atms.geojson")
	out := runCmd(t, "density", "--dsn", e.dsn, "--projection", "EPSG:4326", "-o", e.out, "--xlsx", xlsx, "--geojson", geo)

	for _, want := range []string{
		"ATM DENSITY BY WARD",
		"ATM DENSITY BY ZIP CODE",
		"ATM TYPES BY WARD",
		"SUMMARY STATISTICS",
		"Converted 3 of 4 records from EPSG:4326",
		"Total ATMs: 3",
		"Highest density Ward: 2 (2 ATMs)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("density output missing %q", want)
		}
	}
	for _, p := range []string{filepath.Join(e.out, "atm_density_heatmap.html"), xlsx, geo} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected artifact %s: %v", p, err)
		}
	}
}

func TestCLI_NamesAndDistance(t *testing.T) {
	e := setup(t)
	out := runCmd(t, "names", "--dsn", e.dsn)
	if !strings.Contains(out, " 1. PNC Bank (2 locations)") || !strings.Contains(out, " 2. Bad Row (1 locations)") {
		t.Fatalf("names output: %s", out)
	}

	out = runCmd(t, "distance", "PNC Bank", "--dsn", e.dsn, "--projection", "EPSG:4326", "-o", e.out)
	for _, want := range []string{"Found 2 'PNC Bank' ATMs.", "Shortest distance between ATMs:", "Average distance between ATMs:"} {
		if !strings.Contains(out, want) {
			t.Errorf("distance output missing %q:\n%s", want, out)
		}
	}
	if _, err := os.Stat(filepath.Join(e.out, "pnc_bank_atm_map.html")); err != nil {
		t.Fatalf("map not written: %v", err)
	}

	out = runCmd(t, "distance", "Bad Row", "--dsn", e.dsn, "--projection", "EPSG:4326", "-o", e.out)
	if !strings.Contains(out, "Not enough valid ATMs to calculate distances.") {
		t.Fatalf("expected insufficient message:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(e.out, "bad_row_atm_map.html")); !os.IsNotExist(err) {
		t.Fatalf("no map expected without valid points")
	}

	out = runCmd(t, "distance", "Nobody", "--dsn", e.dsn)
	if !strings.Contains(out, "No matching ATMs found.") {
		t.Fatalf("expected no match:\n%s", out)
	}
}

func TestCLI_Explore(t *testing.T) {
	e := setup(t)
	out, err := execute(t, "abc\n0\n3\nn\n", "explore", "--dsn", e.dsn, "--projection", "EPSG:4326", "-o", e.out)
	if err != nil {
		t.Fatalf("explore: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Please enter a valid number or 'q' to quit",
		"Please enter a number between 1 and 4",
		"You selected: Capital One",
		"Creating map with single ATM location...",
		"Goodbye!",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("explore output missing %q", want)
		}
	}
	if _, err := os.Stat(filepath.Join(e.out, "capital_one_atm_map.html")); err != nil {
		t.Fatalf("map not written: %v", err)
	}
}

func TestCLI_ConfigSetShow(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	runCmd(t, "config", "set", "zip_top_n", "5")
	runCmd(t, "config", "set", "projection", "epsg:26985")
	out := runCmd(t, "config", "show")
	if !strings.Contains(out, "zip_top_n: 5") || !strings.Contains(out, "projection: EPSG:26985") {
		t.Fatalf("config show: %s", out)
	}
	if _, err := execute(t, "", "config", "set", "projection", "EPSG:9999"); err == nil {
		t.Fatalf("expected unknown projection error")
	}
}

func TestCLI_UnknownDriver(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := execute(t, "", "names", "--db-driver", "oracle", "--dsn", "x")
	if !errors.Is(err, store.ErrUnknownDriver) {
		t.Fatalf("expected ErrUnknownDriver, got %v", err)
	}
}

func TestCLI_ReadCommandsOnEmptyDatabase(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	dsn := filepath.Join(home, "empty.db")
	for _, args := range [][]string{
		{"names"},
		{"density", "-o", home},
		{"distance", "PNC Bank", "-o", home},
		{"explore"},
	} {
		out := runCmd(t, append(args, "--dsn", dsn)...)
		if !strings.Contains(out, "(no ATMs loaded)") {
			t.Fatalf("%v output: %s", args, out)
		}
	}
	sess, err := store.Open(store.Options{Driver: "sqlite", DSN: dsn}, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer sess.Close()
	if sess.Exists(context.Background()) {
		t.Fatalf("read commands must not create the schema")
	}
}

func TestRunReportsAndLogsFailure(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	core, logs := observer.New(zapcore.DebugLevel)
	prev := log
	log = &logger.Logger{SugaredLogger: zap.New(core).Sugar()}
	defer func() { log = prev }()

	var stderr bytes.Buffer
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"names", "--no-such-flag"})
	if code := run(&stderr); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), "✗ Error:") {
		t.Fatalf("stderr = %q", stderr.String())
	}
	if logs.FilterMessage("command failed").Len() != 1 {
		t.Fatalf("failure not logged: %v", logs.All())
	}
}
