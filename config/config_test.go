package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/etnz/realized"
	"github.com/etnz/realized/date"
	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rgc.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
baseline_date: 2024-12-31
baseline_dir: /data/baseline
activities: /data/activities.csv
policy: strict
filter:
  exclude_descriptions: [DLR, GAMBIT]
  exclude_currencies: [CAD]
log:
  level: debug
`)
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	want.BaselineDate = "2024-12-31"
	want.BaselineDir = "/data/baseline"
	want.Activities = "/data/activities.csv"
	want.Policy = "strict"
	want.Filter.ExcludeDescriptions = []string{"DLR", "GAMBIT"}
	want.Log.Level = "debug"
	if diff := cmp.Diff(&want, c); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
	if got := c.Baseline(); got != date.MustParse("2024-12-31") {
		t.Errorf("Baseline() = %s, want 2024-12-31", got)
	}
	if c.ComputePolicy() != realized.Strict {
		t.Errorf("ComputePolicy() = %v, want strict", c.ComputePolicy())
	}
}

func TestLoad_Env(t *testing.T) {
	path := writeConfig(t, "policy: strict\ndb: archive.db\n")
	t.Setenv("RGC_POLICY", "lenient")
	t.Setenv("RGC_BASELINE_DATE", "2025-06-30")
	t.Setenv("RGC_LISTEN", ":9090")
	t.Setenv("LOG_FORMAT", "json")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Policy != "lenient" || c.BaselineDate != "2025-06-30" || c.Listen != ":9090" || c.Log.Format != "json" {
		t.Errorf("environment not applied: %+v", c)
	}
	if c.DB != "archive.db" {
		t.Errorf("DB = %q, want the file value", c.DB)
	}
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"Unknown policy", "policy: sloppy\n"},
		{"Bad baseline date", "baseline_date: yesterday\n"},
		{"Unknown currency", "currency: XXXX\n"},
		{"Not yaml", "policy: [strict\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.content)); err == nil {
				t.Errorf("Load() error = nil, want an error")
			}
		})
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("Load(missing) error = nil, want an error")
	}
}
