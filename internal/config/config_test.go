package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	c, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Threshold != 0.85 || c.TopK != 10 || c.BucketCount != 30 || c.TopRegions != 5 || c.DPI != 300 {
		t.Fatalf("unexpected defaults: %+v", c)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	if err := os.WriteFile(path, []byte("top_k: 3\nbucket_count: 12\noutput_dir: charts\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FRAUDLENS_BUCKET_COUNT", "7")
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.TopK != 3 || c.OutputDir != "charts" {
		t.Fatalf("file values not applied: %+v", c)
	}
	if c.BucketCount != 7 {
		t.Fatalf("env should override file, got %d", c.BucketCount)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("bucket_count: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	c := &Global{OutputDir: "out", Threshold: 0.5, TopK: 4, BucketCount: 9, TopRegions: 2, TopCategories: 6, DPI: 72, Delimiter: ";"}
	if err := Save(c, path); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if *got != *c {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, c)
	}
}
