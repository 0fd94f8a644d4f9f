package manifest_test

import (
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/KaramelBytes/fraudlens-cli/internal/manifest"
	"github.com/google/uuid"
)

func TestSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	m := manifest.New(dir, manifest.Inputs{Transactions: "tx.csv", Anomalies: "scores.csv"}, manifest.Settings{Threshold: 0.85, TopK: 10})
	m.Record("overview", filepath.Join(dir, "fraud_detection_analysis.png"), nil, 1500*time.Millisecond)
	m.Record("temporal", "ignored", errors.New("bad date"), time.Millisecond)
	if err := m.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := manifest.Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := uuid.Parse(got.RunID); err != nil || got.RunID != m.RunID {
		t.Fatalf("unexpected run id %q", got.RunID)
	}
	if len(got.Charts) != 2 || got.Failed() != 1 {
		t.Fatalf("unexpected charts: %+v", got.Charts)
	}
	if got.Charts[0].DurationMs != 1500 || got.Charts[0].Error != "" {
		t.Fatalf("unexpected first entry: %+v", got.Charts[0])
	}
	if got.Charts[1].Path != "" || got.Charts[1].Error != "bad date" {
		t.Fatalf("failed entry should carry only the error: %+v", got.Charts[1])
	}
	if got.Settings.Threshold != 0.85 || got.Inputs.Anomalies != "scores.csv" {
		t.Fatalf("settings not round-tripped: %+v", got)
	}
	if got.FinishedAt.Before(got.StartedAt) {
		t.Fatal("finish before start")
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := manifest.Load(t.TempDir())
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
