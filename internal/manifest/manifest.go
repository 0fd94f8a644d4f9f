package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/fraudlens-cli/internal/utils"
	"github.com/google/uuid"
)

const fileName = "manifest.json"

// Manifest records one render run in its output directory.
type Manifest struct {
	RunID      string    `json:"run_id"`
	Inputs     Inputs    `json:"inputs"`
	Settings   Settings  `json:"settings"`
	Charts     []Entry   `json:"charts"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Not serialized: directory holding manifest.json
	rootDir string `json:"-"`
}

type Inputs struct {
	Transactions string `json:"transactions"`
	Anomalies    string `json:"anomalies"`
}

type Settings struct {
	Threshold     float64 `json:"threshold"`
	TopK          int     `json:"top_k"`
	BucketCount   int     `json:"bucket_count"`
	TopCategories int     `json:"top_categories"`
	DPI           int     `json:"dpi"`
	Parallel      bool    `json:"parallel"`
}

// Entry is the outcome of one chart. Exactly one of Path and Error is set.
type Entry struct {
	Chart      string `json:"chart"`
	Path       string `json:"path,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// New starts a manifest for a run writing into dir.
func New(dir string, in Inputs, s Settings) *Manifest {
	return &Manifest{
		RunID:     uuid.NewString(),
		Inputs:    in,
		Settings:  s,
		StartedAt: time.Now(),
		rootDir:   dir,
	}
}

// Load reads manifest.json from dir.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, fileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("manifest not found at %s: %w", path, err)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	m.rootDir = dir
	return &m, nil
}

// Record appends a chart outcome.
func (m *Manifest) Record(chart, path string, err error, took time.Duration) {
	e := Entry{Chart: chart, DurationMs: took.Milliseconds()}
	if err != nil {
		e.Error = err.Error()
	} else {
		e.Path = path
	}
	m.Charts = append(m.Charts, e)
}

// Failed returns the number of charts that failed.
func (m *Manifest) Failed() int {
	n := 0
	for _, e := range m.Charts {
		if e.Error != "" {
			n++
		}
	}
	return n
}

// Path returns the manifest file location.
func (m *Manifest) Path() string { return filepath.Join(m.rootDir, fileName) }

// Save stamps the finish time and writes manifest.json atomically.
func (m *Manifest) Save() error {
	if m.rootDir == "" {
		return errors.New("manifest directory not set")
	}
	if err := utils.EnsureDir(m.rootDir); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	m.FinishedAt = time.Now()
	data, err := utils.PrettyJSON(m)
	if err != nil {
		return err
	}
	return utils.SafeWriteFile(m.Path(), data)
}
