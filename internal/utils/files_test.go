package utils

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type failingWriterTo struct{}

func (failingWriterTo) WriteTo(w io.Writer) (int64, error) {
	n, _ := w.Write([]byte("partial"))
	return int64(n), errors.New("boom")
}

func TestSafeWriteTo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.png")
	if err := SafeWriteTo(path, bytes.NewBufferString("first")); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "first" {
		t.Fatalf("unexpected content %q", got)
	}

	// A failed write must leave the previous file intact and no temp file behind.
	if err := SafeWriteTo(path, failingWriterTo{}); err == nil {
		t.Fatalf("expected error")
	}
	got, _ = os.ReadFile(path)
	if string(got) != "first" {
		t.Fatalf("previous content clobbered: %q", got)
	}
	if left, _ := filepath.Glob(filepath.Join(dir, "*.tmp")); len(left) != 0 {
		t.Fatalf("temp files left behind: %v", left)
	}
}

func TestSafeWriteToConcurrentSamePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chart.png")
	payload := bytes.Repeat([]byte("x"), 64<<10)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- SafeWriteTo(path, bytes.NewReader(payload))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent write: %v", err)
		}
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("content corrupted: %d bytes", len(got))
	}
	if left, _ := filepath.Glob(filepath.Join(dir, "*.tmp")); len(left) != 0 {
		t.Fatalf("temp files left behind: %v", left)
	}
}

func TestSafeWriteFileAndPrettyJSON(t *testing.T) {
	dir := t.TempDir()
	b, err := PrettyJSON(map[string]int{"a": 1})
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	path := filepath.Join(dir, "m.json")
	if err := SafeWriteFile(path, b); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, _ := os.ReadFile(path)
	if string(got) != "{\n  \"a\": 1\n}" {
		t.Fatalf("unexpected json: %q", got)
	}
}
