package dataset

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Source reads one file format into a raw Table.
type Source interface {
	CanRead(filename string) bool
	Read(path string, kind Kind, opt Options) (*Table, error)
}

var registry []Source

// Register adds a source implementation to the registry.
func Register(s Source) {
	registry = append(registry, s)
}

// ErrUnsupported indicates a file format no registered source can read.
var ErrUnsupported = errors.New("unsupported table format")

// ReadTable selects a source by filename and reads the file into a raw Table.
func ReadTable(path string, kind Kind, opt Options) (*Table, error) {
	for _, s := range registry {
		if s.CanRead(path) {
			t, err := s.Read(path, kind, opt)
			if err != nil {
				return nil, err
			}
			if t.Name == "" {
				t.Name = filepath.Base(path)
			}
			return t, nil
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

// LoadTransactions reads and decodes a transaction table from path.
func LoadTransactions(path string, opt Options) (Transactions, error) {
	t, err := ReadTable(path, KindTransactions, opt)
	if err != nil {
		return Transactions{}, fmt.Errorf("read transactions: %w", err)
	}
	return DecodeTransactions(t, opt)
}

// LoadAnomalies reads and decodes an anomaly-result table from path.
func LoadAnomalies(path string, opt Options) (Anomalies, error) {
	t, err := ReadTable(path, KindAnomalies, opt)
	if err != nil {
		return Anomalies{}, fmt.Errorf("read anomalies: %w", err)
	}
	return DecodeAnomalies(t, opt)
}

func init() {
	Register(csvSource{})
	Register(xlsxSource{})
	Register(parquetSource{})
}
