package analysis

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
)

// Error kinds. Each typed error below matches exactly one of these via errors.Is.
var (
	ErrLengthMismatch = errors.New("length mismatch")
	ErrEmptyGroup     = errors.New("empty group")
	ErrDateParse      = errors.New("date parse error")
	ErrMissingField   = dataset.ErrMissingField
)

// Group labels.
const (
	GroupAnomalous = "anomalous"
	GroupNormal    = "normal"
)

// LengthMismatchError indicates the two tables are not row-aligned.
type LengthMismatchError struct {
	Transactions int
	Anomalies    int
	// Misaligned is set when lengths agree but row identifiers differ at Row.
	Misaligned    bool
	Row           int
	TransactionID string
	AnomalyID     string
}

func (e *LengthMismatchError) Error() string {
	if e.Misaligned {
		return fmt.Sprintf("tables not aligned: row %d has transaction id %q but anomaly id %q", e.Row, e.TransactionID, e.AnomalyID)
	}
	return fmt.Sprintf("tables not aligned: %d transactions vs %d anomaly results", e.Transactions, e.Anomalies)
}

func (e *LengthMismatchError) Is(target error) bool { return target == ErrLengthMismatch }

// EmptyGroupError indicates an aggregate over a group with no usable rows.
type EmptyGroupError struct {
	Group string
	Field string
}

func (e *EmptyGroupError) Error() string {
	return fmt.Sprintf("no %s transactions with a %s value", e.Group, e.Field)
}

func (e *EmptyGroupError) Is(target error) bool { return target == ErrEmptyGroup }

// DateParseError reports an unparseable transaction date.
type DateParseError struct {
	Row   int
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("row %d: cannot parse date %q: %v", e.Row, e.Value, e.Err)
}

func (e *DateParseError) Is(target error) bool { return target == ErrDateParse }

func (e *DateParseError) Unwrap() error { return e.Err }
