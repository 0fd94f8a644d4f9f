// Package analysis joins the transaction table with the anomaly-result table
// and derives the aggregates every chart and report consumes.
package analysis

import (
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
)

// Row is a transaction together with its ordinal position in the full table.
type Row struct {
	Pos int
	dataset.Transaction
}

// Subset is an ordered selection of rows from one transaction table.
type Subset struct {
	Rows   []Row
	source dataset.Transactions
}

// All returns every row of t as a Subset.
func All(t dataset.Transactions) Subset {
	rows := make([]Row, len(t.Rows))
	for i, tx := range t.Rows {
		rows[i] = Row{Pos: i, Transaction: tx}
	}
	return Subset{Rows: rows, source: t}
}

// Len returns the number of rows in the subset.
func (s Subset) Len() int { return len(s.Rows) }

// Align validates that t and a describe the same rows in the same order.
// Lengths must match; when both tables carry identifiers they must agree row by row.
func Align(t dataset.Transactions, a dataset.Anomalies) error {
	if err := a.Require(dataset.FieldIsAnomaly); err != nil {
		return err
	}
	if t.Len() != a.Len() {
		return &LengthMismatchError{Transactions: t.Len(), Anomalies: a.Len()}
	}
	if t.HasIDs() && a.HasIDs() {
		for i := range t.Rows {
			if t.Rows[i].ID != a.Rows[i].ID {
				return &LengthMismatchError{
					Transactions:  t.Len(),
					Anomalies:     a.Len(),
					Misaligned:    true,
					Row:           i,
					TransactionID: t.Rows[i].ID,
					AnomalyID:     a.Rows[i].ID,
				}
			}
		}
	}
	return nil
}

// SelectAnomalous returns the rows of t flagged anomalous in a, in t's order.
func SelectAnomalous(t dataset.Transactions, a dataset.Anomalies) (Subset, error) {
	return selectGroup(t, a, 1)
}

// SelectNormal returns the rows of t not flagged anomalous in a, in t's order.
func SelectNormal(t dataset.Transactions, a dataset.Anomalies) (Subset, error) {
	return selectGroup(t, a, 0)
}

func selectGroup(t dataset.Transactions, a dataset.Anomalies, flag int) (Subset, error) {
	if err := Align(t, a); err != nil {
		return Subset{}, err
	}
	s := Subset{source: t}
	for i, an := range a.Rows {
		if an.IsAnomaly == flag {
			s.Rows = append(s.Rows, Row{Pos: i, Transaction: t.Rows[i]})
		}
	}
	return s, nil
}
