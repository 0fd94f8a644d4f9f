// Package dataset holds the transaction and anomaly-result tables consumed by
// the analysis and render packages, plus readers that materialize them from
// CSV, XLSX and Parquet files.
package dataset

import (
	"errors"
	"fmt"
	"math"
)

// ErrMissingField matches any error about a referenced column that the input does not have.
var ErrMissingField = errors.New("missing field")

// Transaction column names as emitted by the detection pipeline.
const (
	FieldAmount         = "transaction amount"
	FieldMerchantName   = "merchant name"
	FieldMCCDescription = "mcc description"
	FieldMCC            = "mcc"
	FieldMerchantZip    = "merchant zip"
	FieldRegion         = "region"
	FieldDate           = "transaction date"
	FieldTransactionID  = "transaction id"
)

// Anomaly result column names.
const (
	FieldEnsembleScore       = "ensemble_score"
	FieldKMeansScore         = "kmeans_score_norm"
	FieldIsoScore            = "iso_score_norm"
	FieldReconstructionError = "recon_error"
	FieldIsAnomaly           = "is_anomaly"
	FieldAnomalyID           = "transaction_id"
)

// TransactionFields lists every transaction column in canonical order.
var TransactionFields = []string{FieldAmount, FieldMerchantName, FieldMCCDescription, FieldMCC, FieldMerchantZip, FieldRegion, FieldDate, FieldTransactionID}

// AnomalyFields lists every anomaly result column in canonical order.
var AnomalyFields = []string{FieldEnsembleScore, FieldKMeansScore, FieldIsoScore, FieldReconstructionError, FieldIsAnomaly, FieldAnomalyID}

// Transaction is one row of the transaction table.
// Missing numeric cells hold NaN.
type Transaction struct {
	ID             string
	Amount         float64
	MerchantName   string
	MCCDescription string
	MCC            float64
	MerchantZip    float64
	Region         string
	// Date is kept as the raw cell text; parsing happens where it is needed.
	Date string
}

// Anomaly is one row of the anomaly-result table.
type Anomaly struct {
	ID                  string
	EnsembleScore       float64
	KMeansScoreNorm     float64
	IsoScoreNorm        float64
	ReconstructionError float64
	IsAnomaly           int
}

// Flagged reports whether the row was classified anomalous.
func (a Anomaly) Flagged() bool { return a.IsAnomaly == 1 }

// Transactions is the transaction table in row order together with the set of
// columns the source actually provided.
type Transactions struct {
	Rows    []Transaction
	columns map[string]bool
}

// Anomalies is the anomaly-result table in row order.
type Anomalies struct {
	Rows    []Anomaly
	columns map[string]bool
}

// NewTransactions wraps rows into a table. With no columns listed, every
// transaction column is considered present.
func NewTransactions(rows []Transaction, columns ...string) Transactions {
	return Transactions{Rows: rows, columns: columnSet(columns)}
}

// NewAnomalies wraps rows into a table. With no columns listed, every
// anomaly column is considered present.
func NewAnomalies(rows []Anomaly, columns ...string) Anomalies {
	return Anomalies{Rows: rows, columns: columnSet(columns)}
}

func columnSet(columns []string) map[string]bool {
	if len(columns) == 0 {
		return nil
	}
	m := make(map[string]bool, len(columns))
	for _, c := range columns {
		m[c] = true
	}
	return m
}

// Len returns the number of rows.
func (t Transactions) Len() int { return len(t.Rows) }

// Has reports whether the source provided the named column.
func (t Transactions) Has(field string) bool { return t.columns == nil || t.columns[field] }

// Require fails with a MissingColumnError for the first absent column.
func (t Transactions) Require(fields ...string) error {
	for _, f := range fields {
		if !t.Has(f) {
			return &MissingColumnError{Table: "transactions", Column: f}
		}
	}
	return nil
}

// HasIDs reports whether every row carries a non-empty identifier.
func (t Transactions) HasIDs() bool {
	if len(t.Rows) == 0 || !t.Has(FieldTransactionID) {
		return false
	}
	for _, r := range t.Rows {
		if r.ID == "" {
			return false
		}
	}
	return true
}

// Len returns the number of rows.
func (a Anomalies) Len() int { return len(a.Rows) }

// Has reports whether the source provided the named column.
func (a Anomalies) Has(field string) bool { return a.columns == nil || a.columns[field] }

// Require fails with a MissingColumnError for the first absent column.
func (a Anomalies) Require(fields ...string) error {
	for _, f := range fields {
		if !a.Has(f) {
			return &MissingColumnError{Table: "anomalies", Column: f}
		}
	}
	return nil
}

// HasIDs reports whether every row carries a non-empty identifier.
func (a Anomalies) HasIDs() bool {
	if len(a.Rows) == 0 || !a.Has(FieldAnomalyID) {
		return false
	}
	for _, r := range a.Rows {
		if r.ID == "" {
			return false
		}
	}
	return true
}

// Flagged returns the number of rows with is_anomaly == 1.
func (a Anomalies) Flagged() int {
	n := 0
	for _, r := range a.Rows {
		if r.Flagged() {
			n++
		}
	}
	return n
}

// Numeric returns the value of a numeric transaction field by column name.
func (t Transaction) Numeric(field string) (float64, error) {
	switch field {
	case FieldAmount:
		return t.Amount, nil
	case FieldMCC:
		return t.MCC, nil
	case FieldMerchantZip:
		return t.MerchantZip, nil
	}
	return math.NaN(), &UnknownFieldError{Field: field, Kind: "numeric"}
}

// Category returns the value of a categorical transaction field by column name.
func (t Transaction) Category(field string) (string, error) {
	switch field {
	case FieldMerchantName:
		return t.MerchantName, nil
	case FieldMCCDescription:
		return t.MCCDescription, nil
	case FieldRegion:
		return t.Region, nil
	}
	return "", &UnknownFieldError{Field: field, Kind: "categorical"}
}

// UnknownFieldError reports a field name that does not exist on the row type.
type UnknownFieldError struct {
	Field string
	Kind  string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown %s field %q", e.Kind, e.Field)
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrMissingField }

// MissingColumnError reports a required column absent from an input file header.
type MissingColumnError struct {
	Table  string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s table: missing required column %q", e.Table, e.Column)
}

func (e *MissingColumnError) Is(target error) bool { return target == ErrMissingField }
