package dataset

import (
	"fmt"
	"strings"
)

// Kind selects which table a file holds.
type Kind int

const (
	KindTransactions Kind = iota
	KindAnomalies
)

func (k Kind) String() string {
	switch k {
	case KindTransactions:
		return "transactions"
	case KindAnomalies:
		return "anomalies"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Table is a header plus string cells, the shape every file source produces
// before typed decoding.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

var headerAliases = map[string]string{
	"reconstruction_error": FieldReconstructionError,
	"amount":               FieldAmount,
	"transaction_amount":   FieldAmount,
	"merchant_name":        FieldMerchantName,
	"mcc_description":      FieldMCCDescription,
	"merchant_zip":         FieldMerchantZip,
	"transaction_date":     FieldDate,
	"date":                 FieldDate,
	"transaction id":       FieldAnomalyID,
	"id":                   FieldAnomalyID,
}

// index maps canonical column names to their position in the header.
func (t *Table) index(kind Kind) map[string]int {
	idx := make(map[string]int, len(t.Header))
	for i, h := range t.Header {
		name := normalizeHeader(h)
		if alias, ok := headerAliases[name]; ok {
			name = alias
		}
		// Both tables accept either spelling of the row identifier.
		if name == FieldAnomalyID || name == FieldTransactionID {
			if kind == KindTransactions {
				name = FieldTransactionID
			} else {
				name = FieldAnomalyID
			}
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}
	return idx
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// DecodeTransactions converts a raw table into typed transaction rows.
// Absent columns are recorded, not rejected; callers that need them fail
// with a MissingColumnError via Transactions.Require.
func DecodeTransactions(t *Table, opt Options) (Transactions, error) {
	idx := t.index(KindTransactions)
	present := make(map[string]bool, len(idx))
	col := func(name string) int {
		if i, ok := idx[name]; ok {
			present[name] = true
			return i
		}
		return -1
	}
	iAmount, iName, iDesc := col(FieldAmount), col(FieldMerchantName), col(FieldMCCDescription)
	iMCC, iZip, iRegion := col(FieldMCC), col(FieldMerchantZip), col(FieldRegion)
	iDate, iID := col(FieldDate), col(FieldTransactionID)

	num := func(row []string, i int, r int, name string) (float64, error) {
		v, ok := parseNumeric(cell(row, i), opt)
		if !ok {
			return 0, fmt.Errorf("%s row %d: column %q: not a number: %q", t.Name, r+1, name, cell(row, i))
		}
		return v, nil
	}

	rows := make([]Transaction, 0, len(t.Rows))
	for r, row := range t.Rows {
		amount, err := num(row, iAmount, r, FieldAmount)
		if err != nil {
			return Transactions{}, err
		}
		mcc, err := num(row, iMCC, r, FieldMCC)
		if err != nil {
			return Transactions{}, err
		}
		zip, err := num(row, iZip, r, FieldMerchantZip)
		if err != nil {
			return Transactions{}, err
		}
		rows = append(rows, Transaction{
			ID:             cell(row, iID),
			Amount:         amount,
			MerchantName:   cell(row, iName),
			MCCDescription: cell(row, iDesc),
			MCC:            mcc,
			MerchantZip:    zip,
			Region:         cell(row, iRegion),
			Date:           cell(row, iDate),
		})
	}
	return Transactions{Rows: rows, columns: present}, nil
}

// DecodeAnomalies converts a raw table into typed anomaly rows.
// is_anomaly cells must be 0 or 1 when the column is present.
func DecodeAnomalies(t *Table, opt Options) (Anomalies, error) {
	idx := t.index(KindAnomalies)
	present := make(map[string]bool, len(idx))
	col := func(name string) int {
		if i, ok := idx[name]; ok {
			present[name] = true
			return i
		}
		return -1
	}
	iEns, iKM, iIso := col(FieldEnsembleScore), col(FieldKMeansScore), col(FieldIsoScore)
	iRecon, iFlag, iID := col(FieldReconstructionError), col(FieldIsAnomaly), col(FieldAnomalyID)

	num := func(row []string, i int, r int, name string) (float64, error) {
		v, ok := parseNumeric(cell(row, i), opt)
		if !ok {
			return 0, fmt.Errorf("%s row %d: column %q: not a number: %q", t.Name, r+1, name, cell(row, i))
		}
		return v, nil
	}

	rows := make([]Anomaly, 0, len(t.Rows))
	for r, row := range t.Rows {
		var a Anomaly
		var err error
		if a.EnsembleScore, err = num(row, iEns, r, FieldEnsembleScore); err != nil {
			return Anomalies{}, err
		}
		if a.KMeansScoreNorm, err = num(row, iKM, r, FieldKMeansScore); err != nil {
			return Anomalies{}, err
		}
		if a.IsoScoreNorm, err = num(row, iIso, r, FieldIsoScore); err != nil {
			return Anomalies{}, err
		}
		if a.ReconstructionError, err = num(row, iRecon, r, FieldReconstructionError); err != nil {
			return Anomalies{}, err
		}
		if iFlag >= 0 {
			flag, ok := parseFlag(cell(row, iFlag))
			if !ok {
				return Anomalies{}, fmt.Errorf("%s row %d: column %q must be 0 or 1, got %q", t.Name, r+1, FieldIsAnomaly, cell(row, iFlag))
			}
			a.IsAnomaly = flag
		}
		a.ID = cell(row, iID)
		rows = append(rows, a)
	}
	return Anomalies{Rows: rows, columns: present}, nil
}
