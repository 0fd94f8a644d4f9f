package dataset

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
	"github.com/xuri/excelize/v2"
)

const transactionsCSV = "Transaction Amount,Merchant Name,MCC Description,MCC,Merchant Zip,Region,Transaction Date\n" +
	"10.50,Cafe Uno,Eating Places,5812,10001,East,2024-01-03\n" +
	"\"1,250.00\",Jet Air,Airlines,4511,94105,West,2024-01-05 14:30:00\n" +
	",Grocer,Grocery Stores,5411,,South,01/07/2024\n"

const anomaliesCSV = "ensemble_score,kmeans_score_norm,iso_score_norm,reconstruction_error,is_anomaly\n" +
	"0.12,0.1,0.2,0.01,0\n" +
	"0.91,0.8,0.95,0.4,1\n" +
	"0.33,0.3,0.35,0.05,0.0\n"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadTransactionsCSV(t *testing.T) {
	p := writeFile(t, "tx.csv", transactionsCSV)
	tx, err := LoadTransactions(p, DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tx.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", tx.Len())
	}
	if got := tx.Rows[1].Amount; got != 1250 {
		t.Fatalf("thousands separator not handled: %v", got)
	}
	if !math.IsNaN(tx.Rows[2].Amount) || !math.IsNaN(tx.Rows[2].MerchantZip) {
		t.Fatalf("empty numeric cells should be NaN: %+v", tx.Rows[2])
	}
	if tx.Rows[0].MCCDescription != "Eating Places" || tx.Rows[1].Region != "West" {
		t.Fatalf("unexpected text fields: %+v", tx.Rows[:2])
	}
	if tx.HasIDs() {
		t.Fatalf("no id column, HasIDs should be false")
	}
	if err := tx.Require(FieldAmount, FieldDate); err != nil {
		t.Fatalf("require: %v", err)
	}
}

func TestLoadAnomaliesCSV(t *testing.T) {
	p := writeFile(t, "scores.csv", anomaliesCSV)
	an, err := LoadAnomalies(p, DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if an.Len() != 3 || an.Flagged() != 1 {
		t.Fatalf("unexpected rows/flags: len=%d flagged=%d", an.Len(), an.Flagged())
	}
	if an.Rows[1].ReconstructionError != 0.4 {
		t.Fatalf("reconstruction_error alias not mapped: %+v", an.Rows[1])
	}
}

func TestDecodeAnomaliesRejectsBadFlag(t *testing.T) {
	p := writeFile(t, "scores.csv", "ensemble_score,is_anomaly\n0.5,2\n")
	_, err := LoadAnomalies(p, DefaultOptions())
	if err == nil || !strings.Contains(err.Error(), "must be 0 or 1") {
		t.Fatalf("expected flag error, got %v", err)
	}
}

func TestMissingColumnIsDeferred(t *testing.T) {
	p := writeFile(t, "tx.csv", "transaction amount,region\n10,East\n")
	tx, err := LoadTransactions(p, DefaultOptions())
	if err != nil {
		t.Fatalf("load should tolerate absent columns: %v", err)
	}
	err = tx.Require(FieldAmount, FieldMCC)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	var mc *MissingColumnError
	if !errors.As(err, &mc) || mc.Column != FieldMCC {
		t.Fatalf("expected missing mcc column, got %v", err)
	}
}

func TestTSVAndSemicolonDelimiters(t *testing.T) {
	p := writeFile(t, "tx.tsv", "transaction amount\tregion\n12,5\tNorth\n")
	tx, err := LoadTransactions(p, DefaultOptions())
	if err != nil {
		t.Fatalf("load tsv: %v", err)
	}
	if tx.Rows[0].Amount != 12.5 {
		t.Fatalf("decimal comma not handled: %v", tx.Rows[0].Amount)
	}

	p = writeFile(t, "tx.csv", "transaction amount;region\n7;South\n")
	opt := DefaultOptions()
	opt.Delimiter = ';'
	tx, err = LoadTransactions(p, opt)
	if err != nil {
		t.Fatalf("load semicolon: %v", err)
	}
	if tx.Rows[0].Region != "South" {
		t.Fatalf("unexpected region %q", tx.Rows[0].Region)
	}
}

func TestUnsupportedFormat(t *testing.T) {
	p := writeFile(t, "tx.json", "{}")
	if _, err := LoadTransactions(p, DefaultOptions()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"2024-01-03":           "2024-01-03",
		"2024-01-05 14:30:00":  "2024-01-05",
		"01/07/2024":           "2024-01-07",
		"2024-02-01T08:00:00Z": "2024-02-01",
	}
	for in, want := range cases {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("%q: %v", in, err)
		}
		if got.Format("2006-01-02") != want {
			t.Fatalf("%q: got %s want %s", in, got.Format("2006-01-02"), want)
		}
	}
	for _, bad := range []string{"", "yesterday", "2024-13-45"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet("Scores"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	rows := [][]interface{}{
		{"ensemble_score", "kmeans_score_norm", "iso_score_norm", "recon_error", "is_anomaly", "transaction_id"},
		{0.2, 0.1, 0.3, 0.02, 0, "t1"},
		{0.9, 0.7, 0.8, 0.5, 1, "t2"},
	}
	for i, r := range rows {
		cellName, _ := excelize.CoordinatesToCellName(1, i+1)
		row := r
		if err := f.SetSheetRow("Scores", cellName, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	p := filepath.Join(t.TempDir(), "scores.xlsx")
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save: %v", err)
	}

	opt := DefaultOptions()
	opt.SheetName = "scores"
	an, err := LoadAnomalies(p, opt)
	if err != nil {
		t.Fatalf("load xlsx: %v", err)
	}
	if an.Len() != 2 || an.Flagged() != 1 || !an.HasIDs() {
		t.Fatalf("unexpected anomalies: %+v", an.Rows)
	}
	if an.Rows[1].ID != "t2" || an.Rows[1].EnsembleScore != 0.9 {
		t.Fatalf("unexpected row: %+v", an.Rows[1])
	}

	opt.SheetName = "missing"
	if _, err := LoadAnomalies(p, opt); err == nil || !strings.Contains(err.Error(), "Available sheets") {
		t.Fatalf("expected sheet-not-found error, got %v", err)
	}
}

type parquetAnomalyRow struct {
	ID                  *string  `parquet:"name=transaction_id, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	EnsembleScore       *float64 `parquet:"name=ensemble_score, type=DOUBLE, repetitiontype=OPTIONAL"`
	KMeansScoreNorm     *float64 `parquet:"name=kmeans_score_norm, type=DOUBLE, repetitiontype=OPTIONAL"`
	IsoScoreNorm        *float64 `parquet:"name=iso_score_norm, type=DOUBLE, repetitiontype=OPTIONAL"`
	ReconstructionError *float64 `parquet:"name=reconstruction_error, type=DOUBLE, repetitiontype=OPTIONAL"`
	IsAnomaly           *int64   `parquet:"name=is_anomaly, type=INT64, repetitiontype=OPTIONAL"`
}

// No region column; names keep the pipeline's spaced spelling.
type parquetTransactionRow struct {
	Amount *float64 `parquet:"name=Transaction Amount, type=DOUBLE, repetitiontype=OPTIONAL"`
	Name   *string  `parquet:"name=Merchant Name, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	MCC    *int64   `parquet:"name=MCC, type=INT64, repetitiontype=OPTIONAL"`
	Date   *int32   `parquet:"name=Transaction Date, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
}

func writeParquet[T any](t *testing.T, name string, rows []T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	fw, err := local.NewLocalFileWriter(p)
	if err != nil {
		t.Fatalf("open writer: %v", err)
	}
	pw, err := writer.NewParquetWriter(fw, new(T), 1)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		t.Fatalf("write stop: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return p
}

func TestLoadParquet(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	i := func(v int64) *int64 { return &v }
	s := func(v string) *string { return &v }
	p := writeParquet(t, "scores.parquet", []parquetAnomalyRow{
		{ID: s("a"), EnsembleScore: f(0.1), KMeansScoreNorm: f(0.2), IsoScoreNorm: f(0.3), ReconstructionError: f(0.01), IsAnomaly: i(0)},
		{ID: s("b"), EnsembleScore: f(0.95), KMeansScoreNorm: f(0.9), IsoScoreNorm: nil, ReconstructionError: f(0.7), IsAnomaly: i(1)},
	})

	an, err := LoadAnomalies(p, DefaultOptions())
	if err != nil {
		t.Fatalf("load parquet: %v", err)
	}
	if an.Len() != 2 || an.Flagged() != 1 {
		t.Fatalf("unexpected anomalies: %+v", an.Rows)
	}
	if !math.IsNaN(an.Rows[1].IsoScoreNorm) {
		t.Fatalf("null parquet value should decode to NaN, got %v", an.Rows[1].IsoScoreNorm)
	}
	if an.Rows[1].ID != "b" || an.Rows[1].ReconstructionError != 0.7 {
		t.Fatalf("unexpected row %+v", an.Rows[1])
	}
	if err := an.Require(AnomalyFields...); err != nil {
		t.Fatalf("all anomaly columns should be present: %v", err)
	}
}

func TestLoadParquetMissingColumn(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	i := func(v int64) *int64 { return &v }
	s := func(v string) *string { return &v }
	d := func(v int32) *int32 { return &v }
	p := writeParquet(t, "tx.parquet", []parquetTransactionRow{
		{Amount: f(12.5), Name: s("Cafe Uno"), MCC: i(5812), Date: d(19725)},
		{Amount: nil, Name: s("Jet Air"), MCC: i(4511), Date: d(19727)},
	})

	tx, err := LoadTransactions(p, DefaultOptions())
	if err != nil {
		t.Fatalf("load parquet: %v", err)
	}
	if tx.Len() != 2 {
		t.Fatalf("want 2 rows, got %d", tx.Len())
	}
	if err := tx.Require(FieldAmount, FieldMerchantName, FieldMCC, FieldDate); err != nil {
		t.Fatalf("written columns should be present: %v", err)
	}
	err = tx.Require(FieldRegion)
	var mc *MissingColumnError
	if !errors.Is(err, ErrMissingField) || !errors.As(err, &mc) || mc.Column != FieldRegion {
		t.Fatalf("want missing region column, got %v", err)
	}
	if tx.Has(FieldMerchantZip) {
		t.Fatal("merchant zip was never written")
	}
	r := tx.Rows[0]
	if r.Amount != 12.5 || r.MerchantName != "Cafe Uno" || r.MCC != 5812 || r.Date != "2024-01-03" {
		t.Fatalf("unexpected first row %+v", r)
	}
	if !math.IsNaN(tx.Rows[1].Amount) {
		t.Fatalf("null amount should be NaN, got %v", tx.Rows[1].Amount)
	}
}

func TestFieldAccessors(t *testing.T) {
	tx := Transaction{Amount: 5, MCC: 5411, MerchantZip: 10001, Region: "East", MerchantName: "A", MCCDescription: "Grocery"}
	if v, err := tx.Numeric(FieldMCC); err != nil || v != 5411 {
		t.Fatalf("numeric: %v %v", v, err)
	}
	if _, err := tx.Numeric("region"); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField for non-numeric field, got %v", err)
	}
	if v, err := tx.Category(FieldRegion); err != nil || v != "East" {
		t.Fatalf("category: %v %v", v, err)
	}
	if !(Anomaly{IsAnomaly: 1}).Flagged() || (Anomaly{}).Flagged() {
		t.Fatal("flagged should follow is_anomaly")
	}
}
