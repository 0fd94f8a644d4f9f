package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
)

func tables(flags []int) (dataset.Transactions, dataset.Anomalies) {
	amounts := []float64{10, 50, 30, 90}
	regions := []string{"North", "South", "North", "South"}
	txs := make([]dataset.Transaction, len(amounts))
	ans := make([]dataset.Anomaly, len(amounts))
	for i := range amounts {
		txs[i] = dataset.Transaction{Amount: amounts[i], Region: regions[i], MCC: float64(i), MerchantZip: float64(4 - i)}
		ans[i] = dataset.Anomaly{IsAnomaly: flags[i]}
	}
	return dataset.NewTransactions(txs), dataset.NewAnomalies(ans)
}

func TestWriteText(t *testing.T) {
	tx, an := tables([]int{0, 1, 0, 1})
	r, err := Build("", tx, an, Options{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"Summary Statistics of Detected Anomalies:",
		"Total number of anomalies detected: 2\n",
		"Percentage of transactions flagged as anomalies: 50.00%\n",
		"Top 5 regions with most anomalies:\nSouth  2\n",
		"Average transaction amount of anomalies: $70.00\n",
		"Average transaction amount of normal transactions: $20.00\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteTextEmptyGroup(t *testing.T) {
	tx, an := tables([]int{1, 1, 1, 1})
	r, err := Build("", tx, an, Options{})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	_ = r.WriteText(&buf)
	if !strings.Contains(buf.String(), "Average transaction amount of normal transactions: n/a (") {
		t.Fatalf("expected n/a mean:\n%s", buf.String())
	}
}

func TestBuildLengthMismatch(t *testing.T) {
	tx, an := tables([]int{0, 1, 0, 1})
	an.Rows = an.Rows[:3]
	if _, err := Build("", tx, an, Options{}); err == nil || !strings.Contains(err.Error(), "4 transactions vs 3") {
		t.Fatalf("expected length mismatch, got %v", err)
	}
}

func TestMarkdown(t *testing.T) {
	tx, an := tables([]int{0, 1, 0, 1})
	r, err := Build("tx.csv + scores.csv", tx, an, Options{TopRegions: 3, CorrFields: analysis.DefaultCorrelationFields})
	if err != nil {
		t.Fatal(err)
	}
	md := r.Markdown()
	for _, want := range []string{
		"[ANOMALY SUMMARY]",
		"Inputs: tx.csv + scores.csv",
		"Anomalies: 2 (50.00%)",
		"[TOP REGIONS]\n- South: 2",
		"- anomalous (n=2): mean 70.00",
		"[CORRELATIONS]",
		"- mcc ~ merchant zip: r=-1.00 (n=4)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
	strongest := strings.Index(md, "- mcc ~ merchant zip")
	weaker := strings.Index(md, "- transaction amount ~ mcc: r=0.83")
	if weaker < 0 || strongest > weaker {
		t.Errorf("correlations should be listed strongest first:\n%s", md)
	}
}

func TestMarkdownUndefinedCorrelationLast(t *testing.T) {
	tx, an := tables([]int{0, 1, 0, 1})
	for i := range tx.Rows {
		tx.Rows[i].MerchantZip = 7
	}
	r, err := Build("", tx, an, Options{CorrFields: analysis.DefaultCorrelationFields})
	if err != nil {
		t.Fatal(err)
	}
	md := r.Markdown()
	defined := strings.Index(md, "- transaction amount ~ mcc: r=0.83 (n=4)")
	undefined := strings.Index(md, "- mcc ~ merchant zip: n/a (n=4)")
	if defined < 0 || undefined < 0 || undefined < defined {
		t.Fatalf("undefined pairs should follow defined ones:\n%s", md)
	}
}
