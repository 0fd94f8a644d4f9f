// Package report formats the summary statistics of a detection run.
package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/KaramelBytes/fraudlens-cli/internal/analysis"
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
)

// Options controls which aggregates a Report includes.
type Options struct {
	TopRegions int
	// CorrFields enables the correlation section of the markdown report.
	CorrFields []string
}

// Report bundles the summary with the optional per-group and correlation detail.
type Report struct {
	Name       string
	Summary    *analysis.Summary
	Amounts    analysis.GroupStats
	AmountsErr error
	Corr       *analysis.CorrMatrix
	CorrErr    error
	topRegions int
}

// Build computes a report. Only misaligned tables fail the build; every other
// aggregate failure is kept on the report and printed in place of its value.
func Build(name string, t dataset.Transactions, a dataset.Anomalies, opt Options) (*Report, error) {
	if opt.TopRegions <= 0 {
		opt.TopRegions = 5
	}
	s, err := analysis.Summarize(t, a, opt.TopRegions)
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	r := &Report{Name: name, Summary: s, topRegions: opt.TopRegions}
	r.Amounts, r.AmountsErr = analysis.GroupSummaries(t, a, dataset.FieldAmount)
	if len(opt.CorrFields) > 0 {
		r.Corr, r.CorrErr = analysis.CorrelationMatrix(t, opt.CorrFields)
	}
	return r, nil
}

// WriteText prints the plain summary.
func (r *Report) WriteText(w io.Writer) error {
	s := r.Summary
	var b strings.Builder
	b.WriteString("\nSummary Statistics of Detected Anomalies:\n")
	fmt.Fprintf(&b, "Total number of anomalies detected: %d\n", s.Anomalies)
	fmt.Fprintf(&b, "Percentage of transactions flagged as anomalies: %.2f%%\n", s.Percent)
	fmt.Fprintf(&b, "\nTop %d regions with most anomalies:\n", r.topRegions)
	if s.RegionErr != nil {
		fmt.Fprintf(&b, "n/a (%v)\n", s.RegionErr)
	} else {
		width := 0
		for _, rc := range s.TopRegions {
			width = max(width, len(label(rc.Value)))
		}
		for _, rc := range s.TopRegions {
			fmt.Fprintf(&b, "%-*s  %d\n", width, label(rc.Value), rc.Count)
		}
	}
	fmt.Fprintf(&b, "\nAverage transaction amount of anomalies: %s\n", money(s.MeanAmount.Anomalous, s.MeanErr))
	fmt.Fprintf(&b, "Average transaction amount of normal transactions: %s\n", money(s.MeanAmount.Normal, s.MeanErr))
	_, err := io.WriteString(w, b.String())
	return err
}

// Markdown renders the sectioned report.
func (r *Report) Markdown() string {
	s := r.Summary
	var b strings.Builder
	b.WriteString("[ANOMALY SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("Inputs: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Transactions: %d\n", s.Transactions))
	b.WriteString(fmt.Sprintf("Anomalies: %d (%.2f%%)\n", s.Anomalies, s.Percent))

	b.WriteString("\n[TOP REGIONS]\n")
	switch {
	case s.RegionErr != nil:
		b.WriteString(fmt.Sprintf("n/a (%v)\n", s.RegionErr))
	case len(s.TopRegions) == 0:
		b.WriteString("(none)\n")
	default:
		for _, rc := range s.TopRegions {
			b.WriteString(fmt.Sprintf("- %s: %d\n", label(rc.Value), rc.Count))
		}
	}

	b.WriteString("\n[TRANSACTION AMOUNT]\n")
	if r.AmountsErr != nil {
		b.WriteString(fmt.Sprintf("n/a (%v)\n", r.AmountsErr))
	} else {
		writeGroup(&b, analysis.GroupAnomalous, r.Amounts.Anomalous)
		writeGroup(&b, analysis.GroupNormal, r.Amounts.Normal)
	}

	if r.Corr != nil || r.CorrErr != nil {
		b.WriteString("\n[CORRELATIONS]\n")
		if r.CorrErr != nil {
			b.WriteString(fmt.Sprintf("n/a (%v)\n", r.CorrErr))
		} else {
			// Strongest pairs first; undefined ones follow in matrix order.
			for _, pc := range r.Corr.TopPairs(0) {
				b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.2f (n=%d)\n", pc.A, pc.B, pc.R, pc.N))
			}
			n := len(r.Corr.Columns)
			for i := 0; i < n; i++ {
				for j := i + 1; j < n; j++ {
					if math.IsNaN(r.Corr.At(i, j)) {
						b.WriteString(fmt.Sprintf("- %s ~ %s: n/a (n=%d)\n", r.Corr.Columns[i], r.Corr.Columns[j], r.Corr.Obs[i][j]))
					}
				}
			}
		}
	}
	return b.String()
}

func writeGroup(b *strings.Builder, name string, s analysis.NumSummary) {
	b.WriteString(fmt.Sprintf("- %s (n=%d): mean %.2f, median %.2f, min %.2f, q1 %.2f, q3 %.2f, max %.2f\n",
		name, s.Count, s.Mean, s.Median, s.Min, s.Q1, s.Q3, s.Max))
}

func money(v float64, err error) string {
	if err != nil {
		return fmt.Sprintf("n/a (%v)", err)
	}
	return fmt.Sprintf("$%.2f", v)
}

func label(v string) string {
	if v == "" {
		return "(blank)"
	}
	return v
}
