package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// GroupPair holds one scalar per anomaly group.
type GroupPair struct {
	Anomalous float64
	Normal    float64
}

// NumSummary describes the distribution of a numeric field within one group.
type NumSummary struct {
	Count                          int
	Min, Q1, Median, Q3, Max, Mean float64
}

// GroupStats holds a NumSummary per anomaly group.
type GroupStats struct {
	Anomalous NumSummary
	Normal    NumSummary
}

// GroupValues splits the non-missing values of a numeric field by is_anomaly.
// Either slice may be empty.
func GroupValues(t dataset.Transactions, a dataset.Anomalies, field string) (anomalous, normal []float64, err error) {
	if err := checkNumeric(t, field); err != nil {
		return nil, nil, err
	}
	if err := Align(t, a); err != nil {
		return nil, nil, err
	}
	for i, tx := range t.Rows {
		v, _ := tx.Numeric(field)
		if math.IsNaN(v) {
			continue
		}
		if a.Rows[i].Flagged() {
			anomalous = append(anomalous, v)
		} else {
			normal = append(normal, v)
		}
	}
	return anomalous, normal, nil
}

func nonEmptyGroups(t dataset.Transactions, a dataset.Anomalies, field string) ([]float64, []float64, error) {
	an, no, err := GroupValues(t, a, field)
	if err != nil {
		return nil, nil, err
	}
	if len(an) == 0 {
		return nil, nil, &EmptyGroupError{Group: GroupAnomalous, Field: field}
	}
	if len(no) == 0 {
		return nil, nil, &EmptyGroupError{Group: GroupNormal, Field: field}
	}
	return an, no, nil
}

// GroupedMean returns the mean of a numeric field for anomalous and normal rows.
// It fails with EmptyGroupError when either group has no values.
func GroupedMean(t dataset.Transactions, a dataset.Anomalies, field string) (GroupPair, error) {
	an, no, err := nonEmptyGroups(t, a, field)
	if err != nil {
		return GroupPair{}, fmt.Errorf("grouped mean: %w", err)
	}
	return GroupPair{Anomalous: stat.Mean(an, nil), Normal: stat.Mean(no, nil)}, nil
}

// GroupedMedian returns the median of a numeric field for anomalous and normal rows.
func GroupedMedian(t dataset.Transactions, a dataset.Anomalies, field string) (GroupPair, error) {
	an, no, err := nonEmptyGroups(t, a, field)
	if err != nil {
		return GroupPair{}, fmt.Errorf("grouped median: %w", err)
	}
	return GroupPair{Anomalous: Median(an), Normal: Median(no)}, nil
}

// GroupSummaries returns distribution summaries of a numeric field per group.
func GroupSummaries(t dataset.Transactions, a dataset.Anomalies, field string) (GroupStats, error) {
	an, no, err := nonEmptyGroups(t, a, field)
	if err != nil {
		return GroupStats{}, fmt.Errorf("group summaries: %w", err)
	}
	return GroupStats{Anomalous: summarize(an), Normal: summarize(no)}, nil
}

// Median returns the linearly interpolated median of vals, NaN when empty.
func Median(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	return quantile(cp, 0.5)
}

func summarize(vals []float64) NumSummary {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	return NumSummary{
		Count:  len(cp),
		Min:    cp[0],
		Q1:     quantile(cp, 0.25),
		Median: quantile(cp, 0.5),
		Q3:     quantile(cp, 0.75),
		Max:    cp[len(cp)-1],
		Mean:   stat.Mean(cp, nil),
	}
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
