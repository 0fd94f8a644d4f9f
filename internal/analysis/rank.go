package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
)

// CategoryCount is one entry of a frequency table.
type CategoryCount struct {
	Value string
	Count int
}

// TopK returns the k rows with the largest value of a numeric field, in
// descending order with ties kept in subset order. Rows whose value is
// missing are not ranked. If k exceeds the ranked rows, all of them are returned.
func TopK(s Subset, k int, field string) (Subset, error) {
	if k < 0 {
		return Subset{}, fmt.Errorf("top-k: k must be >= 0, got %d", k)
	}
	if err := checkNumeric(s.source, field); err != nil {
		return Subset{}, fmt.Errorf("top-k: %w", err)
	}
	type ranked struct {
		row Row
		v   float64
	}
	rs := make([]ranked, 0, len(s.Rows))
	for _, r := range s.Rows {
		v, _ := r.Numeric(field)
		if math.IsNaN(v) {
			continue
		}
		rs = append(rs, ranked{row: r, v: v})
	}
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].v > rs[j].v })
	if k < len(rs) {
		rs = rs[:k]
	}
	out := Subset{Rows: make([]Row, len(rs)), source: s.source}
	for i, r := range rs {
		out.Rows[i] = r.row
	}
	return out, nil
}

// Frequencies counts the values of a categorical field, most frequent first
// with ties in first-occurrence order. Empty cells count under "".
// limit <= 0 returns every category.
func Frequencies(s Subset, field string, limit int) ([]CategoryCount, error) {
	if err := s.source.Require(field); err != nil {
		return nil, fmt.Errorf("frequencies: %w", err)
	}
	if _, err := (dataset.Transaction{}).Category(field); err != nil {
		return nil, fmt.Errorf("frequencies: %w", err)
	}
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range s.Rows {
		v, _ := r.Category(field)
		if _, seen := counts[v]; !seen {
			order = append(order, v)
		}
		counts[v]++
	}
	out := make([]CategoryCount, len(order))
	for i, v := range order {
		out[i] = CategoryCount{Value: v, Count: counts[v]}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func checkNumeric(t dataset.Transactions, field string) error {
	if err := t.Require(field); err != nil {
		return err
	}
	_, err := (dataset.Transaction{}).Numeric(field)
	return err
}
