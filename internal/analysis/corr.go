package analysis

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// DefaultCorrelationFields are the numeric transaction fields correlated by the heatmap.
var DefaultCorrelationFields = []string{dataset.FieldAmount, dataset.FieldMCC, dataset.FieldMerchantZip}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric fields.
// Off-diagonal entries are NaN when fewer than two complete pairs exist or a
// field is constant over the complete pairs.
type CorrMatrix struct {
	Columns []string
	Values  *mat.SymDense
	// Obs[i][j] is the number of rows with both fields present.
	Obs [][]int
}

// PairCorr is a simple correlation pair summary.
type PairCorr struct {
	A, B string
	R    float64
	N    int
}

// At returns the correlation between Columns[i] and Columns[j].
func (m *CorrMatrix) At(i, j int) float64 { return m.Values.At(i, j) }

// CorrelationMatrix computes pairwise-complete Pearson correlations between
// the given numeric fields of t. The diagonal is 1.
func CorrelationMatrix(t dataset.Transactions, fields []string) (*CorrMatrix, error) {
	if len(fields) == 0 {
		return nil, errors.New("correlation: no fields requested")
	}
	cols := make([][]float64, len(fields))
	for i, f := range fields {
		if err := checkNumeric(t, f); err != nil {
			return nil, fmt.Errorf("correlation: %w", err)
		}
		cols[i] = make([]float64, len(t.Rows))
		for r, tx := range t.Rows {
			cols[i][r], _ = tx.Numeric(f)
		}
	}

	n := len(fields)
	vals := mat.NewSymDense(n, nil)
	obs := make([][]int, n)
	for i := range obs {
		obs[i] = make([]int, n)
	}
	for i := 0; i < n; i++ {
		vals.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			r, cnt := pairwisePearson(cols[i], cols[j])
			vals.SetSym(i, j, r)
			obs[i][j], obs[j][i] = cnt, cnt
		}
		obs[i][i] = countPresent(cols[i])
	}
	return &CorrMatrix{Columns: append([]string(nil), fields...), Values: vals, Obs: obs}, nil
}

func pairwisePearson(x, y []float64) (float64, int) {
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for k := range x {
		if math.IsNaN(x[k]) || math.IsNaN(y[k]) {
			continue
		}
		xs = append(xs, x[k])
		ys = append(ys, y[k])
	}
	if len(xs) < 2 {
		return math.NaN(), len(xs)
	}
	r := stat.Correlation(xs, ys, nil)
	if math.IsInf(r, 0) {
		return math.NaN(), len(xs)
	}
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r, len(xs)
}

func countPresent(x []float64) int {
	n := 0
	for _, v := range x {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// TopPairs lists off-diagonal pairs by descending |r|, skipping undefined ones.
func (m *CorrMatrix) TopPairs(limit int) []PairCorr {
	var pairs []PairCorr
	n := len(m.Columns)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := m.At(i, j)
			if math.IsNaN(r) {
				continue
			}
			pairs = append(pairs, PairCorr{A: m.Columns[i], B: m.Columns[j], R: r, N: m.Obs[i][j]})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return math.Abs(pairs[i].R) > math.Abs(pairs[j].R)
	})
	if limit > 0 && len(pairs) > limit {
		pairs = pairs[:limit]
	}
	return pairs
}
