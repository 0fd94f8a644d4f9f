package analysis

import (
	"github.com/KaramelBytes/fraudlens-cli/internal/dataset"
)

// Summary is the headline statistics of one detection run.
// RegionErr and MeanErr carry failures of those aggregates alone.
type Summary struct {
	Transactions int
	Anomalies    int
	Percent      float64
	TopRegions   []CategoryCount
	RegionErr    error
	MeanAmount   GroupPair
	MeanErr      error
}

// Summarize computes the summary report. Misaligned tables fail the whole
// report; a failing region count or group mean is recorded on the Summary.
func Summarize(t dataset.Transactions, a dataset.Anomalies, topRegions int) (*Summary, error) {
	anomalous, err := SelectAnomalous(t, a)
	if err != nil {
		return nil, err
	}
	s := &Summary{Transactions: t.Len(), Anomalies: anomalous.Len()}
	if s.Transactions > 0 {
		s.Percent = float64(s.Anomalies) / float64(s.Transactions) * 100
	}
	s.TopRegions, s.RegionErr = Frequencies(anomalous, dataset.FieldRegion, topRegions)
	s.MeanAmount, s.MeanErr = GroupedMean(t, a, dataset.FieldAmount)
	return s, nil
}
