package render

import (
	"context"
	"fmt"
	"time"

	"github.com/KaramelBytes/fraudlens-cli/internal/logger"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"go.uber.org/multierr"
)

// Result is the outcome of one chart in a batch.
type Result struct {
	Chart    Chart
	Path     string
	Err      error
	Duration time.Duration
}

// Batch renders each chart independently. A failing or panicking chart does
// not stop the others; Batch returns every result in the order requested and
// the combined error of the failures. With parallel set, charts are drawn
// concurrently since they only share read-only inputs and write distinct files.
func (r *Renderer) Batch(ctx context.Context, charts []Chart, in Input, parallel bool) ([]Result, error) {
	log := logger.FromContext(ctx)
	results := make([]Result, len(charts))
	run := func(i int) {
		c := charts[i]
		results[i] = Result{Chart: c}
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			return
		}
		start := time.Now()
		var pc panics.Catcher
		pc.Try(func() {
			results[i].Path, results[i].Err = r.Render(c, in)
		})
		if rec := pc.Recovered(); rec != nil {
			results[i].Err = rec.AsError()
		}
		results[i].Duration = time.Since(start)
		ev := log.Debug()
		if results[i].Err != nil {
			ev = log.Warn().Err(results[i].Err)
		}
		ev.Str("chart", string(c)).Str("path", results[i].Path).Dur("took", results[i].Duration).Msg("render chart")
	}

	if parallel {
		var wg conc.WaitGroup
		for i := range charts {
			i := i
			wg.Go(func() { run(i) })
		}
		wg.Wait()
	} else {
		for i := range charts {
			run(i)
		}
	}

	var errs error
	for _, res := range results {
		if res.Err != nil {
			errs = multierr.Append(errs, &ChartError{Chart: res.Chart, Err: res.Err})
		}
	}
	return results, errs
}

// ChartError names the chart that failed.
type ChartError struct {
	Chart Chart
	Err   error
}

func (e *ChartError) Error() string { return fmt.Sprintf("%s: %v", e.Chart, e.Err) }

func (e *ChartError) Unwrap() error { return e.Err }
