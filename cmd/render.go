package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/fraudlens-cli/internal/manifest"
	"github.com/KaramelBytes/fraudlens-cli/internal/render"
	"github.com/KaramelBytes/fraudlens-cli/internal/report"
	"github.com/spf13/cobra"
)

var (
	rndOut        string
	rndOnly       []string
	rndThreshold  float64
	rndTopK       int
	rndBuckets    int
	rndTopCats    int
	rndDPI        int
	rndParallel   bool
	rndNoSummary  bool
	rndNoManifest bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the fraud-detection charts and print the anomaly summary",
	Long: `Render writes the overview, temporal, merchant category, correlation and boxplot charts
into the output directory, overwriting files of the same name. Every chart is attempted even
when another fails; the command exits with an error after the batch if any chart failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		c := settings()
		f := cmd.Flags()

		out := c.OutputDir
		if f.Changed("out") {
			out = rndOut
		}
		r := render.New(out)
		r.Style.DPI = c.DPI
		r.Params.Threshold = c.Threshold
		r.Params.TopK = c.TopK
		r.Params.BucketCount = c.BucketCount
		r.Params.TopCategories = c.TopCategories
		if f.Changed("dpi") {
			if rndDPI <= 0 {
				return fmt.Errorf("--dpi must be > 0")
			}
			r.Style.DPI = rndDPI
		}
		if f.Changed("threshold") {
			r.Params.Threshold = rndThreshold
		}
		if f.Changed("top-k") {
			if rndTopK < 0 {
				return fmt.Errorf("--top-k must be >= 0")
			}
			r.Params.TopK = rndTopK
		}
		if f.Changed("buckets") {
			if rndBuckets <= 0 {
				return fmt.Errorf("--buckets must be > 0")
			}
			r.Params.BucketCount = rndBuckets
		}
		if f.Changed("top-categories") {
			if rndTopCats <= 0 {
				return fmt.Errorf("--top-categories must be > 0")
			}
			r.Params.TopCategories = rndTopCats
		}
		parallel := c.Parallel
		if f.Changed("parallel") {
			parallel = rndParallel
		}

		charts := render.AllCharts()
		if len(rndOnly) > 0 {
			only, err := render.ParseCharts(rndOnly)
			if err != nil {
				return err
			}
			charts = only
		}

		in, err := loadInputs(ctx, cmd)
		if err != nil {
			return err
		}

		m := manifest.New(out, manifest.Inputs{Transactions: inTransactions, Anomalies: inAnomalies}, manifest.Settings{
			Threshold:     r.Params.Threshold,
			TopK:          r.Params.TopK,
			BucketCount:   r.Params.BucketCount,
			TopCategories: r.Params.TopCategories,
			DPI:           r.Style.DPI,
			Parallel:      parallel,
		})

		w := cmd.OutOrStdout()
		results, batchErr := r.Batch(ctx, charts, in, parallel)
		for _, res := range results {
			m.Record(string(res.Chart), res.Path, res.Err, res.Duration)
			if res.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ %s: %v\n", res.Chart, res.Err)
				continue
			}
			fmt.Fprintf(w, "✓ %s → %s\n", res.Chart, res.Path)
		}
		if !rndNoManifest {
			if err := m.Save(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: failed to write manifest: %v\n", err)
			} else {
				fmt.Fprintf(w, "✓ Manifest: %s\n", filepath.Clean(m.Path()))
			}
		}

		if !rndNoSummary {
			rep, err := report.Build("", in.Transactions, in.Anomalies, report.Options{TopRegions: c.TopRegions})
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "✗ summary: %v\n", err)
			} else if err := rep.WriteText(w); err != nil {
				return err
			}
		}

		if batchErr != nil {
			return fmt.Errorf("%d of %d charts failed", m.Failed(), len(charts))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
	addInputFlags(renderCmd)
	renderCmd.Flags().StringVarP(&rndOut, "out", "o", "", "output directory (overrides config output_dir)")
	renderCmd.Flags().StringSliceVar(&rndOnly, "only", nil, "render only these charts: overview,temporal,mcc,correlation,boxplot")
	renderCmd.Flags().Float64Var(&rndThreshold, "threshold", 0, "anomaly threshold drawn on the score histogram")
	renderCmd.Flags().IntVar(&rndTopK, "top-k", 0, "number of top anomalies by amount")
	renderCmd.Flags().IntVar(&rndBuckets, "buckets", 0, "number of time buckets in the temporal chart")
	renderCmd.Flags().IntVar(&rndTopCats, "top-categories", 0, "number of merchant categories in the mcc chart")
	renderCmd.Flags().IntVar(&rndDPI, "dpi", 0, "image resolution in dots per inch")
	renderCmd.Flags().BoolVar(&rndParallel, "parallel", false, "render charts concurrently")
	renderCmd.Flags().BoolVar(&rndNoSummary, "no-summary", false, "skip the printed summary")
	renderCmd.Flags().BoolVar(&rndNoManifest, "no-manifest", false, "do not write manifest.json")
}
