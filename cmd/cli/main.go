package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"crossfold/adapters/excel"
	"crossfold/adapters/memory"
	"crossfold/adapters/rng"
	"crossfold/app"
	"crossfold/domain/cv"
	"crossfold/internal/testkit"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[CLI] no .env file loaded: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "crossfold",
		Short: "Cross-validated complexity selection and held-out prediction",
	}

	rootCmd.AddCommand(
		newSelectCmd(),
		newRankCmd(),
		newDemoCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSelectCmd() *cobra.Command {
	var seed int64
	var foldCount, maxComplexity, workers int
	var aggregation, reportPath string
	var standardize bool

	cmd := &cobra.Command{
		Use:   "select [data-file] [response-column]",
		Short: "Run nested cross-validation on a supervised dataset",
		Long: `Select the model complexity by nested cross-validation and score
held-out predictions against the named response column.

The data file may be .xlsx or .csv with a header row; every column must
be numeric. The same seed always reproduces the same fold partition.

Example: crossfold select assays.xlsx potency --seed 42 --folds 5 --max-complexity 10`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cv.RunConfig{
				FoldCount:     foldCount,
				MaxComplexity: maxComplexity,
				Seed:          seed,
				Aggregation:   cv.Aggregation(aggregation),
				Standardize:   standardize,
				Workers:       workers,
			}
			return runSelect(cmd.Context(), args[0], args[1], cfg, reportPath)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().IntVar(&foldCount, "folds", 5, "Number of outer folds")
	cmd.Flags().IntVar(&maxComplexity, "max-complexity", 10, "Largest candidate complexity")
	cmd.Flags().StringVar(&aggregation, "aggregation", string(cv.AggregationPooled), "Statistic aggregation: pooled|per-fold-mean")
	cmd.Flags().BoolVar(&standardize, "standardize", true, "Standardize columns on training folds")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker budget (0 = number of CPUs)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write an .xlsx report to this path")

	return cmd
}

func runSelect(ctx context.Context, dataFile, responseColumn string, cfg cv.RunConfig, reportPath string) error {
	bundle, err := excel.NewDataReader(dataFile).Load(ctx, responseColumn)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	svc := app.NewSelectionService(memory.NewLedgerAdapter(), rng.NewAdapter())
	result, err := svc.Run(ctx, app.SelectionRequest{Bundle: bundle, Config: cfg})
	if err != nil {
		return fmt.Errorf("selection run failed: %w", err)
	}

	printSelectionResult(result, cfg)

	if reportPath != "" {
		writer := excel.NewReportWriter(reportPath)
		if err := writer.WriteSelectionReport(result.Manifest, result.Selections, result.EvalTables, result.Prediction); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("\n📄 Report written to %s\n", reportPath)
	}
	return nil
}

func printSelectionResult(result *app.SelectionResult, cfg cv.RunConfig) {
	fmt.Printf("\n📊 SELECTION RESULTS\n")
	fmt.Printf("Run ID: %s\n", result.RunID)
	fmt.Printf("Runtime: %dms\n", result.RuntimeMs)
	fmt.Printf("\nOuter Fold | Selected Complexity | Mean Error\n")
	for i, sel := range result.Selections {
		if containsFold(result.Prediction.DegenerateFolds, i+1) {
			fmt.Printf("%10d | %19s | %s\n", i+1, "-", "degenerate")
			continue
		}
		fmt.Printf("%10d | %19d | %.6f\n", i+1, sel.Complexity, sel.MeanError)
	}
	fmt.Printf("\nHeld-out predictions: %d\n", len(result.Prediction.Predictions))
	fmt.Printf("Correlation (%s): %.6f\n", cfg.Aggregation, result.Prediction.Statistic)
	if len(result.Prediction.DegenerateFolds) > 0 {
		fmt.Printf("⚠️  Degenerate folds excluded from the statistic: %v\n", result.Prediction.DegenerateFolds)
	}
}

func newRankCmd() *cobra.Command {
	var seed int64
	var rowFolds, colFolds, repetitions, maxComplexity, workers int
	var reportPath string

	cmd := &cobra.Command{
		Use:   "rank [data-file]",
		Short: "Select matrix rank by repeated bi-cross-validation",
		Long: `Estimate the effective rank of an unsupervised matrix by holding out
row-fold x column-fold blocks and scoring their reconstruction.

Example: crossfold rank spectra.csv --seed 42 --repetitions 10`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := cv.BCVConfig{
				RowFolds:      rowFolds,
				ColumnFolds:   colFolds,
				Repetitions:   repetitions,
				MaxComplexity: maxComplexity,
				Seed:          seed,
				Workers:       workers,
			}
			return runRank(cmd.Context(), args[0], cfg, reportPath)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 42, "Random seed for deterministic operations")
	cmd.Flags().IntVar(&rowFolds, "row-folds", 2, "Number of row folds")
	cmd.Flags().IntVar(&colFolds, "col-folds", 2, "Number of column folds")
	cmd.Flags().IntVar(&repetitions, "repetitions", 10, "Independent partition repetitions")
	cmd.Flags().IntVar(&maxComplexity, "max-complexity", 10, "Largest candidate rank")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker budget (0 = number of CPUs)")
	cmd.Flags().StringVar(&reportPath, "report", "", "Write an .xlsx report to this path")

	return cmd
}

func runRank(ctx context.Context, dataFile string, cfg cv.BCVConfig, reportPath string) error {
	bundle, err := excel.NewDataReader(dataFile).Load(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}

	svc := app.NewBCVService(memory.NewLedgerAdapter(), rng.NewAdapter())
	result, err := svc.Run(ctx, app.BCVRequest{Bundle: bundle, Config: cfg})
	if err != nil {
		return fmt.Errorf("rank selection failed: %w", err)
	}

	fmt.Printf("\n📊 RANK SELECTION RESULTS\n")
	fmt.Printf("Run ID: %s\n", result.RunID)
	fmt.Printf("Runtime: %dms\n", result.RuntimeMs)
	fmt.Printf("Selected rank: %d (mean reconstruction error %.6f)\n", result.Selection.Complexity, result.Selection.MeanError)
	fmt.Printf("\nComplexity | Mean Error\n")
	for c, m := range result.EvalTable.MeanByComplexity() {
		fmt.Printf("%10d | %.6f\n", c, m)
	}

	if reportPath != "" {
		writer := excel.NewReportWriter(reportPath)
		if err := writer.WriteRankReport(result.Manifest, result.Selection, result.EvalTable); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("\n📄 Report written to %s\n", reportPath)
	}
	return nil
}

func newDemoCmd() *cobra.Command {
	var seed int64
	var n, p, rank int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the full pipeline on a seeded synthetic dataset",
		Long: `Generate a low-rank synthetic dataset with a linear response and run
nested cross-validation on it end to end.

Example: crossfold demo --seed 1 --rows 60 --cols 13 --rank 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), n, p, rank, seed)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 1, "Random seed for data and folds")
	cmd.Flags().IntVar(&n, "rows", 60, "Observations to generate")
	cmd.Flags().IntVar(&p, "cols", 13, "Variables to generate")
	cmd.Flags().IntVar(&rank, "rank", 3, "True rank of the generated matrix")

	return cmd
}

func runDemo(ctx context.Context, n, p, rank int, seed int64) error {
	fmt.Printf("🔬 Generating %dx%d rank-%d dataset (seed %d)...\n", n, p, rank, seed)
	bundle, err := testkit.SupervisedBundle(n, p, rank, 0.1, seed)
	if err != nil {
		return fmt.Errorf("failed to generate data: %w", err)
	}

	cfg := cv.DefaultRunConfig(seed)
	svc := app.NewSelectionService(memory.NewLedgerAdapter(), rng.NewAdapter())
	result, err := svc.Run(ctx, app.SelectionRequest{Bundle: bundle, Config: cfg})
	if err != nil {
		return fmt.Errorf("demo run failed: %w", err)
	}

	printSelectionResult(result, cfg)
	return nil
}

func containsFold(folds []int, f int) bool {
	for _, v := range folds {
		if v == f {
			return true
		}
	}
	return false
}
