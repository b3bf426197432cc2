package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"cartool/adapters/excel"
	"cartool/adapters/export"
	"cartool/adapters/postgres"
	"cartool/domain/perfusion"
	"cartool/domain/schema"
	"cartool/internal/config"
	"cartool/internal/pipeline"
	"cartool/internal/profiling"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] no .env file loaded: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "cartool",
		Short: "Clean and validate bioprocess experiment spreadsheets",
	}

	rootCmd.AddCommand(
		newUnmergeCmd(),
		newCleanCmd(),
		newValidateCmd(),
		newProfileCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newUnmergeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unmerge [workbook-in] [workbook-out]",
		Short: "Materialize merged cell ranges with their top-left value",
		Long: `Unmerge every merged cell range in the workbook and fill the covered
cells with the range's top-left value, writing the result to a new file.
The cleaning pipeline expects its input prepared this way.

Example: cartool unmerge data/interim/results.xlsx data/processed/results.xlsx`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return excel.UnmergeAndFill(args[0], args[1])
		},
	}
}

func newCleanCmd() *cobra.Command {
	var (
		sheetName  string
		outputFile string
		schemaFile string
		labelsFile string
		strict     bool
		noDerive   bool
		publish    bool
	)

	cmd := &cobra.Command{
		Use:   "clean [workbook]",
		Short: "Run the full cleaning pipeline over the perfusion sheet",
		Long: `Read the perfusion-mimick sheet from an unmerged workbook, normalize its
headers, fuse per-timepoint metric columns, resolve run/donor/date-range
information from the narrative Date column, derive auxiliary columns, cast
against the metadata schema, and write the cleaned CSV artifact.

Example: cartool clean data/processed/results.xlsx -o data/processed/perfusion_data.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg.Data.WorkbookFile = args[0]
			if sheetName != "" {
				cfg.Data.SheetName = sheetName
			}
			if outputFile != "" {
				cfg.Data.OutputFile = outputFile
			}
			if schemaFile != "" {
				cfg.Data.SchemaFile = schemaFile
			}
			if labelsFile != "" {
				cfg.Data.LabelsFile = labelsFile
			}
			if cmd.Flags().Changed("strict") {
				cfg.Pipeline.StrictSchema = strict
			}
			if noDerive {
				cfg.Pipeline.DeriveColumns = false
			}
			return runClean(cmd.Context(), cfg, publish)
		},
	}

	cmd.Flags().StringVar(&sheetName, "sheet", "", "sheet name (default from SHEET_NAME)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "cleaned CSV output path")
	cmd.Flags().StringVar(&schemaFile, "schema", "", "metadata schema JSON (default built-in)")
	cmd.Flags().StringVar(&labelsFile, "labels", "", "label vocabulary JSON (default built-in)")
	cmd.Flags().BoolVar(&strict, "strict", false, "abort on columns absent from the schema")
	cmd.Flags().BoolVar(&noDerive, "no-derive", false, "skip the derived-column stage")
	cmd.Flags().BoolVar(&publish, "publish", false, "publish cleaned runs to the warehouse (DATABASE_URL)")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var (
		schemaFile string
		strict     bool
	)

	cmd := &cobra.Command{
		Use:   "validate [cleaned-csv]",
		Short: "Re-validate a reviewed CSV artifact against the metadata schema",
		Long: `Load an already-cleaned (and possibly hand-reviewed) CSV artifact and cast
every column against the metadata schema, reporting coverage and coercion
problems. Runs the casting stage only.

Example: cartool validate data/processed/perfusion_data.csv --schema references/metadata.json --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(args[0], schemaFile, strict)
		},
	}

	cmd.Flags().StringVar(&schemaFile, "schema", "", "metadata schema JSON (default built-in)")
	cmd.Flags().BoolVar(&strict, "strict", false, "abort on columns absent from the schema")
	return cmd
}

func newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile [cleaned-csv]",
		Short: "Print descriptive statistics for the numeric columns of a cleaned artifact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProfile(args[0])
		},
	}
}

func runClean(ctx context.Context, cfg *config.Config, publish bool) error {
	opts, err := pipelineOptions(cfg)
	if err != nil {
		return err
	}

	reader := excel.NewGridReader(cfg.Data.WorkbookFile)
	grid, err := reader.ReadGrid(cfg.Data.SheetName)
	if err != nil {
		return err
	}

	// The fed-batch sheet ships in the same workbook; load it so missing or
	// renamed sheets surface now, even though only perfusion is cleaned yet
	if fedBatch, err := reader.ReadGrid(excel.FedBatchSheet); err != nil {
		log.Printf("[Clean] fed batch sheet skipped: %v", err)
	} else {
		log.Printf("[Clean] fed batch sheet loaded (%d rows), no cleaning defined for it", len(fedBatch))
	}

	result, err := pipeline.Run(grid, opts)
	if err != nil {
		return err
	}
	for _, diag := range result.Diagnostics {
		log.Printf("[Clean] warning: %s", diag)
	}

	if err := export.WriteTable(cfg.Data.OutputFile, result.Table); err != nil {
		return err
	}
	log.Printf("[Clean] cleaned data saved to %s, please review before continuing", cfg.Data.OutputFile)

	if publish {
		if !cfg.Database.Enabled {
			return fmt.Errorf("--publish requires DATABASE_URL to be set")
		}
		store, err := postgres.NewRunStore(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer store.Close()
		batchID, err := store.PublishTable(ctx, result.Table)
		if err != nil {
			return err
		}
		log.Printf("[Clean] published batch %s", batchID)
	}
	return nil
}

func runValidate(csvPath, schemaFile string, strict bool) error {
	t, err := export.ReadTable(csvPath)
	if err != nil {
		return err
	}

	s := schema.Default()
	if schemaFile != "" {
		if s, err = schema.Load(schemaFile); err != nil {
			return err
		}
	}

	coverage := schema.CoverageLenient
	if strict {
		coverage = schema.CoverageStrict
	}
	caster := schema.NewCaster(s, coverage)

	for _, w := range caster.ScanTimeSeries(t) {
		log.Printf("[Validate] warning: %s", w)
	}
	warnings, err := caster.Apply(t)
	for _, w := range warnings {
		log.Printf("[Validate] warning: %s", w)
	}
	if err != nil {
		return err
	}

	log.Printf("[Validate] %s conforms to the schema (%d rows, %d columns)", csvPath, t.NumRows(), t.NumCols())
	return nil
}

func runProfile(csvPath string) error {
	t, err := export.ReadTable(csvPath)
	if err != nil {
		return err
	}
	singles, series, err := profiling.SummarizeTable(t)
	if err != nil {
		return err
	}

	for _, s := range singles {
		printSummary(s)
	}
	for _, m := range series {
		fmt.Printf("%s over %d timepoint(s):\n", m.Base, len(m.Summaries))
		for _, s := range m.Summaries {
			printSummary(s)
		}
	}
	return nil
}

func printSummary(s profiling.ColumnSummary) {
	fmt.Printf("  %-24s n=%-4d missing=%-4d mean=%.4g sd=%.4g min=%.4g q25=%.4g median=%.4g q75=%.4g max=%.4g skew=%.3g kurt=%.3g\n",
		s.Column, s.Count, s.MissingCount, s.Mean, s.StdDev, s.Min, s.Q25, s.Median, s.Q75, s.Max, s.Skewness, s.Kurtosis)
}

func pipelineOptions(cfg *config.Config) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	opts.StrictSchema = cfg.Pipeline.StrictSchema
	opts.DeriveColumns = cfg.Pipeline.DeriveColumns

	if cfg.Data.LabelsFile != "" {
		labels, err := perfusion.LoadLabels(cfg.Data.LabelsFile)
		if err != nil {
			return opts, err
		}
		opts.Labels = labels
	}
	if cfg.Data.SchemaFile != "" {
		s, err := schema.Load(cfg.Data.SchemaFile)
		if err != nil {
			return opts, err
		}
		opts.Schema = s
	}
	return opts, nil
}
