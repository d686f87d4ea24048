// Package main provides the protgraph command-line tool: it turns SwissProt
// entries into peptide graphs, exports them, and writes per-protein
// statistics.
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/protgraph/internal/digest"
	"github.com/inodb/protgraph/internal/feature"
	"github.com/inodb/protgraph/internal/mass"
	"github.com/inodb/protgraph/internal/pipeline"
	"github.com/inodb/protgraph/internal/stats"
	"github.com/inodb/protgraph/internal/weights"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var errUsage = errors.New("usage error")

func main() {
	os.Exit(run())
}

func run() int {
	root := newRootCmd()
	root.AddCommand(newConfigCmd())

	if err := root.Execute(); err != nil {
		if errors.Is(err, errUsage) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "protgraph [flags] <swissprot-file>...",
		Short:   "Generate peptide graphs from SwissProt entries",
		Long:    "protgraph builds a directed acyclic peptide graph per protein entry,\napplies sequence variation and digestion, exports the graphs and collects\nper-protein statistics.",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Example: `  # Graphs plus statistics for every entry, tryptic digestion
  protgraph swissprot.dat

  # Count paths binned by miscleavages, eight workers
  protgraph --calc_num_possibilities_miscleavages --num_of_processes 8 swissprot.dat

  # Export GraphML files and a Postgres nodes/edges store
  protgraph --export_graphml --export_postgres swissprot.dat.gz`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 {
				return fmt.Errorf("at least one input file is required: %w", errUsage)
			}
			for _, path := range args {
				if _, err := os.Stat(path); err != nil {
					return fmt.Errorf("input file %s: %w", path, err)
				}
			}
			return nil
		},
		RunE:          runPipeline,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%v: %w", err, errUsage)
	})

	flags := cmd.Flags()

	flags.IntP("num_of_entries", "n", 0, "Total number of entries across all files, used for progress estimation")
	flags.String("exclude_accessions", "", "CSV file whose first column lists accessions to exclude")
	flags.Int("num_of_processes", 0, "Number of graph workers (default: CPUs minus one for the reader)")

	flags.Bool("verify_graph", false, "Check DAG, parallel-edge and reachability invariants of every generated graph")

	flags.Bool("skip_isoforms", false, "Do not apply VAR_SEQ features (isoforms)")
	flags.Bool("skip_variants", false, "Do not apply VARIANT features")
	flags.Bool("skip_init_met", false, "Do not apply initiator-methionine removal")
	flags.Bool("skip_signal", false, "Do not apply signal-peptide cleavage")

	flags.StringP("digestion", "d", "trypsin", "Digestion mode: trypsin, full or skip")
	flags.Bool("no_merge", false, "Skip merging chains of nodes into single nodes")
	flags.Bool("no_collapsing_edges", false, "Skip collapsing parallel edges with equal qualifiers")

	flags.Bool("annotate_mono_weights", false, "Annotate edges with monoisotopic weights")
	flags.Bool("annotate_avrg_weights", false, "Annotate edges with average weights")
	flags.Bool("annotate_mono_weight_to_end", false, "Annotate the minimum monoisotopic weight to the end node (implies mono weights)")
	flags.Bool("annotate_avrg_weight_to_end", false, "Annotate the minimum average weight to the end node (implies average weights)")
	flags.String("mass_dict_type", "int", "Mass dictionary representation: int or float")
	flags.Float64("mass_dict_factor", mass.DefaultFactor, "Scale factor applied to masses in int mode")

	flags.Bool("calc_num_possibilities", false, "Count all start-to-end paths")
	flags.Bool("calc_num_possibilities_miscleavages", false, "Count paths binned by number of miscleavages")
	flags.Bool("calc_num_possibilities_hops", false, "Count paths binned by number of hops")

	flags.StringP("output_csv", "o", "protein_graph_statistics.csv", "Statistics CSV output path (overwritten)")

	flags.StringArray("replace_aa", nil, "Residue replacement rule FROM:TO[,TO...]; repeatable")
	flags.String("replace_aa_file", "", "YAML file with residue replacement rules")

	flags.Bool("quiet", false, "Only log warnings and errors")

	addExportFlags(flags)

	cobra.OnInitialize(initConfig)
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	return cmd
}

// initConfig merges ~/.protgraph.yaml under the command-line flags.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".protgraph")
		viper.SetConfigType("yaml")
		_ = viper.ReadInConfig()
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(viper.GetBool("quiet"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	digestion, err := digest.ParseMode(viper.GetString("digestion"))
	if err != nil {
		return fmt.Errorf("%v: %w", err, errUsage)
	}
	massKind, err := mass.ParseKind(viper.GetString("mass_dict_type"))
	if err != nil {
		return fmt.Errorf("%v: %w", err, errUsage)
	}

	table, warnings := mass.NewTable(massKind, viper.GetFloat64("mass_dict_factor"))
	for _, w := range warnings {
		logger.Warn("mass table", zap.Error(w))
	}

	rules := feature.ReplacementRules{}
	if path := viper.GetString("replace_aa_file"); path != "" {
		rules, err = feature.LoadRulesFile(path)
		if err != nil {
			return err
		}
	}
	for _, rule := range viper.GetStringSlice("replace_aa") {
		if err := feature.ParseRule(rules, rule); err != nil {
			return fmt.Errorf("%v: %w", err, errUsage)
		}
	}

	exclude, err := loadExcludedAccessions(viper.GetString("exclude_accessions"))
	if err != nil {
		return err
	}

	weightModes := weights.Modes{
		Mono:      viper.GetBool("annotate_mono_weights"),
		Avrg:      viper.GetBool("annotate_avrg_weights"),
		MonoToEnd: viper.GetBool("annotate_mono_weight_to_end"),
		AvrgToEnd: viper.GetBool("annotate_avrg_weight_to_end"),
	}
	statOpts := stats.Options{
		NumPaths:      viper.GetBool("calc_num_possibilities"),
		Miscleavages:  viper.GetBool("calc_num_possibilities_miscleavages"),
		Hops:          viper.GetBool("calc_num_possibilities_hops"),
		FeatureOrigin: viper.GetBool("calc_num_possibilities"),
	}

	opts := pipeline.Options{
		Files:             args,
		TotalEntries:      viper.GetInt("num_of_entries"),
		ExcludeAccessions: exclude,
		NumWorkers:        viper.GetInt("num_of_processes"),
		Features: feature.Config{
			Isoforms: !viper.GetBool("skip_isoforms"),
			InitMet:  !viper.GetBool("skip_init_met"),
			Signal:   !viper.GetBool("skip_signal"),
			Variants: !viper.GetBool("skip_variants"),
		},
		ReplaceRules: rules,
		Digestion:    digestion,
		NoMerge:      viper.GetBool("no_merge"),
		NoCollapse:   viper.GetBool("no_collapsing_edges"),
		WeightModes:  weightModes,
		MassTable:    table,
		Stats:        statOpts,
		VerifyGraph:  viper.GetBool("verify_graph"),
		OutputCSV:    viper.GetString("output_csv"),
		NewExporters: exporterFactory(massKind, logger),
		Logger:       logger,
	}

	return pipeline.Run(cmd.Context(), opts)
}

func newLogger(quiet bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	if quiet {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

// loadExcludedAccessions reads the accessions in the first column of a CSV
// file.
func loadExcludedAccessions(path string) (map[string]bool, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open exclude file: %w", err)
	}
	defer f.Close()

	excluded := make(map[string]bool)
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	for {
		record, err := r.Read()
		if err == io.EOF {
			return excluded, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read exclude file %s: %w", path, err)
		}
		if len(record) > 0 && record[0] != "" {
			excluded[record[0]] = true
		}
	}
}
