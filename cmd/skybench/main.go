// Command skybench benchmarks disk I/O for tabular astronomy data
// across delimited text, Arrow IPC and FITS.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/skybench/skybench/pkg/bench"
	"github.com/skybench/skybench/pkg/config"
	"github.com/skybench/skybench/pkg/fetch"
	"github.com/skybench/skybench/pkg/formats"
	"github.com/skybench/skybench/pkg/gen"
	"github.com/skybench/skybench/pkg/logger"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := config.Default()
	var configFile string

	root := &cobra.Command{
		Use:   "skybench",
		Short: "skybench - tabular astronomy I/O benchmark toolkit",
		Long: `skybench benchmarks whole-table disk I/O for three storage formats:
delimited text (CSV), the Arrow IPC columnar container and the FITS
flexible format, over synthetic star catalogs and real downloaded
datasets.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				if err := config.Load(configFile, cfg); err != nil {
					return err
				}
			}
			if viper.IsSet("log_level") {
				cfg.LogLevel = viper.GetString("log_level")
			}
			if viper.IsSet("data_dir") {
				cfg.DataDir = viper.GetString("data_dir")
			}
			if viper.IsSet("results_dir") {
				cfg.ResultsDir = viper.GetString("results_dir")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return logger.Init(logger.Config{
				Level:    cfg.LogLevel,
				Encoding: "console",
			})
		},
	}

	root.PersistentFlags().StringVar(&configFile, "config", "", "Path to YAML configuration file")
	root.PersistentFlags().String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	root.PersistentFlags().String("data-dir", cfg.DataDir, "Directory for scratch files and downloads")
	root.PersistentFlags().String("results-dir", cfg.ResultsDir, "Directory for benchmark reports")

	viper.SetEnvPrefix("SKYBENCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("data_dir", root.PersistentFlags().Lookup("data-dir"))
	_ = viper.BindPFlag("results_dir", root.PersistentFlags().Lookup("results-dir"))

	root.AddCommand(versionCmd())
	root.AddCommand(formatsCmd())
	root.AddCommand(fetchCmd(cfg))
	root.AddCommand(genCmd(cfg))
	root.AddCommand(convertCmd())
	root.AddCommand(benchCmd(cfg))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("skybench v%s\n", version)
			fmt.Printf("Go version: %s\n", runtime.Version())
			fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported storage formats",
		Run: func(cmd *cobra.Command, args []string) {
			for _, f := range formats.All() {
				info := formats.GetFormatInfo(f)
				fmt.Printf("%-6s %-20s %s\n", info.Format, info.FileExtension, info.Description)
			}
		},
	}
}

func fetchCmd(cfg *config.Config) *cobra.Command {
	var force bool
	var rawURL string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the benchmark dataset into the data directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := rawURL
			if url == "" {
				url = cfg.Fetch.URL
			}

			f := fetch.New(&fetch.Config{
				CacheDir:  cfg.DataDir,
				Timeout:   cfg.Fetch.Timeout,
				UserAgent: cfg.Fetch.UserAgent,
				Force:     force || cfg.Fetch.Force,
			}, logger.Get())

			path, err := f.Fetch(cmd.Context(), url)
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}

	cmd.Flags().StringVar(&rawURL, "url", "", "Dataset URL (default from configuration)")
	cmd.Flags().BoolVar(&force, "force", false, "Re-download even when a cached copy exists")
	return cmd
}

func genCmd(cfg *config.Config) *cobra.Command {
	var rows int
	var seed int64

	cmd := &cobra.Command{
		Use:   "gen OUT",
		Short: "Generate a synthetic star catalog in any supported format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := args[0]
			t := gen.Catalog(rows, seed)
			if err := formats.WriteFile(out, t, nil); err != nil {
				return err
			}
			logger.Info("catalog written",
				zap.String("path", out),
				zap.Int("rows", rows))
			return nil
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 10000, "Number of catalog rows")
	cmd.Flags().Int64Var(&seed, "seed", cfg.Bench.Seed, "Generator seed")
	return cmd
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert SRC DST",
		Short: "Convert a table between formats, inferred from extensions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, dst := args[0], args[1]

			t, err := formats.ReadFile(src, nil)
			if err != nil {
				return err
			}
			if err := formats.WriteFile(dst, t, nil); err != nil {
				return err
			}
			logger.Info("converted",
				zap.String("src", src),
				zap.String("dst", dst),
				zap.Int("rows", t.NumRows()),
				zap.Int("cols", t.NumCols()))
			return nil
		},
	}
}

func benchCmd(cfg *config.Config) *cobra.Command {
	var sizes []int
	var iterations int
	var formatNames []string
	var comp string
	var withDataset bool
	var datasetPath string

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the full benchmark matrix and save a report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(sizes) > 0 {
				cfg.Bench.Sizes = sizes
			}
			if iterations > 0 {
				cfg.Bench.Iterations = iterations
			}
			if len(formatNames) > 0 {
				cfg.Bench.Formats = formatNames
			}
			if comp != "" {
				cfg.Bench.Compression = comp
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			runner := bench.NewRunner(cfg, logger.Get())

			report, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			if withDataset || datasetPath != "" {
				path := datasetPath
				if path == "" {
					f := fetch.New(&fetch.Config{
						CacheDir:  cfg.DataDir,
						Timeout:   cfg.Fetch.Timeout,
						UserAgent: cfg.Fetch.UserAgent,
						Force:     cfg.Fetch.Force,
					}, logger.Get())
					path, err = f.Fetch(ctx, cfg.Fetch.URL)
					if err != nil {
						return err
					}
				}
				if err := runner.RunDataset(ctx, report, path); err != nil {
					return err
				}
			}

			jsonPath, textPath, err := report.Save(cfg.ResultsDir)
			if err != nil {
				return err
			}

			if err := report.WriteText(os.Stdout); err != nil {
				return err
			}
			fmt.Printf("\nreports saved to %s and %s\n", jsonPath, textPath)
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&sizes, "sizes", nil, "Problem sizes in rows (default from configuration)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Iterations per measurement, fastest kept")
	cmd.Flags().StringSliceVar(&formatNames, "formats", nil, "Formats to benchmark (csv, arrow, fits)")
	cmd.Flags().StringVar(&comp, "compression", "", "Compression for delimited text (gzip, zstd, s2, lz4)")
	cmd.Flags().BoolVar(&withDataset, "dataset", false, "Also benchmark the downloaded dataset")
	cmd.Flags().StringVar(&datasetPath, "dataset-path", "", "Benchmark a local dataset file instead of downloading")
	return cmd
}
