package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fastenhq/javacg/internal/analyzer"
	"github.com/fastenhq/javacg/internal/config"
	"github.com/fastenhq/javacg/internal/maven"
	"github.com/fastenhq/javacg/internal/pipeline"
)

var version = "dev"

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:     "javacg",
		Short:   "javacg - Java call graph generation for Maven artifacts",
		Long:    `javacg resolves Maven artifacts, runs the bytecode analyzer and emits revision call graphs.`,
		Version: version,
	}

	// Add subcommands
	rootCmd.AddCommand(coordinateCmd())
	rootCmd.AddCommand(fileCmd())
	rootCmd.AddCommand(batchCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newBuilder assembles the generation pipeline from environment configuration
// plus an optional analyzer command override.
func newBuilder(analyzerCmd string) (*pipeline.Builder, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	command := cfg.Analyzer.Command
	args := cfg.Analyzer.Args
	if analyzerCmd != "" {
		command = analyzerCmd
		args = nil
	}
	if command == "" {
		return nil, fmt.Errorf("no analyzer command configured")
	}

	an := analyzer.NewCommandAnalyzer(command, args...)
	return pipeline.NewBuilder(maven.NewResolver(), an), nil
}

func coordinateCmd() *cobra.Command {
	var (
		coordinate  string
		repos       []string
		outputDir   string
		timestamp   int64
		analyzerCmd string
		toStdout    bool
	)

	cmd := &cobra.Command{
		Use:   "coordinate",
		Short: "Generate a call graph for one Maven coordinate",
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := maven.FromString(coordinate)
			if err != nil {
				return err
			}
			coord.SetRepos(repos)

			builder, err := newBuilder(analyzerCmd)
			if err != nil {
				return err
			}

			rcg, err := builder.FromCoordinate(cmd.Context(), coord, timestamp)
			if err != nil {
				return err
			}

			return emit(rcg, outputDir, toStdout)
		},
	}

	cmd.Flags().StringVarP(&coordinate, "coord", "c", "", "Maven coordinate groupId:artifactId:version")
	cmd.Flags().StringSliceVarP(&repos, "repos", "r", nil, "Maven repositories tried in order")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory for the call graph")
	cmd.Flags().Int64VarP(&timestamp, "timestamp", "t", -1, "Release timestamp recorded in the call graph")
	cmd.Flags().StringVar(&analyzerCmd, "analyzer", "", "Analyzer command override")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the call graph instead of writing a file")
	cmd.MarkFlagRequired("coord")

	return cmd
}

func fileCmd() *cobra.Command {
	var (
		path        string
		product     string
		revision    string
		depsPath    string
		outputDir   string
		timestamp   int64
		analyzerCmd string
		toStdout    bool
	)

	cmd := &cobra.Command{
		Use:   "file",
		Short: "Generate a call graph for a local JAR file",
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, err := newBuilder(analyzerCmd)
			if err != nil {
				return err
			}

			depset, err := readDepset(depsPath)
			if err != nil {
				return err
			}

			rcg, err := builder.FromFile(cmd.Context(), path, product, revision, timestamp, depset)
			if err != nil {
				return err
			}

			return emit(rcg, outputDir, toStdout)
		},
	}

	cmd.Flags().StringVarP(&path, "path", "f", "", "Path to the JAR file to analyze")
	cmd.Flags().StringVarP(&product, "product", "p", "", "Product name groupId:artifactId")
	cmd.Flags().StringVarP(&revision, "version", "v", "", "Product version")
	cmd.Flags().StringVarP(&depsPath, "dependencies", "d", "", "Path to a JSON dependency set")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory for the call graph")
	cmd.Flags().Int64VarP(&timestamp, "timestamp", "t", -1, "Release timestamp recorded in the call graph")
	cmd.Flags().StringVar(&analyzerCmd, "analyzer", "", "Analyzer command override")
	cmd.Flags().BoolVar(&toStdout, "stdout", false, "Print the call graph instead of writing a file")
	cmd.MarkFlagRequired("path")
	cmd.MarkFlagRequired("product")
	cmd.MarkFlagRequired("version")

	return cmd
}

func batchCmd() *cobra.Command {
	var (
		inputPath   string
		repos       []string
		outputDir   string
		analyzerCmd string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process a JSON-lines file of Maven coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Flags override the job file, which overrides the defaults
			job, err := config.LoadJobConfig(".")
			if err != nil {
				return fmt.Errorf("failed to load job config: %w", err)
			}
			job.Merge(&config.JobConfig{
				Input:    inputPath,
				Output:   outputDir,
				Repos:    repos,
				Analyzer: config.JobAnalyzerConfig{Command: analyzerCmd},
			})

			if job.Input == "" {
				return fmt.Errorf("no input file given")
			}

			builder, err := newBuilder(job.Analyzer.Command)
			if err != nil {
				return err
			}

			input, err := os.Open(job.Input)
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer input.Close()

			batch := &pipeline.Batch{
				Builder:   builder,
				Repos:     job.Repos,
				OutputDir: job.Output,
			}

			summary, err := batch.Run(cmd.Context(), input)
			if err != nil {
				return err
			}

			summary.Print(os.Stdout)
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputPath, "file", "f", "", "JSON-lines coordinate file")
	cmd.Flags().StringSliceVarP(&repos, "repos", "r", nil, "Maven repositories tried in order")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for generated call graphs")
	cmd.Flags().StringVar(&analyzerCmd, "analyzer", "", "Analyzer command override")

	return cmd
}
