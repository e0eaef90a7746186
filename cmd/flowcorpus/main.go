package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/flowcorpus"
	"github.com/viant/flowcorpus/internal/logger"
	"github.com/viant/flowcorpus/report"
	"github.com/viant/flowcorpus/tracing"
)

var version = "0.1.0-dev"

// exitError carries a process exit code without an error message of its own
type exitError struct {
	code   int
	reason string
}

func (e *exitError) Error() string {
	return e.reason
}

func main() {
	err := newRootCommand().Execute()
	var exitErr *exitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
		os.Exit(exitErr.code)
	default:
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flowcorpus",
		Short: "Keep user flow corpus references and related flows consistent",
		Long: `flowcorpus merges citations into source_documents, normalizes reference
paths, resolves them against the asset store and links related flows for
every module document.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, err := cmd.Flags().GetString("env-file")
			if err != nil {
				return err
			}
			if envFile == "" {
				_ = godotenv.Load()
				return nil
			}
			return godotenv.Load(envFile)
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML or JSON configuration file")
	flags.String("env-file", "", "dotenv file loaded before the configuration (default: .env when present)")
	flags.String("data", "", "corpus document location, overrides config dataURL")
	flags.String("assets", "", "asset store location, overrides config assetURL")
	flags.String("backup", "", "backup location for replaced documents, overrides config backupURL")
	flags.StringSlice("module", nil, "module keys to process (default: all)")
	flags.Bool("json", false, "print the report as JSON")
	flags.String("log-mode", "dev", "log mode: dev|prod|quiet")
	flags.String("log-level", "info", "log level")
	flags.String("trace-file", "", "write OpenTelemetry spans to this file")

	fixCmd := &cobra.Command{
		Use:   "fix",
		Short: "Rewrite module documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flowcorpus.ModeFix)
		},
	}
	fixCmd.Flags().String("stages", "", "comma separated stages: merge,normalize,link (default: all)")
	fixCmd.Flags().Bool("dry-run", false, "report pending changes as a diff without writing")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Report unresolved references and related flow defects without writing",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flowcorpus.ModeValidate)
		},
	}
	rootCmd.AddCommand(fixCmd, validateCmd)
	return rootCmd
}

func run(cmd *cobra.Command, mode flowcorpus.Mode) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log, err := newLogger(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	config, err := loadConfig(ctx, cmd)
	if err != nil {
		return err
	}
	options := []flowcorpus.Option{flowcorpus.WithConfig(config), flowcorpus.WithLogger(log)}
	if mode == flowcorpus.ModeFix {
		stagesText, _ := cmd.Flags().GetString("stages")
		stages, err := flowcorpus.ParseStages(stagesText)
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		options = append(options, flowcorpus.WithStages(stages...), flowcorpus.WithDryRun(dryRun))
	}
	if traceFile, _ := cmd.Flags().GetString("trace-file"); traceFile != "" {
		options = append(options, flowcorpus.WithTracing("flowcorpus", version, traceFile))
		defer func() { _ = tracing.Shutdown(context.Background()) }()
	}
	srv, err := flowcorpus.New(options...)
	if err != nil {
		return err
	}
	modules, _ := cmd.Flags().GetStringSlice("module")
	result, err := srv.Run(ctx, mode, modules...)
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")
	if err = writeReport(cmd.OutOrStdout(), result, asJSON); err != nil {
		return err
	}
	return exitStatus(mode, result)
}

// exitStatus applies the exit contract: validate fails on unresolved
// references, both modes fail on a rejected module document and any other
// module failure is reported as an I/O error
func exitStatus(mode flowcorpus.Mode, result *report.Corpus) error {
	switch {
	case result.Failed > result.Malformed:
		return &exitError{code: 2, reason: fmt.Sprintf("%d modules failed", result.Failed-result.Malformed)}
	case result.Malformed > 0:
		return &exitError{code: 1, reason: fmt.Sprintf("%d malformed module documents", result.Malformed)}
	case mode == flowcorpus.ModeValidate && result.Unresolved > 0:
		return &exitError{code: 1, reason: fmt.Sprintf("%d unresolved references", result.Unresolved)}
	}
	return nil
}

func writeReport(w io.Writer, result *report.Corpus, asJSON bool) error {
	if !asJSON {
		return result.WriteText(w)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(result)
}

func newLogger(cmd *cobra.Command) (*logger.Logger, error) {
	mode, _ := cmd.Flags().GetString("log-mode")
	level, _ := cmd.Flags().GetString("log-level")
	return logger.New(mode, level)
}

func loadConfig(ctx context.Context, cmd *cobra.Command) (*flowcorpus.Config, error) {
	URL, _ := cmd.Flags().GetString("config")
	var config *flowcorpus.Config
	if URL == "" {
		config = flowcorpus.DefaultConfig()
	} else {
		var err error
		if config, err = flowcorpus.LoadConfig(ctx, afs.New(), URL); err != nil {
			return nil, err
		}
	}
	overrides := []struct {
		flag string
		dest *string
	}{
		{"data", &config.DataURL},
		{"assets", &config.AssetURL},
		{"backup", &config.BackupURL},
	}
	for _, override := range overrides {
		if value, _ := cmd.Flags().GetString(override.flag); value != "" {
			*override.dest = value
		}
	}
	return config, nil
}
