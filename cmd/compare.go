package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sheetdiff/sheetdiff/cmd/engine"
	"github.com/sheetdiff/sheetdiff/cmd/loaders"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	compareKeys         []string
	compareOutputFormat string
	compareOutputFile   string
	compareExportDiffs  string
	compareS3Endpoint   string
	compareS3AccessKey  string
	compareS3SecretKey  string
	compareS3Region     string
)

var compareCmd = &cobra.Command{
	Use:   "compare <source-a> <source-b>",
	Short: "Compare two tabular datasets cell by cell",
	Long: `Compare two tabular datasets sharing a logical schema and report the
columns and rows that diverge. Sources may be local CSV/XLSX files
(optionally .gz or .zst compressed), s3://bucket/key objects, or
postgres://...#table references.

Rows align by the --key columns when given, otherwise by their full
content, so row order never produces false diffs.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		runCompare(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringArrayVar(&compareKeys, "key", nil, "column to align rows by (repeatable; default: full row content)")
	compareCmd.Flags().StringVar(&compareOutputFormat, "output-format", "text", "output format: text, json")
	compareCmd.Flags().StringVar(&compareOutputFile, "output-file", "", "output file path (default: stdout)")
	compareCmd.Flags().StringVar(&compareExportDiffs, "export-diffs", "", "write all diff records to a CSV file")

	compareCmd.Flags().StringVar(&compareS3Endpoint, "s3-endpoint", "", "S3-compatible endpoint URL")
	compareCmd.Flags().StringVar(&compareS3AccessKey, "s3-access-key", "", "S3 access key")
	compareCmd.Flags().StringVar(&compareS3SecretKey, "s3-secret-key", "", "S3 secret key")
	compareCmd.Flags().StringVar(&compareS3Region, "s3-region", "", "S3 region")

	_ = viper.BindPFlag("compare.output_format", compareCmd.Flags().Lookup("output-format"))
	_ = viper.BindPFlag("compare.output_file", compareCmd.Flags().Lookup("output-file"))
	_ = viper.BindPFlag("s3.endpoint", compareCmd.Flags().Lookup("s3-endpoint"))
	_ = viper.BindPFlag("s3.access_key", compareCmd.Flags().Lookup("s3-access-key"))
	_ = viper.BindPFlag("s3.secret_key", compareCmd.Flags().Lookup("s3-secret-key"))
	_ = viper.BindPFlag("s3.region", compareCmd.Flags().Lookup("s3-region"))
}

func runCompare(cmd *cobra.Command, args []string) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "\n❌ PANIC: %v\n", r)
			os.Exit(3)
		}
	}()

	// Helper function to get config value: use flag if set, otherwise use viper, fallback to flag default
	getStringConfig := func(flagValue string, flagName string, viperKey string) string {
		if flag := cmd.Flags().Lookup(flagName); flag != nil && flag.Changed {
			return flagValue
		}
		if viperValue := viper.GetString(viperKey); viperValue != "" {
			return viperValue
		}
		return flagValue
	}

	config := &Config{
		Debug:      viper.GetBool("debug"),
		LogFormat:  viper.GetString("log_format"),
		NoCache:    viper.GetBool("no_cache"),
		NoProgress: viper.GetBool("no_progress"),
		SourceA:    args[0],
		SourceB:    args[1],
		Keys:       compareKeys,

		OutputFormat: getStringConfig(compareOutputFormat, "output-format", "compare.output_format"),
		OutputFile:   getStringConfig(compareOutputFile, "output-file", "compare.output_file"),
		ExportDiffs:  compareExportDiffs,

		S3: S3Config{
			Endpoint:  getStringConfig(compareS3Endpoint, "s3-endpoint", "s3.endpoint"),
			AccessKey: getStringConfig(compareS3AccessKey, "s3-access-key", "s3.access_key"),
			SecretKey: getStringConfig(compareS3SecretKey, "s3-secret-key", "s3.secret_key"),
			Region:    getStringConfig(compareS3Region, "s3-region", "s3.region"),
		},
	}

	initLogger(config.Debug, config.LogFormat)

	logger.Info("")
	logger.Info(fmt.Sprintf("🔍 Sheetdiff v%s", Version))
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	printCompareConfig(config)

	logger.Debug("Validating configuration...")
	if err := config.Validate(); err != nil {
		logger.Error(fmt.Sprintf("❌ Configuration error: %s", err.Error()))
		os.Exit(3)
	}
	logger.Debug("Configuration validated successfully")

	// Check for updates in background (non-blocking)
	updateCheckDone := make(chan struct{})
	go func() {
		defer close(updateCheckDone)
		result := checkForUpdates(context.Background(), Version)
		versionCheckResult = &result

		if result.UpdateAvailable {
			logger.Info("")
			logger.Info(fmt.Sprintf("💡 %s", formatUpdateMessage(result)))
		} else if result.Error != nil && config.Debug {
			logger.Debug(fmt.Sprintf("Version check failed: %v", result.Error))
		}
	}()

	select {
	case <-updateCheckDone:
	case <-time.After(2 * time.Second):
		logger.Debug("Version check taking longer than expected, continuing...")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := compareSources(ctx, config)
	if result == nil {
		// compareSources logged the failure already
		os.Exit(3)
	}

	if err := outputResult(config, result); err != nil {
		logger.Error(fmt.Sprintf("❌ Failed to write output: %s", err.Error()))
		os.Exit(3)
	}

	if config.ExportDiffs != "" && result.Status == engine.StatusSuccess {
		if err := exportDiffRecords(config.ExportDiffs, result); err != nil {
			logger.Error(fmt.Sprintf("❌ Failed to export diffs: %s", err.Error()))
			os.Exit(3)
		}
		logger.Info(fmt.Sprintf("📤 Exported diff records to %s", config.ExportDiffs))
	}

	if result.Status != engine.StatusSuccess {
		os.Exit(result.Status.ExitCode())
	}
}

// compareSources resolves both sources, consults the result cache, and
// runs the comparison. A nil return means loading failed (already
// logged); every comparison outcome, including mismatches, comes back
// as a Result.
func compareSources(ctx context.Context, config *Config) *engine.Result {
	var fingerprint string
	useCache := !config.NoCache && cacheableSource(config.SourceA) && cacheableSource(config.SourceB)
	if useCache {
		fp, err := fingerprintSources(config.SourceA, config.SourceB, config.Keys)
		if err != nil {
			logger.Debug(fmt.Sprintf("Fingerprinting failed, skipping cache: %v", err))
			useCache = false
		} else {
			fingerprint = fp
			if cached := loadCachedResult(fingerprint); cached != nil {
				logger.Info("⚡ Using cached comparison result")
				return cached
			}
		}
	}

	loadOpts := loaders.Options{
		S3: loaders.S3Options{
			Endpoint:  config.S3.Endpoint,
			AccessKey: config.S3.AccessKey,
			SecretKey: config.S3.SecretKey,
			Region:    config.S3.Region,
		},
	}

	logger.Info(fmt.Sprintf("📥 Loading %s", config.SourceA))
	tableA, err := loaders.Load(ctx, config.SourceA, loadOpts)
	if err != nil {
		logLoadFailure(config.SourceA, err)
		return nil
	}

	logger.Info(fmt.Sprintf("📥 Loading %s", config.SourceB))
	tableB, err := loaders.Load(ctx, config.SourceB, loadOpts)
	if err != nil {
		logLoadFailure(config.SourceB, err)
		return nil
	}

	logger.Info(fmt.Sprintf("🔍 Comparing %d vs %d rows across %d columns",
		tableA.NumRows(), tableB.NumRows(), len(tableA.Columns)))

	opts := engine.Options{Keys: config.Keys}
	var result *engine.Result
	if config.NoProgress || config.Debug || config.OutputFormat == "json" {
		result = engine.Compare(tableA, tableB, opts)
	} else {
		result = compareWithProgress(ctx, tableA, tableB, opts)
	}

	if useCache {
		if err := saveCachedResult(fingerprint, result); err != nil {
			logger.Debug(fmt.Sprintf("Failed to save result cache: %v", err))
		}
	}
	return result
}

func logLoadFailure(source string, err error) {
	if errors.Is(err, context.Canceled) {
		logger.Info("")
		logger.Info("⚠️  Comparison cancelled by user")
		os.Exit(130)
	}
	logger.Error(fmt.Sprintf("❌ Failed to load %s: %s", source, err.Error()))
}

// printCompareConfig prints a table of configuration information
func printCompareConfig(config *Config) {
	logger.Info("")
	logger.Info("📋 Configuration:")
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Info(fmt.Sprintf("  Source A:        %s", config.SourceA))
	logger.Info(fmt.Sprintf("  Source B:        %s", config.SourceB))
	if len(config.Keys) > 0 {
		logger.Info(fmt.Sprintf("  Sort Keys:       %s", strings.Join(config.Keys, ", ")))
	} else {
		logger.Info("  Sort Keys:       (full row content)")
	}
	logger.Info(fmt.Sprintf("  Output Format:   %s", config.OutputFormat))
	if config.OutputFile != "" {
		logger.Info(fmt.Sprintf("  Output File:     %s", config.OutputFile))
	} else {
		logger.Info("  Output File:     stdout")
	}
	if config.ExportDiffs != "" {
		logger.Info(fmt.Sprintf("  Export Diffs:    %s", config.ExportDiffs))
	}
	if config.S3.Endpoint != "" {
		logger.Info(fmt.Sprintf("  S3 Endpoint:     %s", config.S3.Endpoint))
		logger.Info(fmt.Sprintf("  S3 Access Key:   %s", maskString(config.S3.AccessKey)))
		logger.Info(fmt.Sprintf("  S3 Region:       %s", config.S3.Region))
	}
	logger.Info(fmt.Sprintf("  Cache:           %v", !config.NoCache))
	logger.Info(fmt.Sprintf("  Debug:           %v", config.Debug))
	logger.Info("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	logger.Info("")
}

// maskString masks all but the first two characters of a secret
func maskString(s string) string {
	if s == "" {
		return "(not set)"
	}
	if len(s) <= 2 {
		return "***"
	}
	return s[:2] + strings.Repeat("*", len(s)-2)
}
