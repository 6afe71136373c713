package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/jmig/formatter"
	tt "github.com/gnolang/jmig/internal/types"
	"github.com/gnolang/jmig/migrate"
)

var (
	jsonOutput bool
	outPath    string
	showDiff   bool
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report pending migrations without changing any file",
	Long: `Report the call sites that would be migrated and the import changes that
would be made. Exits with status 1 when at least one file would change.`,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine, err := newEngine()
		if err != nil {
			logger.Fatal("Failed to initialize migration engine", zap.Error(err))
		}
		defer closeEngine(engine)

		pending, err := runCheck(ctx, logger, engine, args, os.Stdout)
		if err != nil {
			logger.Error("Error processing files", zap.Error(err))
		}
		if pending || err != nil {
			closeEngine(engine)
			os.Exit(1)
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{rootCmd, checkCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
		c.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
		c.Flags().BoolVar(&showDiff, "diff", false, "Print a unified diff of every pending change")
	}
}

// runCheck prints the results for paths and reports whether any file
// would be modified.
func runCheck(ctx context.Context, logger *zap.Logger, engine migrate.Engine, paths []string, out io.Writer) (bool, error) {
	results, err := migrate.ProcessFiles(ctx, logger, engine, paths, migrate.ProcessFile)
	if err != nil {
		return false, err
	}

	printResults(logger, out, results, jsonOutput, outPath, showDiff)

	for _, r := range results {
		if r.Modified() {
			return true, nil
		}
	}
	return false, nil
}

// jsonReport is the JSON form of one file's outcome.
type jsonReport struct {
	Modified bool        `json:"modified"`
	Reports  []tt.Report `json:"reports"`
}

func printResults(logger *zap.Logger, out io.Writer, results []*tt.FileResult, isJson bool, jsonPath string, diff bool) {
	if isJson {
		byFile := make(map[string]jsonReport, len(results))
		for _, r := range results {
			byFile[r.Filename] = jsonReport{Modified: r.Modified(), Reports: r.Reports}
		}
		d, err := json.MarshalIndent(struct {
			Files   map[string]jsonReport `json:"files"`
			Summary formatter.Summary     `json:"summary"`
		}{byFile, formatter.Summarize(results)}, "", "  ")
		if err != nil {
			logger.Error("Error marshalling results to JSON", zap.Error(err))
			return
		}
		if jsonPath == "" {
			fmt.Fprintln(out, string(d))
			return
		}
		if err := os.WriteFile(jsonPath, d, 0o644); err != nil {
			logger.Error("Error writing JSON output file", zap.Error(err))
		}
		return
	}

	// text output, results are already sorted by file name
	for _, r := range results {
		fmt.Fprint(out, formatter.GenerateFormattedResult(r))
		if !diff {
			continue
		}
		d, err := formatter.FormatDiff(r)
		if err != nil {
			logger.Error("Error computing diff", zap.String("file", r.Filename), zap.Error(err))
			continue
		}
		fmt.Fprint(out, d)
	}
	fmt.Fprint(out, formatter.FormatSummary(formatter.Summarize(results)))
}

type closer interface {
	Close() error
}

func closeEngine(engine closer) {
	if err := engine.Close(); err != nil {
		logger.Warn("Failed to save cache", zap.Error(err))
	}
}
