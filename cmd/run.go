package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/jmig/formatter"
	"github.com/gnolang/jmig/internal/fixer"
	"github.com/gnolang/jmig/migrate"
)

var dryRun bool

var runCmd = &cobra.Command{
	Use:   "run [paths...]",
	Short: "Migrate files in place",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		// initialize the migration engine
		engine, err := newEngine()
		if err != nil {
			logger.Fatal("Failed to initialize migration engine", zap.Error(err))
		}
		defer closeEngine(engine)

		if failed := runMigration(ctx, logger, engine, args, dryRun, os.Stdout); failed > 0 {
			closeEngine(engine)
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print a diff of the changes instead of writing them")
}

// runMigration migrates every file under paths and returns the number of
// files that could not be written.
func runMigration(ctx context.Context, logger *zap.Logger, engine migrate.Engine, paths []string, dryRun bool, out io.Writer) int {
	fix := fixer.New(dryRun, out)

	results, err := migrate.ProcessFiles(ctx, logger, engine, paths, migrate.ProcessFile)
	if err != nil {
		logger.Error("error processing paths", zap.Strings("paths", paths), zap.Error(err))
		return 1
	}

	failed := 0
	for _, result := range results {
		if err := fix.Fix(result); err != nil {
			logger.Error("error migrating file", zap.String("file", result.Filename), zap.Error(err))
			failed++
		}
	}
	fmt.Fprint(out, formatter.FormatSummary(formatter.Summarize(results)))
	return failed
}
