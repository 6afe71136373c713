package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/jmig/formatter"
	tt "github.com/gnolang/jmig/internal/types"
)

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Report pending migrations as files are saved",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			args = []string{"."}
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		engine, err := newEngine()
		if err != nil {
			logger.Fatal("Failed to initialize migration engine", zap.Error(err))
		}
		defer closeEngine(engine)

		err = engine.Watch(ctx, args, func(filename string, result *tt.FileResult, err error) {
			if err != nil {
				logger.Error("Error processing file", zap.String("file", filename), zap.Error(err))
				return
			}
			if !result.Modified() {
				logger.Info("no pending migrations", zap.String("file", filename))
				return
			}
			fmt.Print(formatter.GenerateFormattedResult(result))
		})
		if err != nil {
			logger.Error("Watch failed", zap.Error(err))
		}
	},
}
