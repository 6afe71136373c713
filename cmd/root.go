package cmd

import (
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/jmig/internal"
	"github.com/gnolang/jmig/migrate"
)

const defaultTimeout = 5 * time.Minute

var (
	cfgFile string
	timeout time.Duration
	verbose bool

	ignoreRecipes string
	ignorePaths   string
	workers       int
	noCache       bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:              "jmig [paths...]",
	Short:            "jmig - migrate Java test sources off deprecated assertion APIs",
	TraverseChildren: true, // Prioritize subcommands
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		if err != nil {
			return err
		}
		migrate.Workers = workers
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		// no subcommand
		if len(args) == 0 {
			// display help when only 'jmig' is entered
			_ = cmd.Help()
			return
		}
		// Format: jmig [path1 path2 ...] => behaves like the check subcommand
		checkCmd.Run(checkCmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", migrate.DefaultConfigFile, "Configuration file")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", defaultTimeout, "Give up after this long")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	for _, c := range []*cobra.Command{rootCmd, checkCmd, runCmd, watchCmd} {
		c.Flags().StringVar(&ignoreRecipes, "ignore", "", "Comma-separated list of recipes to skip")
		c.Flags().StringVar(&ignorePaths, "ignore-paths", "", "Comma-separated list of path patterns to skip")
		c.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "Number of files processed in parallel")
		c.Flags().BoolVar(&noCache, "no-cache", false, "Do not read or update the unchanged-file cache")
	}

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(recipesCmd)
	rootCmd.AddCommand(watchCmd)
}

// newEngine builds the engine from the configuration file and the
// command-line overrides.
func newEngine() (*internal.Engine, error) {
	var opts []migrate.Option
	if noCache {
		opts = append(opts, migrate.WithoutCache())
	}
	engine, err := migrate.New(".", cfgFile, logger, opts...)
	if err != nil {
		return nil, err
	}

	for _, name := range splitList(ignoreRecipes) {
		engine.IgnoreRecipe(name)
	}
	for _, pattern := range splitList(ignorePaths) {
		engine.IgnorePath(pattern)
	}
	return engine, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
