package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/jmig/migrate"
)

// initCmd: jmig init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new configuration file with the built-in recipes",
	Run: func(cmd *cobra.Command, args []string) {
		if err := initConfigurationFile(cfgFile); err != nil {
			logger.Error("Error initializing config file", zap.Error(err))
			return
		}
		fmt.Printf("Configuration file created/updated: %s\n", cfgFile)
	},
}

func initConfigurationFile(configurationPath string) error {
	if configurationPath == "" {
		configurationPath = migrate.DefaultConfigFile
	}
	return migrate.WriteConfig(configurationPath, migrate.DefaultConfig())
}
