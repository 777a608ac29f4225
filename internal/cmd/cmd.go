package cmd

import (
	"github.com/LoesterFranco/A-Z80/internal/board"
	"github.com/LoesterFranco/A-Z80/internal/config"
	"github.com/LoesterFranco/A-Z80/internal/log"
	"github.com/spf13/cobra"
)

var cfgFile string
var romFile string

var rootCmd = &cobra.Command{
	Use:   "a-z80",
	Short: "a-z80 is a cycle accurate Z80 core on a monitored board",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := board.New()
		if err != nil {
			return err
		}
		b.Run()
		return nil
	},
}

// Execute bootstraps the viper
func Execute() error {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "configuration file for the board")
	rootCmd.PersistentFlags().StringVarP(&romFile, "rom", "r", "", "rom image loaded before the core starts")
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	if err := initConfigE(); err != nil {
		log.Fatalf("Failed to load configuration: %s", err)
	}
}

func initConfigE() error {
	defer func() {
		if romFile != "" {
			config.CLIConfig.RomFile = romFile
		}
	}()
	return config.NewConfig(cfgFile)
}
