package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/praetorian-inc/violet/internal/logs"
	"github.com/praetorian-inc/violet/internal/message"
	outputproviders "github.com/praetorian-inc/violet/internal/output_providers"
	"github.com/praetorian-inc/violet/pkg/config"
	"github.com/praetorian-inc/violet/pkg/types"
)

var (
	cfgFile       string
	flagQuiet     bool
	flagNoColor   bool
	flagVerbose   bool
	flagOutput    string
	flagOutputDir string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "violet",
	Short: "Violet is a CLI toolkit for running controlled purple-team exercises.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		message.SetQuiet(flagQuiet)
		message.SetNoColor(flagNoColor)

		level := slog.LevelWarn
		if flagVerbose {
			level = slog.LevelDebug
		}
		logs.ConsoleLoggerWithLevel(level)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		message.Error("%v", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the per-user violet/config.json)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational messages")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&flagOutput, "output", "o", "console", "output provider (console, json, plain)")
	rootCmd.PersistentFlags().StringVar(&flagOutputDir, "output-dir", ".", "directory for file output providers")
}

// initConfig reads in environment variables if set.
func initConfig() {
	viper.SetEnvPrefix("VIOLET")
	viper.AutomaticEnv()

	if cfgFile == "" {
		cfgFile = viper.GetString("CONFIG")
	}
}

// loadConfig reads the persisted tool settings.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

func outputProvider() types.OutputProvider {
	switch flagOutput {
	case "json":
		return outputproviders.NewJsonFileProvider(flagOutputDir)
	case "plain":
		return outputproviders.NewPlainFileProvider(flagOutputDir)
	default:
		return outputproviders.NewConsoleProvider(flagOutputDir)
	}
}
