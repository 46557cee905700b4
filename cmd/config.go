package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/praetorian-inc/violet/internal/message"
	"github.com/praetorian-inc/violet/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage persisted tool settings",
	Long: `Settings live in a JSON file under the user config directory. The
recognized keys are atomics_path, powershell_path, and timeout (seconds).`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		value := cfg.Get(args[0])
		if value == nil {
			return fmt.Errorf("unknown config key %q", args[0])
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Persist one setting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		key, raw := args[0], args[1]
		if key == config.KeyTimeout {
			secs, err := strconv.Atoi(raw)
			if err != nil || secs <= 0 {
				return fmt.Errorf("timeout must be a positive number of seconds, got %q", raw)
			}
			cfg.Set(key, secs)
		} else {
			cfg.Set(key, raw)
		}

		if err := cfg.Save(); err != nil {
			return err
		}
		message.Success("Set %s = %s (%s)", key, raw, cfg.Path())
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print every setting",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		values := cfg.All()
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Key", "Value"})
		for _, k := range keys {
			t.AppendRow(table.Row{k, fmt.Sprint(values[k])})
		}
		t.Render()

		message.Info("Config file: %s", cfg.Path())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configShowCmd)
}
