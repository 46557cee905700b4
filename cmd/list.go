package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/praetorian-inc/violet/internal/jq"
	"github.com/praetorian-inc/violet/internal/message"
	"github.com/praetorian-inc/violet/pkg/atomic"
	"github.com/praetorian-inc/violet/pkg/config"
)

var (
	listJqQuery     string
	listDetailTests []int
	listDetailFull  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List techniques, playbooks, and test details",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

var listTestsCmd = &cobra.Command{
	Use:   "tests [filter]",
	Short: "List available atomic techniques",
	Long: `Lists every technique the installed Invoke-AtomicTest framework knows
about. An optional filter matches case-insensitively against technique IDs and
names.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := checkAtomicsPath(cfg); err != nil {
			return err
		}

		runner := &atomic.Runner{PowerShell: cfg.PowerShellPath(), Timeout: cfg.Timeout()}
		techniques, err := runner.ListTechniques(cmd.Context())
		if err != nil {
			return err
		}

		filter := ""
		if len(args) == 1 {
			filter = args[0]
		}
		filtered := atomic.FilterTechniques(techniques, filter)

		if listJqQuery != "" {
			data, err := json.Marshal(filtered)
			if err != nil {
				return err
			}
			out, err := jq.PerformJqQuery(data, listJqQuery)
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"ID", "Name"})
		for _, tech := range filtered {
			t.AppendRow(table.Row{tech.ID, tech.Name})
		}
		t.Render()

		message.Info("%d technique(s)", len(filtered))
		return nil
	},
}

var listPlaybooksCmd = &cobra.Command{
	Use:   "playbooks",
	Short: "List available playbooks",
	RunE: func(cmd *cobra.Command, args []string) error {
		library, err := loadLibrary()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Name", "Steps", "Description"})
		for _, pb := range library.All() {
			t.AppendRow(table.Row{pb.Name, len(pb.Steps), pb.Description})
		}
		t.Render()
		return nil
	},
}

var listTestDetailsCmd = &cobra.Command{
	Use:   "test-details <technique-id>",
	Short: "Show the framework's description of a technique's tests",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		runner := &atomic.Runner{PowerShell: cfg.PowerShellPath(), Timeout: cfg.Timeout()}
		details, err := runner.TestDetails(cmd.Context(), args[0], listDetailTests, listDetailFull)
		if err != nil {
			return err
		}

		fmt.Print(details)
		return nil
	},
}

// checkAtomicsPath verifies the Atomic Red Team atomics directory is
// configured and present before asking the framework to enumerate it.
func checkAtomicsPath(cfg *config.Config) error {
	path := cfg.AtomicsPath()
	if path == "" {
		return fmt.Errorf("atomics path is not configured; set it with: violet config set atomics_path <path>")
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("atomics directory not found at %q", path)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.AddCommand(listTestsCmd)
	listCmd.AddCommand(listPlaybooksCmd)
	listCmd.AddCommand(listTestDetailsCmd)

	listTestsCmd.Flags().StringVar(&listJqQuery, "jq", "", "jq expression applied to the JSON technique list")
	listTestDetailsCmd.Flags().IntSliceVar(&listDetailTests, "test", nil, "limit details to specific test numbers")
	listTestDetailsCmd.Flags().BoolVar(&listDetailFull, "full", false, "show full details instead of the brief form")
}
