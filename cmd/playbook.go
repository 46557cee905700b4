package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/praetorian-inc/violet/internal/message"
	"github.com/praetorian-inc/violet/pkg/atomic"
	"github.com/praetorian-inc/violet/pkg/playbook"
	"github.com/praetorian-inc/violet/pkg/types"
)

var (
	playbookDir             string
	playbookCheckPrereqs    bool
	playbookGetPrereqs      bool
	playbookCleanup         bool
	playbookSession         string
	playbookContinueOnError bool
)

var playbookCmd = &cobra.Command{
	Use:   "playbook",
	Short: "Run and inspect attack-chain playbooks",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

var playbookRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run every step of a playbook in order",
	Long: `Runs a playbook's techniques in their declared order, one external
invocation per step. The run halts at the first failing step unless
--continue-on-error is set.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pb, err := findPlaybook(args[0])
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		runner := &atomic.Runner{
			PowerShell: cfg.PowerShellPath(),
			Timeout:    cfg.Timeout(),
			Capture:    true,
		}

		opts := playbook.RunOptions{
			CheckPrereqs:    playbookCheckPrereqs,
			GetPrereqs:      playbookGetPrereqs,
			Cleanup:         playbookCleanup,
			Session:         playbookSession,
			ContinueOnError: playbookContinueOnError,
		}

		message.Banner()
		message.Section("Playbook: %s", pb.Name)

		summary := playbook.Execute(cmd.Context(), runner, pb, opts, func(i int, step playbook.Step) {
			message.Info("Step %d/%d: %s %s", i+1, len(pb.Steps), step.Technique, step.Description)
		})

		if err := outputProvider().Write(types.NewResult("violet", "playbook", summary)); err != nil {
			message.Warning("Failed to write playbook output: %v", err)
		}

		if summary.AllSucceeded() {
			message.Success("Playbook %s completed: %d/%d steps succeeded", pb.Name, summary.Succeeded, len(pb.Steps))
			return nil
		}
		if summary.Halted {
			message.Error("Playbook halted after step %d", len(summary.Steps))
		}
		return fmt.Errorf("playbook %s failed: %d succeeded, %d failed", pb.Name, summary.Succeeded, summary.Failed)
	},
}

var playbookInfoCmd = &cobra.Command{
	Use:   "info <name>",
	Short: "Show a playbook's steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pb, err := findPlaybook(args[0])
		if err != nil {
			return err
		}

		message.Section("%s", pb.Name)
		message.Info("%s", pb.Description)

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"#", "Technique", "Tests", "Description"})
		for i, step := range pb.Steps {
			tests := "all"
			if len(step.TestNumbers) > 0 {
				nums := make([]string, len(step.TestNumbers))
				for j, n := range step.TestNumbers {
					nums[j] = fmt.Sprint(n)
				}
				tests = strings.Join(nums, ",")
			}
			t.AppendRow(table.Row{i + 1, step.Technique, tests, step.Description})
		}
		t.Render()
		return nil
	},
}

var playbookGuidanceCmd = &cobra.Command{
	Use:   "guidance <name>",
	Short: "Show a playbook's blue-team guidance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pb, err := findPlaybook(args[0])
		if err != nil {
			return err
		}
		if pb.BlueTeamGuidance == "" {
			return fmt.Errorf("playbook %s carries no blue-team guidance", pb.Name)
		}
		message.Section("Blue-team guidance: %s", pb.Name)
		fmt.Println(pb.BlueTeamGuidance)
		return nil
	},
}

// loadLibrary returns the built-in playbooks plus any YAML playbooks from the
// playbook directory.
func loadLibrary() (*playbook.Library, error) {
	dir := playbookDir
	if dir == "" {
		if cfgDir, err := os.UserConfigDir(); err == nil {
			dir = filepath.Join(cfgDir, "violet", "playbooks")
		}
	}

	library := playbook.NewLibrary()
	if dir != "" {
		if err := library.LoadDir(dir); err != nil {
			return nil, err
		}
	}
	return library, nil
}

func findPlaybook(name string) (*playbook.Playbook, error) {
	library, err := loadLibrary()
	if err != nil {
		return nil, err
	}

	pb := library.Get(name)
	if pb == nil {
		names := make([]string, 0)
		for _, p := range library.All() {
			names = append(names, p.Name)
		}
		return nil, fmt.Errorf("unknown playbook %q (available: %s)", name, strings.Join(names, ", "))
	}
	return pb, nil
}

func init() {
	rootCmd.AddCommand(playbookCmd)
	playbookCmd.AddCommand(playbookRunCmd)
	playbookCmd.AddCommand(playbookInfoCmd)
	playbookCmd.AddCommand(playbookGuidanceCmd)

	playbookCmd.PersistentFlags().StringVar(&playbookDir, "playbook-dir", "", "directory of additional YAML playbooks")
	listPlaybooksCmd.Flags().StringVar(&playbookDir, "playbook-dir", "", "directory of additional YAML playbooks")

	playbookRunCmd.Flags().BoolVar(&playbookCheckPrereqs, "check-prereqs", false, "check prerequisites for every step without executing")
	playbookRunCmd.Flags().BoolVar(&playbookGetPrereqs, "get-prereqs", false, "install prerequisites for every step")
	playbookRunCmd.Flags().BoolVar(&playbookCleanup, "cleanup", false, "run cleanup for every step")
	playbookRunCmd.Flags().StringVarP(&playbookSession, "session", "s", "", "name of a PSSession variable to execute through")
	playbookRunCmd.Flags().BoolVar(&playbookContinueOnError, "continue-on-error", false, "keep running after a step fails")
}
