package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/violet/internal/message"
	"github.com/praetorian-inc/violet/pkg/atomic"
	"github.com/praetorian-inc/violet/pkg/types"
)

var (
	runTestNumbers    []int
	runCheckPrereqs   bool
	runGetPrereqs     bool
	runCleanup        bool
	runShowDetails    bool
	runAnyOS          bool
	runSession        string
	runTimeoutSecs    int
	runInteractive    bool
	runNonInteractive bool
)

var runCmd = &cobra.Command{
	Use:   "run <technique-id>",
	Short: "Run an atomic technique through Invoke-AtomicTest",
	Long: `Run executes a single MITRE ATT&CK technique via the Invoke-AtomicTest
PowerShell framework. Technique IDs look like T1003 or T1003.001.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		timeout := cfg.Timeout()
		if runTimeoutSecs > 0 {
			timeout = time.Duration(runTimeoutSecs) * time.Second
		}

		runner := &atomic.Runner{
			PowerShell: cfg.PowerShellPath(),
			Timeout:    timeout,
			Capture:    runNonInteractive || !runInteractive,
		}

		inv := atomic.Invocation{
			Technique:    args[0],
			TestNumbers:  runTestNumbers,
			CheckPrereqs: runCheckPrereqs,
			GetPrereqs:   runGetPrereqs,
			Cleanup:      runCleanup,
			ShowDetails:  runShowDetails,
			AnyOS:        runAnyOS,
			Session:      runSession,
		}

		message.Banner()
		message.Info("Executing: %s", message.Emphasize(inv.Command()))

		res, err := runner.Run(cmd.Context(), inv)
		if err != nil {
			var exitErr *atomic.ExitError
			if errors.As(err, &exitErr) && exitErr.Stderr != "" {
				message.Error("%s", exitErr.Stderr)
			}
			return err
		}

		message.Success("Technique %s completed in %s", inv.Technique, res.Duration.Round(time.Millisecond))
		if res.Captured {
			return outputProvider().Write(types.NewResult("violet", "run", res))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().IntSliceVarP(&runTestNumbers, "test-numbers", "n", nil, "specific test numbers to run (e.g. 1,3)")
	runCmd.Flags().BoolVar(&runCheckPrereqs, "check-prereqs", false, "check test prerequisites without executing")
	runCmd.Flags().BoolVar(&runGetPrereqs, "get-prereqs", false, "install test prerequisites")
	runCmd.Flags().BoolVar(&runCleanup, "cleanup", false, "run the technique's cleanup commands")
	runCmd.Flags().BoolVar(&runShowDetails, "show-details", false, "show full test details instead of executing")
	runCmd.Flags().BoolVar(&runAnyOS, "any-os", false, "ignore the technique's platform restrictions")
	runCmd.Flags().StringVarP(&runSession, "session", "s", "", "name of a PSSession variable to execute through")
	runCmd.Flags().IntVar(&runTimeoutSecs, "timeout", 0, "per-invocation timeout in seconds (overrides config)")
	runCmd.Flags().BoolVar(&runInteractive, "interactive", true, "stream framework output to the terminal")
	runCmd.Flags().BoolVar(&runNonInteractive, "non-interactive", false, "capture output and emit it through the output provider")
}
