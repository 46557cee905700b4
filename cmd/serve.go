package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/violet/internal/message"
	"github.com/praetorian-inc/violet/pkg/harvest"
)

var (
	serveAddr     string
	servePageFile string
	serveLogFile  string
	serveWebhook  string
	serveRedirect string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the credential-harvest demo servers",
	Long: `Serve hosts a lure page that captures form submissions to a JSONL log
for awareness exercises. Only point these at users you are authorized to test.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

var serveHarvestCmd = &cobra.Command{
	Use:   "harvest",
	Short: "Serve the login lure page",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemoServer(cmd, harvest.PageLogin)
	},
}

var serveClickFixCmd = &cobra.Command{
	Use:   "clickfix",
	Short: "Serve the fake-verification (clickfix) lure page",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemoServer(cmd, harvest.PageClickFix)
	},
}

func runDemoServer(cmd *cobra.Command, page string) error {
	server, err := harvest.NewServer(harvest.Options{
		Addr:        serveAddr,
		Page:        page,
		PageFile:    servePageFile,
		LogPath:     serveLogFile,
		WebhookURL:  serveWebhook,
		RedirectURL: serveRedirect,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	message.Banner()
	return server.ListenAndServe(ctx)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.AddCommand(serveHarvestCmd)
	serveCmd.AddCommand(serveClickFixCmd)

	serveCmd.PersistentFlags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.PersistentFlags().StringVar(&servePageFile, "page-file", "", "serve a custom HTML page instead of the built-in lure")
	serveCmd.PersistentFlags().StringVar(&serveLogFile, "log-file", "submissions.jsonl", "JSONL submission log path")
	serveCmd.PersistentFlags().StringVar(&serveWebhook, "webhook", "", "forward each submission to this URL")
	serveCmd.PersistentFlags().StringVar(&serveRedirect, "redirect", "", "URL the browser is sent to after submitting")
}
