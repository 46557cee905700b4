package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/praetorian-inc/violet/internal/message"
	"github.com/praetorian-inc/violet/pkg/listener"
)

var listenAddr string

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Run a TCP listener that prints payload callbacks",
	Long: `Listen accepts TCP connections and prints each line received, one
connection per goroutine. Used to observe callbacks from simulated payloads
during an exercise.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		message.Banner()
		l := &listener.Listener{Addr: listenAddr}
		return l.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(listenCmd)
	listenCmd.Flags().StringVar(&listenAddr, "addr", ":4444", "listen address")
}
