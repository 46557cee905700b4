package cmd

import (
	"fmt"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/spf13/cobra"

	"github.com/praetorian-inc/violet/internal/logs"
	"github.com/praetorian-inc/violet/internal/message"
	"github.com/praetorian-inc/violet/pkg/phish"
	"github.com/praetorian-inc/violet/pkg/types"
)

var (
	phishRecipients string
	phishTemplate   string
	phishVia        string
	phishFrom       string
	phishFromName   string
	phishReplyTo    string
	phishSubject    string
	phishText       string
	phishSMTPHost   string
	phishSMTPPort   int
	phishSMTPUser   string
	phishSMTPPass   string
	phishRegion     string
)

var phishCmd = &cobra.Command{
	Use:   "phish",
	Short: "Phishing-awareness campaign commands",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

var phishSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a personalized campaign to a recipient list",
	Long: `Send reads a recipients CSV (UTF-8 or UTF-16, email and name columns),
personalizes the HTML template's {name} and {email} placeholders per recipient,
and delivers via SMTP STARTTLS or Amazon SES. Only use against addresses you
are authorized to test.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		recipients, err := phish.ReadRecipients(phishRecipients)
		if err != nil {
			return err
		}
		template, err := phish.ReadTemplate(phishTemplate)
		if err != nil {
			return err
		}

		var mailer phish.Mailer
		switch phishVia {
		case "smtp":
			if phishSMTPHost == "" {
				return fmt.Errorf("--smtp-host is required with --via smtp")
			}
			mailer = &phish.SMTPMailer{
				Host:     phishSMTPHost,
				Port:     phishSMTPPort,
				Username: phishSMTPUser,
				Password: phishSMTPPass,
			}
		case "ses":
			opts := []func(*awsconfig.LoadOptions) error{
				awsconfig.WithLogger(logs.SdkLogger()),
			}
			if phishRegion != "" {
				opts = append(opts, awsconfig.WithRegion(phishRegion))
			}
			awsCfg, err := awsconfig.LoadDefaultConfig(cmd.Context(), opts...)
			if err != nil {
				return fmt.Errorf("loading AWS configuration: %w", err)
			}
			mailer = &phish.SESMailer{Client: ses.NewFromConfig(awsCfg)}
		default:
			return fmt.Errorf("unknown delivery method %q (supported: smtp, ses)", phishVia)
		}

		campaign := &phish.Campaign{
			Mailer:       mailer,
			From:         phishFrom,
			FromName:     phishFromName,
			ReplyTo:      phishReplyTo,
			Subject:      phishSubject,
			Template:     template,
			TextFallback: phishText,
		}

		message.Banner()
		message.Info("Sending to %d recipient(s) via %s", len(recipients), phishVia)

		report, err := campaign.Send(cmd.Context(), recipients)
		if err != nil {
			return err
		}

		if err := outputProvider().Write(types.NewResult("violet", "phish", report)); err != nil {
			message.Warning("Failed to write campaign report: %v", err)
		}

		if report.Failed > 0 {
			return fmt.Errorf("campaign %s: %d of %d deliveries failed", report.CampaignID, report.Failed, len(recipients))
		}
		message.Success("Campaign %s delivered to all %d recipients", report.CampaignID, report.Sent)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(phishCmd)
	phishCmd.AddCommand(phishSendCmd)

	phishSendCmd.Flags().StringVar(&phishRecipients, "recipients", "", "recipients CSV with email and name columns")
	phishSendCmd.Flags().StringVar(&phishTemplate, "template", "", "HTML email template with {name}/{email} placeholders")
	phishSendCmd.Flags().StringVar(&phishVia, "via", "smtp", "delivery method (smtp, ses)")
	phishSendCmd.Flags().StringVar(&phishFrom, "from", "", "envelope and header From address")
	phishSendCmd.Flags().StringVar(&phishFromName, "from-name", "", "display name for the From header")
	phishSendCmd.Flags().StringVar(&phishReplyTo, "reply-to", "", "Reply-To address")
	phishSendCmd.Flags().StringVar(&phishSubject, "subject", "", "message subject")
	phishSendCmd.Flags().StringVar(&phishText, "text", "", "plain-text fallback body")
	phishSendCmd.Flags().StringVar(&phishSMTPHost, "smtp-host", "", "SMTP server hostname")
	phishSendCmd.Flags().IntVar(&phishSMTPPort, "smtp-port", 587, "SMTP server port")
	phishSendCmd.Flags().StringVar(&phishSMTPUser, "smtp-user", "", "SMTP username")
	phishSendCmd.Flags().StringVar(&phishSMTPPass, "smtp-pass", "", "SMTP password")
	phishSendCmd.Flags().StringVar(&phishRegion, "region", "", "AWS region for SES delivery")

	phishSendCmd.MarkFlagRequired("recipients")
	phishSendCmd.MarkFlagRequired("template")
	phishSendCmd.MarkFlagRequired("from")
	phishSendCmd.MarkFlagRequired("subject")
}
