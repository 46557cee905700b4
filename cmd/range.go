package cmd

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/praetorian-inc/violet/internal/message"
	"github.com/praetorian-inc/violet/pkg/lab"
	"github.com/praetorian-inc/violet/pkg/types"
)

var (
	rangeProvider      string
	rangeName          string
	rangeTemplate      string
	rangeParams        map[string]string
	rangeRegion        string
	rangeProfile       string
	rangeSubscription  string
	rangeResourceGroup string
	rangeLocation      string
)

var rangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Deploy and tear down disposable exercise ranges",
	Long: `Range submits the embedded lab templates to AWS CloudFormation or
Azure Resource Manager, giving each exercise an isolated, throwaway network.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

var rangeDeployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy a lab range",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		message.Banner()

		switch rangeProvider {
		case "aws":
			d, err := lab.NewAWSDeployer(ctx, rangeRegion, rangeProfile)
			if err != nil {
				return err
			}
			arn, err := d.CallerIdentity(ctx)
			if err != nil {
				return err
			}
			message.Info("Deploying as %s", arn)

			stackID, err := d.Deploy(ctx, rangeName, rangeTemplateName(), rangeParams)
			if err != nil {
				return err
			}
			message.Success("Stack %s creating (%s)", rangeName, stackID)
			message.Info("Poll with: violet range status --provider aws --name %s", rangeName)
			return nil
		case "azure":
			d, err := newAzureDeployer()
			if err != nil {
				return err
			}
			message.Info("Deploying %s into resource group %s", rangeName, rangeResourceGroup)
			if err := d.Deploy(ctx, rangeName, rangeTemplateName(), rangeParams); err != nil {
				return err
			}
			message.Success("Deployment %s completed", rangeName)
			return nil
		default:
			return fmt.Errorf("unknown provider %q (supported: aws, azure)", rangeProvider)
		}
	},
}

var rangeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of a deployed range",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var status *lab.RangeStatus
		var err error
		switch rangeProvider {
		case "aws":
			var d *lab.AWSDeployer
			d, err = lab.NewAWSDeployer(ctx, rangeRegion, rangeProfile)
			if err != nil {
				return err
			}
			status, err = d.Status(ctx, rangeName)
		case "azure":
			var d *lab.AzureDeployer
			d, err = newAzureDeployer()
			if err != nil {
				return err
			}
			status, err = d.Status(ctx, rangeName)
		default:
			return fmt.Errorf("unknown provider %q (supported: aws, azure)", rangeProvider)
		}
		if err != nil {
			return err
		}

		message.Info("%s: %s", status.StackName, message.Emphasize(status.StackStatus))
		if len(status.Instances) > 0 {
			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Instance", "State", "Public IP"})
			for _, inst := range status.Instances {
				t.AppendRow(table.Row{inst.InstanceID, inst.State, inst.PublicIP})
			}
			t.Render()
		}

		return outputProvider().Write(types.NewResult("violet", "range", status))
	},
}

var rangeDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Tear down a deployed range",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		switch rangeProvider {
		case "aws":
			d, err := lab.NewAWSDeployer(ctx, rangeRegion, rangeProfile)
			if err != nil {
				return err
			}
			if err := d.Delete(ctx, rangeName); err != nil {
				return err
			}
			message.Success("Stack %s deleting", rangeName)
			return nil
		case "azure":
			d, err := newAzureDeployer()
			if err != nil {
				return err
			}
			message.Warning("Deleting resource group %s and everything in it", rangeResourceGroup)
			if err := d.Delete(ctx); err != nil {
				return err
			}
			message.Success("Resource group %s deleted", rangeResourceGroup)
			return nil
		default:
			return fmt.Errorf("unknown provider %q (supported: aws, azure)", rangeProvider)
		}
	},
}

func rangeTemplateName() string {
	if rangeTemplate != "" {
		return rangeTemplate
	}
	if rangeProvider == "azure" {
		return lab.TemplateAzureLabNetwork
	}
	return lab.TemplateAWSLabNetwork
}

func newAzureDeployer() (*lab.AzureDeployer, error) {
	if rangeSubscription == "" {
		return nil, fmt.Errorf("--subscription is required with --provider azure")
	}
	return lab.NewAzureDeployer(rangeSubscription, rangeResourceGroup, rangeLocation)
}

func init() {
	rootCmd.AddCommand(rangeCmd)
	rangeCmd.AddCommand(rangeDeployCmd)
	rangeCmd.AddCommand(rangeStatusCmd)
	rangeCmd.AddCommand(rangeDeleteCmd)

	rangeCmd.PersistentFlags().StringVar(&rangeProvider, "provider", "aws", "cloud provider (aws, azure)")
	rangeCmd.PersistentFlags().StringVar(&rangeName, "name", "violet-lab", "stack or deployment name")
	rangeCmd.PersistentFlags().StringVar(&rangeTemplate, "template", "", "built-in template name (defaults per provider)")
	rangeCmd.PersistentFlags().StringToStringVar(&rangeParams, "param", nil, "template parameters as key=value")
	rangeCmd.PersistentFlags().StringVar(&rangeRegion, "region", "", "AWS region")
	rangeCmd.PersistentFlags().StringVar(&rangeProfile, "profile", "", "AWS shared config profile")
	rangeCmd.PersistentFlags().StringVar(&rangeSubscription, "subscription", "", "Azure subscription ID")
	rangeCmd.PersistentFlags().StringVar(&rangeResourceGroup, "resource-group", "violet-lab-rg", "Azure resource group")
	rangeCmd.PersistentFlags().StringVar(&rangeLocation, "location", "eastus", "Azure region for the resource group")
}
