package lab

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
)

// AzureDeployer drives range deployments through ARM template deployments
// into a dedicated resource group.
type AzureDeployer struct {
	deployments *armresources.DeploymentsClient
	groups      *armresources.ResourceGroupsClient

	ResourceGroup string
	Location      string
}

// NewAzureDeployer authenticates via the default Azure credential chain
// (environment, managed identity, az CLI).
func NewAzureDeployer(subscriptionID, resourceGroup, location string) (*AzureDeployer, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("building Azure credential: %w", err)
	}

	deployments, err := armresources.NewDeploymentsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating deployments client: %w", err)
	}
	groups, err := armresources.NewResourceGroupsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("creating resource groups client: %w", err)
	}

	return &AzureDeployer{
		deployments:   deployments,
		groups:        groups,
		ResourceGroup: resourceGroup,
		Location:      location,
	}, nil
}

// Deploy ensures the resource group exists, then runs an incremental ARM
// deployment of a built-in template and waits for it to complete.
func (d *AzureDeployer) Deploy(ctx context.Context, deploymentName, templateName string, params map[string]string) error {
	body, err := Template(templateName)
	if err != nil {
		return err
	}

	template, err := parseARMTemplate(body)
	if err != nil {
		return fmt.Errorf("parsing range template %s: %w", templateName, err)
	}

	if _, err := d.groups.CreateOrUpdate(ctx, d.ResourceGroup, armresources.ResourceGroup{
		Location: to.Ptr(d.Location),
		Tags:     map[string]*string{"managed-by": to.Ptr("violet")},
	}, nil); err != nil {
		return fmt.Errorf("creating resource group %s: %w", d.ResourceGroup, err)
	}

	poller, err := d.deployments.BeginCreateOrUpdate(ctx, d.ResourceGroup, deploymentName, armresources.Deployment{
		Properties: &armresources.DeploymentProperties{
			Mode:       to.Ptr(armresources.DeploymentModeIncremental),
			Template:   template,
			Parameters: armParameters(params),
		},
	}, nil)
	if err != nil {
		return fmt.Errorf("starting deployment %s: %w", deploymentName, err)
	}

	slog.Info("range deployment started", "deployment", deploymentName, "resource_group", d.ResourceGroup, "template", templateName)
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("deployment %s failed: %w", deploymentName, err)
	}
	return nil
}

// Status returns the provisioning state of an ARM deployment.
func (d *AzureDeployer) Status(ctx context.Context, deploymentName string) (*RangeStatus, error) {
	out, err := d.deployments.Get(ctx, d.ResourceGroup, deploymentName, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching deployment %s: %w", deploymentName, err)
	}

	status := &RangeStatus{StackName: deploymentName}
	if out.Properties != nil && out.Properties.ProvisioningState != nil {
		status.StackStatus = string(*out.Properties.ProvisioningState)
	}
	if out.Properties != nil {
		if outputs, ok := out.Properties.Outputs.(map[string]any); ok {
			for key, raw := range outputs {
				entry, ok := raw.(map[string]any)
				if !ok {
					continue
				}
				if value, ok := entry["value"].(string); ok {
					if status.Outputs == nil {
						status.Outputs = map[string]string{}
					}
					status.Outputs[key] = value
				}
			}
		}
	}
	return status, nil
}

// Delete removes the whole resource group, taking every range resource with
// it. This blocks until the deletion finishes.
func (d *AzureDeployer) Delete(ctx context.Context) error {
	poller, err := d.groups.BeginDelete(ctx, d.ResourceGroup, nil)
	if err != nil {
		return fmt.Errorf("deleting resource group %s: %w", d.ResourceGroup, err)
	}
	slog.Info("range deletion started", "resource_group", d.ResourceGroup)
	if _, err := poller.PollUntilDone(ctx, nil); err != nil {
		return fmt.Errorf("resource group deletion failed: %w", err)
	}
	return nil
}

func parseARMTemplate(body string) (map[string]any, error) {
	var template map[string]any
	if err := json.Unmarshal([]byte(body), &template); err != nil {
		return nil, err
	}
	return template, nil
}

// armParameters wraps plain key/value pairs in the {"value": ...} envelope
// ARM expects.
func armParameters(params map[string]string) map[string]any {
	if len(params) == 0 {
		return map[string]any{}
	}
	wrapped := make(map[string]any, len(params))
	for key, value := range params {
		wrapped[key] = map[string]any{"value": value}
	}
	return wrapped
}
