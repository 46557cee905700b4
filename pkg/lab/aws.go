package lab

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/praetorian-inc/violet/internal/logs"
)

// CloudFormationAPI is the slice of the CloudFormation client the deployer
// needs. Satisfied by *cloudformation.Client.
type CloudFormationAPI interface {
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
}

// STSAPI is satisfied by *sts.Client.
type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// EC2API is satisfied by *ec2.Client.
type EC2API interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// AWSDeployer drives range deployments through CloudFormation.
type AWSDeployer struct {
	CFN CloudFormationAPI
	STS STSAPI
	EC2 EC2API
}

// NewAWSDeployer builds a deployer from the ambient AWS credential chain.
func NewAWSDeployer(ctx context.Context, region, profile string) (*AWSDeployer, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithLogger(logs.SdkLogger()),
	}
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	return &AWSDeployer{
		CFN: cloudformation.NewFromConfig(cfg),
		STS: sts.NewFromConfig(cfg),
		EC2: ec2.NewFromConfig(cfg),
	}, nil
}

// CallerIdentity returns the ARN of the active AWS principal. Used as a
// preflight so a bad credential chain fails before any stack is created.
func (d *AWSDeployer) CallerIdentity(ctx context.Context) (string, error) {
	out, err := d.STS.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("resolving caller identity: %w", err)
	}
	return aws.ToString(out.Arn), nil
}

// Deploy creates a CloudFormation stack from a built-in template and returns
// the stack ID. It does not wait for the stack to finish; use Status to poll.
func (d *AWSDeployer) Deploy(ctx context.Context, stackName, templateName string, params map[string]string) (string, error) {
	body, err := Template(templateName)
	if err != nil {
		return "", err
	}

	input := &cloudformation.CreateStackInput{
		StackName:    aws.String(stackName),
		TemplateBody: aws.String(body),
		Capabilities: []cftypes.Capability{cftypes.CapabilityCapabilityNamedIam},
		Tags: []cftypes.Tag{
			{Key: aws.String("managed-by"), Value: aws.String("violet")},
		},
	}
	for key, value := range params {
		input.Parameters = append(input.Parameters, cftypes.Parameter{
			ParameterKey:   aws.String(key),
			ParameterValue: aws.String(value),
		})
	}

	out, err := d.CFN.CreateStack(ctx, input)
	if err != nil {
		return "", fmt.Errorf("creating stack %s: %w", stackName, err)
	}

	stackID := aws.ToString(out.StackId)
	slog.Info("range deployment started", "stack", stackName, "stack_id", stackID, "template", templateName)
	return stackID, nil
}

// InstanceStatus describes one EC2 instance belonging to a range.
type InstanceStatus struct {
	InstanceID string `json:"instance_id"`
	State      string `json:"state"`
	PublicIP   string `json:"public_ip,omitempty"`
}

// RangeStatus is the combined stack and instance view of a deployed range.
type RangeStatus struct {
	StackName    string           `json:"stack_name"`
	StackStatus  string           `json:"stack_status"`
	StatusReason string           `json:"status_reason,omitempty"`
	Outputs      map[string]string `json:"outputs,omitempty"`
	Instances    []InstanceStatus `json:"instances,omitempty"`
}

// Status reports the stack state plus any instances the stack created.
func (d *AWSDeployer) Status(ctx context.Context, stackName string) (*RangeStatus, error) {
	out, err := d.CFN.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
		StackName: aws.String(stackName),
	})
	if err != nil {
		return nil, fmt.Errorf("describing stack %s: %w", stackName, err)
	}
	if len(out.Stacks) == 0 {
		return nil, fmt.Errorf("stack %s not found", stackName)
	}

	stack := out.Stacks[0]
	status := &RangeStatus{
		StackName:    stackName,
		StackStatus:  string(stack.StackStatus),
		StatusReason: aws.ToString(stack.StackStatusReason),
	}
	for _, o := range stack.Outputs {
		if status.Outputs == nil {
			status.Outputs = map[string]string{}
		}
		status.Outputs[aws.ToString(o.OutputKey)] = aws.ToString(o.OutputValue)
	}

	instances, err := d.stackInstances(ctx, stackName)
	if err != nil {
		// The stack view is still useful when EC2 describe fails.
		slog.Warn("listing range instances failed", "stack", stackName, "error", err)
	} else {
		status.Instances = instances
	}
	return status, nil
}

func (d *AWSDeployer) stackInstances(ctx context.Context, stackName string) ([]InstanceStatus, error) {
	out, err := d.EC2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{
				Name:   aws.String("tag:aws:cloudformation:stack-name"),
				Values: []string{stackName},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	var instances []InstanceStatus
	for _, res := range out.Reservations {
		for _, inst := range res.Instances {
			instances = append(instances, InstanceStatus{
				InstanceID: aws.ToString(inst.InstanceId),
				State:      string(inst.State.Name),
				PublicIP:   aws.ToString(inst.PublicIpAddress),
			})
		}
	}
	return instances, nil
}

// Delete tears down the stack. CloudFormation removes every resource the
// template created, so nothing from the exercise outlives the range.
func (d *AWSDeployer) Delete(ctx context.Context, stackName string) error {
	if _, err := d.CFN.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName: aws.String(stackName),
	}); err != nil {
		return fmt.Errorf("deleting stack %s: %w", stackName, err)
	}
	slog.Info("range deletion started", "stack", stackName)
	return nil
}
