package lab

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCFN struct {
	createInput   *cloudformation.CreateStackInput
	createErr     error
	describeOut   *cloudformation.DescribeStacksOutput
	describeErr   error
	deletedStacks []string
}

func (f *fakeCFN) CreateStack(_ context.Context, in *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	f.createInput = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &cloudformation.CreateStackOutput{StackId: aws.String("arn:aws:cloudformation:us-east-1:123456789012:stack/lab/abc")}, nil
}

func (f *fakeCFN) DescribeStacks(_ context.Context, _ *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	return f.describeOut, f.describeErr
}

func (f *fakeCFN) DeleteStack(_ context.Context, in *cloudformation.DeleteStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
	f.deletedStacks = append(f.deletedStacks, aws.ToString(in.StackName))
	return &cloudformation.DeleteStackOutput{}, nil
}

type fakeSTS struct{ arn string }

func (f *fakeSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.arn == "" {
		return nil, errors.New("no credentials")
	}
	return &sts.GetCallerIdentityOutput{Arn: aws.String(f.arn)}, nil
}

type fakeEC2 struct {
	filters []ec2types.Filter
	out     *ec2.DescribeInstancesOutput
}

func (f *fakeEC2) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.filters = in.Filters
	if f.out == nil {
		return &ec2.DescribeInstancesOutput{}, nil
	}
	return f.out, nil
}

func TestDeployCreatesStackFromTemplate(t *testing.T) {
	cfn := &fakeCFN{}
	d := &AWSDeployer{CFN: cfn, STS: &fakeSTS{arn: "arn:aws:iam::123456789012:user/op"}, EC2: &fakeEC2{}}

	stackID, err := d.Deploy(context.Background(), "violet-lab", TemplateAWSLabNetwork, map[string]string{
		"OperatorCidr": "198.51.100.7/32",
	})
	require.NoError(t, err)
	assert.Contains(t, stackID, "stack/lab")

	require.NotNil(t, cfn.createInput)
	assert.Equal(t, "violet-lab", aws.ToString(cfn.createInput.StackName))
	assert.Contains(t, aws.ToString(cfn.createInput.TemplateBody), "AWSTemplateFormatVersion")

	require.Len(t, cfn.createInput.Parameters, 1)
	assert.Equal(t, "OperatorCidr", aws.ToString(cfn.createInput.Parameters[0].ParameterKey))
	assert.Equal(t, "198.51.100.7/32", aws.ToString(cfn.createInput.Parameters[0].ParameterValue))
}

func TestDeployUnknownTemplate(t *testing.T) {
	d := &AWSDeployer{CFN: &fakeCFN{}}
	_, err := d.Deploy(context.Background(), "violet-lab", "nonexistent", nil)
	assert.ErrorContains(t, err, "unknown range template")
}

func TestStatusCombinesStackAndInstances(t *testing.T) {
	cfn := &fakeCFN{
		describeOut: &cloudformation.DescribeStacksOutput{
			Stacks: []cftypes.Stack{{
				StackName:   aws.String("violet-lab"),
				StackStatus: cftypes.StackStatusCreateComplete,
				Outputs: []cftypes.Output{
					{OutputKey: aws.String("TargetPublicIp"), OutputValue: aws.String("203.0.113.10")},
				},
			}},
		},
	}
	ec2Client := &fakeEC2{
		out: &ec2.DescribeInstancesOutput{
			Reservations: []ec2types.Reservation{{
				Instances: []ec2types.Instance{{
					InstanceId:      aws.String("i-0abc"),
					State:           &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
					PublicIpAddress: aws.String("203.0.113.10"),
				}},
			}},
		},
	}
	d := &AWSDeployer{CFN: cfn, EC2: ec2Client}

	status, err := d.Status(context.Background(), "violet-lab")
	require.NoError(t, err)

	assert.Equal(t, "CREATE_COMPLETE", status.StackStatus)
	assert.Equal(t, "203.0.113.10", status.Outputs["TargetPublicIp"])
	require.Len(t, status.Instances, 1)
	assert.Equal(t, "i-0abc", status.Instances[0].InstanceID)
	assert.Equal(t, "running", status.Instances[0].State)

	// Instances are matched by the CloudFormation ownership tag.
	require.Len(t, ec2Client.filters, 1)
	assert.Equal(t, "tag:aws:cloudformation:stack-name", aws.ToString(ec2Client.filters[0].Name))
	assert.Equal(t, []string{"violet-lab"}, ec2Client.filters[0].Values)
}

func TestStatusMissingStack(t *testing.T) {
	d := &AWSDeployer{CFN: &fakeCFN{describeOut: &cloudformation.DescribeStacksOutput{}}, EC2: &fakeEC2{}}
	_, err := d.Status(context.Background(), "gone")
	assert.ErrorContains(t, err, "not found")
}

func TestDeleteStack(t *testing.T) {
	cfn := &fakeCFN{}
	d := &AWSDeployer{CFN: cfn}
	require.NoError(t, d.Delete(context.Background(), "violet-lab"))
	assert.Equal(t, []string{"violet-lab"}, cfn.deletedStacks)
}

func TestCallerIdentity(t *testing.T) {
	d := &AWSDeployer{STS: &fakeSTS{arn: "arn:aws:iam::123456789012:user/op"}}
	arn, err := d.CallerIdentity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:iam::123456789012:user/op", arn)

	d = &AWSDeployer{STS: &fakeSTS{}}
	_, err = d.CallerIdentity(context.Background())
	assert.ErrorContains(t, err, "caller identity")
}
