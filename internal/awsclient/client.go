// Package awsclient owns AWS SDK v2 session/config setup and holds the
// live per-service clients the rest of the program dispatches against.
// It is the only package that imports service SDK packages directly.
package awsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/costexplorer"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/eks"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Registry holds one live client per supported service and satisfies
// catalog.ServiceRegistry so the Service Catalog Adapter can reflect
// over whichever services have no static shape table entry.
type Registry struct {
	cfg     aws.Config
	profile string

	clients map[string]any
}

// New loads the default SDK config (environment, default profile,
// instance role) and constructs every service client this build ships.
func New(ctx context.Context) (*Registry, error) {
	return NewWithOptions(ctx, "", "")
}

// NewWithProfile loads config for a named profile.
func NewWithProfile(ctx context.Context, profile string) (*Registry, error) {
	return NewWithOptions(ctx, profile, "")
}

// NewWithOptions loads config for an optional profile and region. When
// profile is set it first tries to obtain credentials via `aws
// configure export-credentials`, which works for SSO profiles the
// SDK's own resolver may not refresh correctly in every environment; if
// that fails (CLI not installed, no SSO session, plain static-key
// profile) it falls back to the SDK's own shared-config profile
// resolution.
func NewWithOptions(ctx context.Context, profile, region string) (*Registry, error) {
	var opts []func(*config.LoadOptions) error
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	if profile != "" {
		if creds, err := credentialsFromCLI(ctx, profile); err == nil {
			credOpts := append(append([]func(*config.LoadOptions) error{}, opts...),
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					creds.AccessKeyID, creds.SecretAccessKey, creds.SessionToken,
				)))
			cfg, err := config.LoadDefaultConfig(ctx, credOpts...)
			if err != nil {
				return nil, fmt.Errorf("unable to load SDK config with CLI credentials for profile %s: %w", profile, err)
			}
			return fromConfig(cfg, profile), nil
		}
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return fromConfig(cfg, profile), nil
}

func fromConfig(cfg aws.Config, profile string) *Registry {
	return &Registry{
		cfg:     cfg,
		profile: profile,
		clients: map[string]any{
			"ec2":            ec2.NewFromConfig(cfg),
			"ecs":            ecs.NewFromConfig(cfg),
			"iam":            iam.NewFromConfig(cfg),
			"lambda":         lambda.NewFromConfig(cfg),
			"rds":            rds.NewFromConfig(cfg),
			"s3":             s3.NewFromConfig(cfg),
			"batch":          batch.NewFromConfig(cfg),
			"cloudwatch":     cloudwatch.NewFromConfig(cfg),
			"cloudwatchlogs": cloudwatchlogs.NewFromConfig(cfg),
			"costexplorer":   costexplorer.NewFromConfig(cfg),
			"sts":            sts.NewFromConfig(cfg),
			"eks":            eks.NewFromConfig(cfg),
			"ssm":            ssm.NewFromConfig(cfg),
		},
	}
}

// ServiceNames implements catalog.ServiceRegistry.
func (r *Registry) ServiceNames() []string {
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// ClientFor implements catalog.ServiceRegistry and is also how the
// Invoker obtains the live client it dispatches operations against.
func (r *Registry) ClientFor(service string) (any, bool) {
	c, ok := r.clients[service]
	return c, ok
}

// Profile returns the AWS CLI profile the registry was built with, or
// "" if it was built from New's default-chain config.
func (r *Registry) Profile() string {
	return r.profile
}

type cliCredentials struct {
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	SessionToken    string `json:"SessionToken"`
}

func credentialsFromCLI(ctx context.Context, profile string) (*cliCredentials, error) {
	cmd := exec.CommandContext(ctx, "aws", "configure", "export-credentials", "--profile", profile, "--format", "process")
	cmd.Env = append(os.Environ(), fmt.Sprintf("AWS_PROFILE=%s", profile))

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("export credentials via aws cli: %w", err)
	}
	var creds cliCredentials
	if err := json.Unmarshal(output, &creds); err != nil {
		return nil, fmt.Errorf("parse aws cli credentials output: %w", err)
	}
	return &creds, nil
}
