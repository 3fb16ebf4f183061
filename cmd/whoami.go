package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/spf13/cobra"

	"awsquery/internal/awsclient"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the AWS identity the current credentials resolve to",
	RunE:  runWhoami,
}

func runWhoami(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	registry, err := awsclient.New(ctx)
	if err != nil {
		return err
	}
	client, ok := registry.ClientFor("sts")
	if !ok {
		return fmt.Errorf("sts client not available")
	}
	stsClient, ok := client.(*sts.Client)
	if !ok {
		return fmt.Errorf("unexpected sts client type")
	}
	out, err := stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return fmt.Errorf("sts:GetCallerIdentity failed: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Account: %s\nArn:     %s\nUserId:  %s\n",
		deref(out.Account), deref(out.Arn), deref(out.UserId))
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
