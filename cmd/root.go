package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"awsquery/internal/awsclient"
	"awsquery/internal/awserr"
	"awsquery/internal/catalog"
	"awsquery/internal/cliparse"
	"awsquery/internal/policy"
	"awsquery/internal/runner"
)

var cfgFile string

// rootCmd is the dynamic SERVICE ACTION dispatcher. Flag parsing is
// disabled because the grammar's repeated "--" separator carries
// meaning (see internal/cliparse) that pflag's own "-- ends flags"
// convention would destroy.
var rootCmd = &cobra.Command{
	Use:                "awsquery SERVICE ACTION [filters] [-- columns]",
	Short:              "Invoke any read-only AWS API operation by service and action",
	Long:               `awsquery resolves missing required parameters for an AWS operation automatically, by calling other list/describe operations and harvesting identifiers from their responses, then filters and renders the result.`,
	DisableFlagParsing: true,
	Args:               cobra.ArbitraryArgs,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE:               runRoot,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.awsquery.yaml)")
	rootCmd.AddCommand(whoamiCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error finding home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".awsquery")
	}

	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("debug") {
			fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
		}
	}
}

func runRoot(_ *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	gate, err := policy.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(int(awserr.ExitOther))
	}

	registry, err := bootstrapRegistry(ctx, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(int(awserr.ExitSDKError))
	}
	cat := catalog.New(registry)

	if len(args) == 0 {
		listServices(cat, gate)
		return nil
	}

	parsed, err := cliparse.Parse(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(int(awserr.ExitOther))
	}

	env := &runner.Env{Catalog: cat, Gate: gate, Registry: registry, Stdout: os.Stdout, Stderr: os.Stderr}
	code := runner.Run(ctx, env, parsed)

	select {
	case <-ctx.Done():
		os.Exit(int(awserr.ExitInterrupted))
	default:
	}
	os.Exit(code)
	return nil
}

// bootstrapRegistry loads SDK config, honoring --profile/--region when
// they appear among args before SERVICE ACTION (cliparse also reads
// them, but the registry must exist before Parse can even identify
// SERVICE/ACTION for catalog lookups, so a light pre-scan happens
// here).
func bootstrapRegistry(ctx context.Context, args []string) (*awsclient.Registry, error) {
	var profile, region string
	for i, a := range args {
		switch a {
		case "--profile":
			if i+1 < len(args) {
				profile = args[i+1]
			}
		case "--region":
			if i+1 < len(args) {
				region = args[i+1]
			}
		}
	}
	return awsclient.NewWithOptions(ctx, profile, region)
}

func listServices(cat catalog.Catalog, gate *policy.Gate) {
	var allowed []string
	for _, svc := range cat.ListServices() {
		ops, err := cat.ListOperations(svc)
		if err != nil {
			continue
		}
		for _, op := range ops {
			if ok, _ := gate.Allow(svc, op); ok {
				allowed = append(allowed, svc)
				break
			}
		}
	}
	sort.Strings(allowed)
	for _, svc := range allowed {
		fmt.Println(svc)
	}
}
