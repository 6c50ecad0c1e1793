package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/urosmart/uroedge/cli"
	"github.com/urosmart/uroedge/pkg/sdk"
)

const (
	defCoordinatorURL  = "http://localhost:8090"
	defTLSVerification = false
)

func main() {
	var coordinatorURL string

	rootCmd := &cobra.Command{
		Use:   "uroedge-cli",
		Short: "UroEdge CLI",
		Long:  `UroEdge CLI is a command line interface for the federated aggregation coordinator and detection pipeline.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			sdkConf := sdk.Config{
				CoordinatorURL:  coordinatorURL,
				TLSVerification: defTLSVerification,
			}
			s := sdk.NewSDK(sdkConf)
			cli.SetSDK(s)
		},
	}

	rootCmd.PersistentFlags().StringVarP(
		&coordinatorURL,
		"coordinator-url",
		"c",
		defCoordinatorURL,
		"Coordinator service URL",
	)

	rootCmd.AddCommand(cli.NewModelsCmd())
	rootCmd.AddCommand(cli.NewDetectCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
