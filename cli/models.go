package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/urosmart/uroedge/pkg/sdk"
)

var usdk sdk.SDK

func SetSDK(s sdk.SDK) {
	usdk = s
}

func NewModelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models [status|latest|history|check|aggregate]",
		Short: "Global model manager",
		Long:  `Inspect the global model, its history, and trigger aggregation.`,
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Coordinator status",
		Long:  `Show connectivity, current version, and the pending queue.`,
		Run: func(cmd *cobra.Command, args []string) {
			status, err := usdk.ModelStatus()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, status)
		},
	}

	latestCmd := &cobra.Command{
		Use:   "latest",
		Short: "Latest global model",
		Long:  `Fetch the current global model, if any.`,
		Run: func(cmd *cobra.Command, args []string) {
			info, err := usdk.LatestModel()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, info)
		},
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Aggregation history",
		Long:  `List persisted aggregation rounds, newest first.`,
		Run: func(cmd *cobra.Command, args []string) {
			page, err := usdk.History()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, page)
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check <version>",
		Short: "Check for a newer model",
		Long:  `Check whether a newer global model exists for a client at the given version.`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			version, err := strconv.Atoi(args[0])
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}

			check, err := usdk.CheckVersion(version)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, check)
		},
	}

	aggregateCmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Trigger aggregation",
		Long:  `Force an aggregation round over the pending queue.`,
		Run: func(cmd *cobra.Command, args []string) {
			outcome, err := usdk.TriggerAggregation()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, outcome)
		},
	}

	cmd.AddCommand(statusCmd)
	cmd.AddCommand(latestCmd)
	cmd.AddCommand(historyCmd)
	cmd.AddCommand(checkCmd)
	cmd.AddCommand(aggregateCmd)

	return cmd
}
