package cli

import (
	"github.com/spf13/cobra"
)

var confidence float64

func NewDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Run detection over an image",
		Long: `Run the sediment detection pipeline over a microscopy image.

Examples:
  # Detect with the server's default confidence threshold
  uroedge-cli detect sample.jpg

  # Detect with a custom threshold
  uroedge-cli detect sample.jpg --confidence 0.25`,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) != 1 {
				logUsageCmd(*cmd, cmd.Use)

				return
			}

			report, err := usdk.Detect(args[0], confidence)
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, report)
		},
	}

	cmd.Flags().Float64Var(
		&confidence,
		"confidence",
		0,
		"confidence threshold in (0, 1]; 0 uses the server default",
	)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Detector status",
		Long:  `Show whether an inference model is loaded and which classes it serves.`,
		Run: func(cmd *cobra.Command, args []string) {
			status, err := usdk.DetectorStatus()
			if err != nil {
				logErrorCmd(*cmd, err)

				return
			}
			logJSONCmd(*cmd, status)
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}
