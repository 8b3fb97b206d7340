package cmd

import (
	"github.com/dirtsid3r/sellikoweb-sub001/src/market"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/task"

	"github.com/spf13/cobra"
)

func init() {
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(publishCmd)
}

// Runs the controller until it fails or the application is interrupted
func runController(controller *task.Task) (err error) {
	err = controller.Start()
	if err != nil {
		return
	}

	select {
	case <-controller.CtxRunning.Done():
	case <-applicationCtx.Done():
	}

	controller.StopWait()
	return
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the marketplace API, relays listing events and dispatches delivery codes",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := market.NewController(conf)
		if err != nil {
			return
		}
		return runController(controller.Task)
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Relays recorded listing events to Redis, without serving the API",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		controller, err := market.NewPublisherController(conf)
		if err != nil {
			return
		}
		return runController(controller.Task)
	},
}
