package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dirtsid3r/sellikoweb-sub001/src/agent"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/logger"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/model"
	"github.com/dirtsid3r/sellikoweb-sub001/src/utils/store"

	"github.com/spf13/cobra"
)

var agentsFile string

func init() {
	agentsUpsertCmd.Flags().StringVar(&agentsFile, "file", "", "JSON file with a list of agents")
	_ = agentsUpsertCmd.MarkFlagRequired("file")

	agentsCmd.AddCommand(agentsUpsertCmd, agentsListCmd, agentsReconcileCmd)
	RootCmd.AddCommand(agentsCmd)
}

func newDirectory() (*agent.Directory, error) {
	db, err := model.NewConnection(applicationCtx, conf, "agents-cmd")
	if err != nil {
		return nil, err
	}
	tx := store.NewTransactor(db).WithConfig(&conf.Database)
	return agent.NewDirectory(tx), nil
}

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Manages the field agent directory",
}

var agentsUpsertCmd = &cobra.Command{
	Use:   "upsert",
	Short: "Registers agents or updates them, matching by agent code",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		log := logger.NewSublogger("agents-cmd")

		/* #nosec */
		content, err := os.ReadFile(agentsFile)
		if err != nil {
			return
		}

		var registrations []agent.Registration
		err = json.Unmarshal(content, &registrations)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", agentsFile, err)
		}

		directory, err := newDirectory()
		if err != nil {
			return
		}

		for _, registration := range registrations {
			_, err = directory.Upsert(applicationCtx, registration)
			if err != nil {
				return fmt.Errorf("agent %s: %w", registration.AgentCode, err)
			}
		}

		log.WithField("num", len(registrations)).Info("Agents upserted")
		return
	},
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Prints every registered agent",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		directory, err := newDirectory()
		if err != nil {
			return
		}

		agents, err := directory.List(applicationCtx)
		if err != nil {
			return
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tNAME\tCITY\tPINCODES\tOPEN TASKS")
		for _, a := range agents {
			fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\n", a.AgentCode, a.Name, a.HomeCity, []string(a.ServiceablePincodes), a.OpenTaskCount)
		}
		return w.Flush()
	},
}

var agentsReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recomputes open task counts from the listings",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		directory, err := newDirectory()
		if err != nil {
			return
		}

		corrected, err := directory.Reconcile(applicationCtx)
		if err != nil {
			return
		}

		logger.NewSublogger("agents-cmd").WithField("corrected", corrected).Info("Open task counts reconciled")
		return
	},
}
