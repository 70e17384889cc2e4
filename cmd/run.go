/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Lepied/DiceSoul-sub001/internal/journal"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Manage journaled runs",
	Long: `Every run is an append-only log.jsonl under runs_dir/<run id>.

Use the subcommands 'new', 'list' and 'show' to create runs and inspect
the state projected from their logs.`,
}

var runNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an empty run directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := settings()
		if err != nil {
			return err
		}
		id, logPath, err := journal.NewManager(cfg.RunsDir).Create()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created run %s\n", id)
		fmt.Fprintf(cmd.OutOrStdout(), "Log file stored at: %s\n", logPath)
		fmt.Fprintf(cmd.OutOrStdout(), "Start it with: dicesoul play --run %s\n", id)
		return nil
	},
}

var runListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the runs under runs_dir",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := settings()
		if err != nil {
			return err
		}
		ids, err := journal.NewManager(cfg.RunsDir).List()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No runs in %s\n", cfg.RunsDir)
			return nil
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var runShowCmd = &cobra.Command{
	Use:   "show <run id>",
	Short: "Replay a run log and print its state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := settings()
		if err != nil {
			return err
		}
		logPath, err := journal.NewManager(cfg.RunsDir).Load(args[0])
		if err != nil {
			return err
		}
		store, err := journal.OpenStore(logPath)
		if err != nil {
			return err
		}
		defer store.Close()

		evts, err := store.Load()
		if err != nil {
			return fmt.Errorf("error reading event log: %w", err)
		}
		state, err := journal.NewProjector().Build(evts)
		if err != nil {
			return fmt.Errorf("error building state: %w", err)
		}

		verbose, _ := cmd.Flags().GetBool("events")
		out := cmd.OutOrStdout()
		if verbose {
			for i, e := range evts {
				fmt.Fprintf(out, "%4d  %s\n", i+1, e.Message())
			}
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, renderRunState(state, len(evts)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.AddCommand(runNewCmd, runListCmd, runShowCmd)
	runShowCmd.Flags().BoolP("events", "e", false, "Print every logged event before the state")
}
