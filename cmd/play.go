/*
Copyright © 2026 Paulo Suderio
*/
package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lepied/DiceSoul-sub001/internal/journal"
	"github.com/Lepied/DiceSoul-sub001/internal/session"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start or resume a run",
	Long: `Starts the interactive play screen. Without --run a new run is created
under runs_dir; with --run the run's log is replayed first.

Usage:
	> deal 5d6
	> roll
	> keep 0 2
	> attack`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := settings()
		if err != nil {
			return err
		}
		defer log.Sync()

		runID, _ := cmd.Flags().GetString("run")
		plain, _ := cmd.Flags().GetBool("plain")

		manager := journal.NewManager(cfg.RunsDir)
		var logPath string
		if runID == "" {
			runID, logPath, err = manager.Create()
		} else {
			logPath, err = manager.Load(runID)
		}
		if err != nil {
			return err
		}

		store, err := journal.OpenStore(logPath)
		if err != nil {
			return err
		}
		defer store.Close()

		opts := []session.Option{session.WithLogger(log), session.WithRunID(runID)}
		presenter := &teaPresenter{}
		if !plain {
			opts = append(opts, session.WithPresenter(presenter))
		}
		app, err := session.New(cfg, store, opts...)
		if err != nil {
			return fmt.Errorf("failed to bootstrap game session: %w", err)
		}
		defer app.Close()
		log.Info("run opened", zap.String("run_id", app.RunID()), zap.String("log", logPath))

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if plain {
			return runPlain(ctx, app, cmd.InOrStdin(), cmd.OutOrStdout())
		}
		return RunTUI(ctx, app, presenter)
	},
}

// runPlain is the line-oriented loop used when no terminal UI is wanted,
// e.g. when commands are piped in.
func runPlain(ctx context.Context, app *session.Session, in io.Reader, out io.Writer) error {
	fmt.Fprintf(out, "Run %s. Type 'help' for commands and 'quit' to leave.\n", app.RunID())
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		res, err := app.Execute(ctx, line)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render("Error: "+err.Error()))
			continue
		}
		for _, m := range res.Messages {
			fmt.Fprintln(out, m)
		}
		if res.Status {
			fmt.Fprintln(out, renderView(app.View(), 0))
		}
		if res.Quit {
			return nil
		}
	}
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringP("run", "r", "", "ID of the run to resume")
	playCmd.Flags().Bool("plain", false, "Read commands line by line instead of starting the terminal UI")
}
