package command

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/don/db"
	"github.com/deemkeen/don/store"
	"github.com/deemkeen/don/ui"
	"github.com/deemkeen/don/util"
	"github.com/spf13/cobra"
)

const viewLogFile = "don.log"

// NewViewCmd creates the view command
func NewViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse the timeline in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getContext(cmd)
			if err != nil {
				return err
			}
			if err := app.requireAPI(); err != nil {
				return err
			}
			filter, err := readFilter(cmd)
			if err != nil {
				return err
			}

			// the terminal belongs to the program, logs go to a file
			logPath := util.ResolveFilePath(viewLogFile)
			logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				return fmt.Errorf("could not open log file: %w", err)
			}
			defer logFile.Close()
			app.Logger.SetOutput(logFile)

			var snapshots store.SnapshotStore
			noPersist, _ := cmd.Flags().GetBool("no-persist")
			if !noPersist {
				database, err := db.Open(util.ResolveFilePath(app.Conf.Conf.DbPath))
				if err != nil {
					app.Logger.Warn("Starting without persisted state", "err", err)
				} else {
					defer database.Close()
					snapshots = database
				}
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			sess := ui.Connect(ctx, app.Conf.Conf.ApiUrl, snapshots, filter, app.Logger)
			defer sess.Close()

			p := tea.NewProgram(ui.NewModel(sess, 0, 0), tea.WithAltScreen(), tea.WithContext(ctx))
			_, runErr := p.Run()
			sess.Close()

			if snapshots != nil {
				if err := sess.Persist(snapshots); err != nil {
					app.Logger.Warn("Could not persist state", "err", err)
				}
			}
			return runErr
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().Bool("no-persist", false, "neither restore nor save the last state")

	return cmd
}
