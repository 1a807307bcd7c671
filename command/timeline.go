package command

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deemkeen/don/api"
	"github.com/deemkeen/don/domain"
	"github.com/deemkeen/don/feed"
	"github.com/deemkeen/don/store"
	"github.com/deemkeen/don/util"
	"github.com/spf13/cobra"
)

const followPoll = 500 * time.Millisecond

// NewTimelineCmd creates the timeline command
func NewTimelineCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the public timeline, newest first",
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
			follow, _ := cmd.Flags().GetBool("follow")
			asJSON, _ := cmd.Flags().GetBool("json")
			limit, _ := cmd.Flags().GetInt("limit")
			if limit <= 0 {
				limit = app.Conf.Conf.PageSize
			}

			client := api.New(app.Conf.Conf.ApiUrl, api.WithLogger(app.Logger))
			st := store.New(store.WithLogger(app.Logger))

			st.FetchTimeline(cmd.Context(), client, filter)
			state := st.State()
			if err := state.PublicTimeline.Err; err != nil {
				return fmt.Errorf("could not load the timeline: %w", err)
			}

			out := cmd.OutOrStdout()
			activities := domain.NewestFirst(state.PublicTimeline.Activities)
			if len(activities) > limit {
				activities = activities[:limit]
			}
			for _, a := range activities {
				printActivity(out, a, asJSON)
			}

			if !follow {
				return nil
			}
			return followTimeline(cmd.Context(), app, client, st, filter, func(a domain.Activity) {
				printActivity(out, a, asJSON)
			})
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().Bool("follow", false, "keep printing live activities")
	cmd.Flags().Bool("json", false, "print one JSON activity per line")
	cmd.Flags().Int("limit", 0, "number of activities to print (default pageSize)")

	return cmd
}

// followTimeline prints every activity the store accepts from the live feed
// until the feed ends or the process is interrupted
func followTimeline(ctx context.Context, app *appContext, client *api.Client, st *store.Store, filter domain.Filter, emit func(domain.Activity)) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	seen := len(st.State().PublicTimeline.Activities)
	unsubscribe := st.Subscribe(func(s store.State) {
		activities := s.PublicTimeline.Activities
		for _, a := range activities[min(seen, len(activities)):] {
			emit(a)
		}
		seen = len(activities)
	})
	defer unsubscribe()

	dialer := &feed.HTTPDialer{Client: client.StreamClient(), URL: client.FeedURL, Logger: app.Logger}
	fm := feed.NewManager(dialer, st.LiveActivity, app.Logger)
	if err := fm.Connect(ctx, filter); err != nil {
		return fmt.Errorf("could not follow the live feed: %w", err)
	}
	defer fm.Disconnect()

	ticker := time.NewTicker(followPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if !fm.State().Connected {
				app.Logger.Info("Live feed ended")
				return nil
			}
		}
	}
}

func printActivity(w io.Writer, a domain.Activity, asJSON bool) {
	if asJSON {
		b, err := json.Marshal(a)
		if err != nil {
			return
		}
		fmt.Fprintln(w, string(b))
		return
	}

	fmt.Fprintf(w, "%s  %s %s\n", a.Time.Local().Format(util.DateTimeFormat()), a.ActorName(), a.Verb)
	if content := util.StripHTML(a.Content()); content != "" {
		fmt.Fprintf(w, "    %s\n", util.Truncate(content, 200))
	}
}
