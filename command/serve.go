package command

import (
	"context"
	"errors"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/logging"
	"github.com/deemkeen/don/api"
	"github.com/deemkeen/don/db"
	"github.com/deemkeen/don/feed"
	"github.com/deemkeen/don/middleware"
	"github.com/deemkeen/don/util"
	"github.com/deemkeen/don/web"
	"github.com/spf13/cobra"
)

const (
	archiveSize   = 1000
	pruneInterval = time.Hour
)

// NewServeCmd creates the serve command
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timeline viewer over ssh and the web",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getContext(cmd)
			if err != nil {
				return err
			}
			if err := app.requireAPI(); err != nil {
				return err
			}
			conf := app.Conf.Conf
			if !conf.WithSsh && !conf.WithWeb {
				return errors.New("nothing to serve, enable withSsh or withWeb")
			}

			database, err := db.Open(util.ResolveFilePath(conf.DbPath))
			if err != nil {
				return err
			}
			defer database.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 2)

			var sshServer *ssh.Server
			if conf.WithSsh {
				sshServer, err = newSSHServer(app, database)
				if err != nil {
					return err
				}
				app.Logger.Info("Starting SSH server", "host", conf.Host, "port", conf.SshPort)
				go func() {
					if err := sshServer.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
						errCh <- err
					}
				}()
			}

			if conf.WithWeb {
				client := api.New(conf.ApiUrl, api.WithLogger(app.Logger))
				dialer := &feed.HTTPDialer{Client: client.StreamClient(), URL: client.FeedURL, Logger: app.Logger}
				server := web.NewServer(app.Conf, client, dialer, database, app.Logger)
				go func() {
					if err := server.Router(ctx); err != nil {
						errCh <- err
					}
				}()
				go pruneArchive(ctx, database, app.Logger)
			}

			select {
			case <-ctx.Done():
			case err = <-errCh:
			}

			if sshServer != nil {
				app.Logger.Info("Stopping SSH server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if serr := sshServer.Shutdown(shutdownCtx); serr != nil && !errors.Is(serr, ssh.ErrServerClosed) {
					app.Logger.Error("SSH shutdown", "err", serr)
				}
			}
			return err
		},
	}

	return cmd
}

func newSSHServer(app *appContext, database *db.DB) (*ssh.Server, error) {
	conf := app.Conf.Conf
	return wish.NewServer(
		wish.WithAddress(net.JoinHostPort(conf.Host, strconv.Itoa(conf.SshPort))),
		wish.WithHostKeyPath(util.ResolveFilePathWithSubdir(".ssh", "donhostkey")),
		wish.WithPublicKeyAuth(publicKeyHandler),
		wish.WithMiddleware(
			middleware.MainTui(app.Conf, database, app.Logger),
			middleware.SessionMiddleware(app.Logger),
			logging.Middleware(), // last middleware executed first
		),
	)
}

// anyone may watch the public timeline
func publicKeyHandler(ssh.Context, ssh.PublicKey) bool {
	return true
}

func pruneArchive(ctx context.Context, database *db.DB, logger *log.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := database.PruneActivities(archiveSize); err != nil {
				logger.Warn("Could not prune the archive", "err", err)
			}
		}
	}
}
